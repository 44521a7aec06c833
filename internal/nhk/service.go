package nhk

import (
	"fmt"
	"strings"
)

// Service identifies one NHK broadcast service. It is the slot key the UI
// uses for its in-flight guide requests.
type Service int

const (
	ServiceG1 Service = iota + 1
	ServiceE1
	ServiceR1
	ServiceR2
	ServiceR3
)

// Services lists every service in display order.
var Services = []Service{ServiceG1, ServiceE1, ServiceR1, ServiceR2, ServiceR3}

// ID returns the service identifier used in API paths, e.g. "g1".
func (s Service) ID() string {
	switch s {
	case ServiceG1:
		return "g1"
	case ServiceE1:
		return "e1"
	case ServiceR1:
		return "r1"
	case ServiceR2:
		return "r2"
	case ServiceR3:
		return "r3"
	default:
		return ""
	}
}

// Name returns the broadcaster's display name.
func (s Service) Name() string {
	switch s {
	case ServiceG1:
		return "NHK総合1"
	case ServiceE1:
		return "NHKEテレ1"
	case ServiceR1:
		return "NHKラジオ第1"
	case ServiceR2:
		return "NHKラジオ第2"
	case ServiceR3:
		return "NHK FM"
	default:
		return ""
	}
}

func (s Service) String() string {
	if id := s.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("service(%d)", int(s))
}

// Valid reports whether s is one of the known services.
func (s Service) Valid() bool {
	return s.ID() != ""
}

// Next returns the service after s, wrapping around.
func (s Service) Next() Service {
	for i, svc := range Services {
		if svc == s {
			return Services[(i+1)%len(Services)]
		}
	}
	return Services[0]
}

// Prev returns the service before s, wrapping around.
func (s Service) Prev() Service {
	for i, svc := range Services {
		if svc == s {
			return Services[(i+len(Services)-1)%len(Services)]
		}
	}
	return Services[0]
}

// ParseService accepts an API id ("g1") case-insensitively.
func ParseService(value string) (Service, error) {
	id := strings.ToLower(strings.TrimSpace(value))
	for _, svc := range Services {
		if svc.ID() == id {
			return svc, nil
		}
	}
	return 0, fmt.Errorf("unknown service %q", value)
}

// Timeline selects one of the three programs reported for a service.
type Timeline int

const (
	Following Timeline = iota
	Present
	Previous
)

// Timelines lists the rows in the order they are shown.
var Timelines = []Timeline{Following, Present, Previous}

func (t Timeline) String() string {
	switch t {
	case Following:
		return "following"
	case Present:
		return "present"
	case Previous:
		return "previous"
	default:
		return "unknown"
	}
}

// Label returns the on-screen row heading.
func (t Timeline) Label() string {
	switch t {
	case Following:
		return "次番組"
	case Present:
		return "現番組"
	case Previous:
		return "前番組"
	default:
		return ""
	}
}
