package nhk

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/onair/internal/httpbridge"
)

const nhkTimestampLayout = "2006-01-02 15:04:05"

// NowOnAirResponse mirrors the payload returned by /v2/pg/now.
type NowOnAirResponse struct {
	List map[string]Channel `json:"nowonair_list"`
}

// Channel returns the channel entry for svc.
func (r NowOnAirResponse) Channel(svc Service) (Channel, bool) {
	ch, ok := r.List[svc.ID()]
	return ch, ok
}

// Channel carries the previous, present and following programs of a service.
type Channel struct {
	Previous  *Program `json:"previous"`
	Present   *Program `json:"present"`
	Following *Program `json:"following"`
}

// Program returns the program for the given timeline row, or nil.
func (c Channel) Program(t Timeline) *Program {
	switch t {
	case Following:
		return c.Following
	case Present:
		return c.Present
	case Previous:
		return c.Previous
	default:
		return nil
	}
}

// Program describes one broadcast slot.
type Program struct {
	ID        string       `json:"id"`
	EventID   string       `json:"event_id"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Area      *Area        `json:"area"`
	Service   *ServiceInfo `json:"service"`
	Title     string       `json:"title"`
	Subtitle  string       `json:"subtitle"`
	Content   string       `json:"content"`
	Act       string       `json:"act"`
	Genres    []string     `json:"genres"`
}

// Area mirrors the API area object.
type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ServiceInfo mirrors the API service object.
type ServiceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ParsedStart returns the start time as time.Time when possible.
func (p Program) ParsedStart() time.Time {
	return parseTime(p.StartTime)
}

// ParsedEnd returns the end time as time.Time when possible.
func (p Program) ParsedEnd() time.Time {
	return parseTime(p.EndTime)
}

// Progress reports how far through the program now is, between 0 and 1.
// It returns false when the times are missing or inverted.
func (p Program) Progress(now time.Time) (float64, bool) {
	start, end := p.ParsedStart(), p.ParsedEnd()
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0, false
	}
	switch {
	case now.Before(start):
		return 0, true
	case now.After(end):
		return 1, true
	}
	return float64(now.Sub(start)) / float64(end.Sub(start)), true
}

// TimeRange formats the program's start and end as "15:04-15:30".
func (p Program) TimeRange() string {
	start, end := p.ParsedStart(), p.ParsedEnd()
	switch {
	case start.IsZero():
		return ""
	case end.IsZero():
		return start.Format("15:04")
	}
	return start.Format("15:04") + "-" + end.Format("15:04")
}

// DecodeNowOnAir decodes a finished bridge result into the channel for svc.
// Transport failures and non-2xx statuses are reported as errors here, since
// the bridge itself passes them through untouched.
func DecodeNowOnAir(res *httpbridge.Result, svc Service) (Channel, error) {
	if res != nil && res.Err == nil && !res.Success() {
		return Channel{}, fmt.Errorf("api %s returned status %d", svc, res.Status)
	}
	payload, err := httpbridge.DecodeErr[NowOnAirResponse](res)
	if err != nil {
		return Channel{}, err
	}
	ch, ok := payload.Channel(svc)
	if !ok {
		return Channel{}, fmt.Errorf("response has no entry for %s", svc)
	}
	return ch, nil
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(nhkTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
