package nhk

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/five82/onair/internal/httpbridge"
)

const (
	// DefaultAPIBase is the public NHK program guide API host.
	DefaultAPIBase = "https://api.nhk.or.jp"
	// DefaultArea is Tokyo.
	DefaultArea = "400"
)

// Endpoint builds now-on-air requests for a fixed API base, area and key.
// It only builds requests; running them is the bridge's job.
type Endpoint struct {
	baseURL *url.URL
	area    string
	apiKey  string
}

// NewEndpoint validates the API base and area and returns an Endpoint.
func NewEndpoint(apiBase, area, apiKey string) (*Endpoint, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	area = strings.TrimSpace(area)
	if area == "" {
		area = DefaultArea
	}
	for _, r := range area {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("area %q must be numeric", area)
		}
	}
	return &Endpoint{
		baseURL: base,
		area:    area,
		apiKey:  strings.TrimSpace(apiKey),
	}, nil
}

// Area returns the area code requests are built for.
func (e *Endpoint) Area() string {
	return e.area
}

// HasKey reports whether an API key is configured.
func (e *Endpoint) HasKey() bool {
	return e.apiKey != ""
}

// NowOnAirURL returns the now-on-air URL for svc.
func (e *Endpoint) NowOnAirURL(svc Service) (string, error) {
	if !svc.Valid() {
		return "", fmt.Errorf("now on air: unknown service %s", svc)
	}
	values := url.Values{}
	if e.apiKey != "" {
		values.Set("key", e.apiKey)
	}
	rel := &url.URL{
		Path:     fmt.Sprintf("/v2/pg/now/%s/%s.json", e.area, svc.ID()),
		RawQuery: values.Encode(),
	}
	return e.baseURL.ResolveReference(rel).String(), nil
}

// NowOnAir builds a bridge request for the now-on-air guide of svc.
func (e *Endpoint) NowOnAir(svc Service) (*httpbridge.Request, error) {
	target, err := e.NowOnAirURL(svc)
	if err != nil {
		return nil, err
	}
	req := httpbridge.NewRequest(http.MethodGet, target)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = DefaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base %q: missing host", apiBase)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
