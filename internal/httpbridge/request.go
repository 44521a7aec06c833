package httpbridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Request describes one HTTP call. It is a one-shot value: submitting it to
// an arena consumes it and it can't be submitted again.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte

	consumed bool
}

// NewRequest returns a request with an empty header set. An empty method
// means GET.
func NewRequest(method, rawURL string) *Request {
	if strings.TrimSpace(method) == "" {
		method = http.MethodGet
	}
	return &Request{
		Method: strings.ToUpper(strings.TrimSpace(method)),
		URL:    strings.TrimSpace(rawURL),
		Header: make(http.Header),
	}
}

// Get is shorthand for NewRequest(http.MethodGet, rawURL).
func Get(rawURL string) *Request {
	return NewRequest(http.MethodGet, rawURL)
}

// Consumed reports whether the request has already been taken by an arena.
func (r *Request) Consumed() bool {
	return r != nil && r.consumed
}

// take moves the request out of r, leaving r unusable.
func (r *Request) take() (Request, error) {
	if r == nil {
		return Request{}, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if r.consumed {
		return Request{}, ErrRequestConsumed
	}
	if err := r.validate(); err != nil {
		return Request{}, err
	}
	out := Request{
		Method: r.Method,
		URL:    r.URL,
		Header: r.Header.Clone(),
		Body:   r.Body,
	}
	if out.Method == "" {
		out.Method = http.MethodGet
	}
	*r = Request{consumed: true}
	return out, nil
}

func (r *Request) validate() error {
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("%w: parse url %q: %v", ErrInvalidRequest, r.URL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: url %q is not absolute", ErrInvalidRequest, r.URL)
	}
	if strings.ContainsAny(r.Method, " \t\r\n") {
		return fmt.Errorf("%w: method %q", ErrInvalidRequest, r.Method)
	}
	return nil
}

// Result is the outcome of one request. Err is set only for transport
// failures; a non-2xx response is still a result with its status and bytes.
type Result struct {
	Body       []byte
	Status     int
	Header     http.Header
	Err        error
	Generation uint64
	Elapsed    time.Duration
}

// OK reports whether the request completed at the transport level.
func (r *Result) OK() bool {
	return r != nil && r.Err == nil
}

// Success reports a transport-level success with a 2xx status.
func (r *Result) Success() bool {
	return r.OK() && r.Status >= 200 && r.Status < 300
}

// Text returns the body as a string. It reports false for transport errors
// and for bodies that aren't valid UTF-8.
func (r *Result) Text() (string, bool) {
	if !r.OK() {
		return "", false
	}
	if !utf8.Valid(r.Body) {
		return "", false
	}
	return string(r.Body), true
}

// Decode parses the result body as JSON into a T. It reports false when the
// result carries a transport error or the body can't be decoded.
func Decode[T any](r *Result) (T, bool) {
	v, err := DecodeErr[T](r)
	return v, err == nil
}

// DecodeErr is Decode with the reason for failure.
func DecodeErr[T any](r *Result) (T, error) {
	var zero T
	if r == nil {
		return zero, &DecodeError{Reason: "no result"}
	}
	if r.Err != nil {
		return zero, &DecodeError{Reason: "transport failed", Err: r.Err}
	}
	text, ok := r.Text()
	if !ok {
		return zero, &DecodeError{Reason: "body is not valid utf-8"}
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return zero, &DecodeError{Reason: "parse json", Err: err}
	}
	return v, nil
}
