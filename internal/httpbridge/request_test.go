package httpbridge

import (
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_DefaultsToGet(t *testing.T) {
	req := NewRequest("", "  http://example.com/a  ")
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "http://example.com/a", req.URL)
	assert.NotNil(t, req.Header)

	req = NewRequest(" delete ", "http://example.com")
	assert.Equal(t, http.MethodDelete, req.Method)
}

func TestRequest_TakeIsOneShot(t *testing.T) {
	req := Get("http://example.com/x")
	req.Header.Set("Accept", "application/json")

	taken, err := req.take()
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/x", taken.URL)
	assert.Equal(t, "application/json", taken.Header.Get("Accept"))

	assert.True(t, req.Consumed())
	assert.Empty(t, req.URL, "taking moves the value out")

	_, err = req.take()
	require.ErrorIs(t, err, ErrRequestConsumed)
}

func TestRequest_Validation(t *testing.T) {
	cases := []struct {
		name string
		req  *Request
	}{
		{"nil", nil},
		{"relative", Get("/api/now")},
		{"no host", Get("http://")},
		{"bad method", NewRequest("GE T", "http://example.com")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.req.take()
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestResult_TextAndDecode(t *testing.T) {
	res := &Result{Body: []byte(`{"title":"News7"}`), Status: 200}

	text, ok := res.Text()
	require.True(t, ok)
	assert.Equal(t, `{"title":"News7"}`, text)

	type program struct {
		Title string `json:"title"`
	}
	p, ok := Decode[program](res)
	require.True(t, ok)
	assert.Equal(t, "News7", p.Title)
	assert.True(t, res.Success())
}

func TestDecodeErr_Reasons(t *testing.T) {
	_, err := DecodeErr[map[string]any](nil)
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "no result", decodeErr.Reason)

	transport := errors.New("connection refused")
	_, err = DecodeErr[map[string]any](&Result{Err: transport})
	require.ErrorIs(t, err, transport)

	_, err = DecodeErr[map[string]any](&Result{Body: []byte{0xc3, 0x28}})
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, decodeErr.Error(), "utf-8")

	_, err = DecodeErr[map[string]any](&Result{Body: []byte("{not-json")})
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, decodeErr.Error(), "parse json")
}

func TestResult_NilIsNotOK(t *testing.T) {
	var res *Result
	assert.False(t, res.OK())
	assert.False(t, res.Success())
	_, ok := res.Text()
	assert.False(t, ok)
}

// TestArena_RandomOperationsKeepTagsConsistent drives an arena with a random
// mix of submissions, ticks, takes and removals and checks every slot only
// ever moves forward through its states and that each submission yields at
// most one result.
func TestArena_RandomOperationsKeepTagsConsistent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	t.Cleanup(server.Close)

	arena := newTestArena[int](t)
	rng := rand.New(rand.NewSource(42))

	const slots = 8
	allowed := map[SlotState][]SlotState{
		SlotEmpty:     {SlotEmpty},
		SlotRequested: {SlotInflight, SlotReady}, // a fast task can finish within the same tick
		SlotInflight:  {SlotInflight, SlotReady},
		SlotReady:     {SlotReady},
	}

	submitted := 0
	abandoned := 0
	discarded := 0
	collected := 0
	seen := make(map[uint64]bool)

	take := func(k int) {
		if res, ok := arena.Take(k); ok {
			require.False(t, seen[res.Generation], "generation %d delivered twice", res.Generation)
			seen[res.Generation] = true
			collected++
		}
	}

	for step := 0; step < 400; step++ {
		k := rng.Intn(slots)
		switch op := rng.Intn(10); {
		case op < 3:
			before := arena.State(k)
			err := arena.Submit(k, Get(server.URL+"/slot"))
			if before == SlotEmpty {
				require.NoError(t, err)
				require.Equal(t, SlotRequested, arena.State(k))
				submitted++
			} else {
				require.ErrorIs(t, err, ErrSlotBusy)
				require.Equal(t, before, arena.State(k))
			}
		case op < 8:
			var before [slots]SlotState
			for i := range before {
				before[i] = arena.State(i)
			}
			_, err := arena.Tick()
			require.NoError(t, err)
			for i := range before {
				require.Contains(t, allowed[before[i]], arena.State(i),
					"slot %d moved from %s to %s", i, before[i], arena.State(i))
			}
		case op < 9:
			take(k)
		default:
			switch arena.State(k) {
			case SlotRequested, SlotInflight:
				abandoned++
			case SlotReady:
				discarded++
			}
			arena.Remove(k)
			require.Equal(t, SlotEmpty, arena.State(k))
		}
		if step%25 == 0 {
			time.Sleep(time.Millisecond)
		}
	}

	// Drain everything still pending.
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := arena.Tick()
		require.NoError(t, err)
		stats := arena.Stats()
		if stats.Requested == 0 && stats.Inflight == 0 {
			break
		}
		require.False(t, time.Now().After(deadline), "arena never drained: %+v", stats)
		time.Sleep(time.Millisecond)
	}
	for k := 0; k < slots; k++ {
		take(k)
	}

	// Every submission ends exactly one way.
	assert.Equal(t, submitted, collected+abandoned+discarded)
	assert.Zero(t, arena.Len())
}
