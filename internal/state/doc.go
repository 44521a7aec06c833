// Package state keeps the latest now-on-air guide for each NHK service.
//
// The UI writes a Guide after each finished request and reads it back when
// rendering. A failed refresh keeps the previous channel data and records the
// error, so the screen keeps showing the last good guide with a warning:
//
//	store.Update(svc, res.Generation, &ch, nil) // success
//	store.Update(svc, res.Generation, nil, err) // failure, data kept
//
// Guides are returned by value with their programs copied, so callers can't
// mutate stored state. The zero Store is ready to use.
//
// A service is shown as offline after two consecutive failures. Stale reports
// whether a guide is due for a refresh, either because the refresh interval
// elapsed or because the present program has already ended.
package state
