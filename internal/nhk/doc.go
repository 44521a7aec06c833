// Package nhk knows the NHK program guide API: which services exist, how a
// now-on-air URL is built, and what the JSON payload looks like.
//
// It does not perform HTTP itself. Endpoint.NowOnAir returns an
// *httpbridge.Request that the UI submits to its arena, and DecodeNowOnAir
// turns the finished httpbridge.Result back into a Channel:
//
//	req, err := endpoint.NowOnAir(nhk.ServiceG1)
//	...
//	_ = arena.Submit(nhk.ServiceG1, req)
//	...
//	if res, ok := arena.Take(nhk.ServiceG1); ok {
//		ch, err := nhk.DecodeNowOnAir(res, nhk.ServiceG1)
//	}
//
// URLs have the shape {api_base}/v2/pg/now/{area}/{service}.json?key={key}.
// The API base defaults to https://api.nhk.or.jp and the scheme to https when
// omitted. Timestamps are parsed as RFC3339 and fall back to a local
// "2006-01-02 15:04:05" layout; anything else yields the zero time.
package nhk
