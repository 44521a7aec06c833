// Package app is onair's composition root.
//
// Run wires the pieces together in this order:
//
//	config.Load ─> Config.Apply(flags) ─> logging.Setup
//	      │
//	      ├─> prometheus registry (+ /metrics when metrics_addr is set)
//	      ├─> httpbridge.Executor.Start
//	      ├─> httpbridge.NewArena[nhk.Service]
//	      ├─> nhk.NewEndpoint
//	      └─> ui.Run(Poller)   blocks until quit
//
// The Poller in poller.go is what the UI calls every frame. It submits a
// now-on-air request for the selected service when its guide is stale, runs
// one arena tick, and records finished results in the state store. Failed
// refreshes are retried after a delay that doubles per consecutive failure
// and is capped at five minutes. Nothing in this package blocks the UI loop;
// all HTTP happens on executor workers.
//
// Fatal errors (returned from Run): bad config, logging setup, a metrics
// address that can't be bound, executor or arena construction. Everything
// after the UI starts is recoverable and shown on screen.
package app
