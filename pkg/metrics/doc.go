// Package metrics exposes capture activity as Prometheus metrics.
//
// A Metrics value owns its own registry and implements capture.Observer,
// so it can be handed straight to capture.WithObserver:
//
//	m := metrics.New(metrics.WithRuntime())
//	ic, _ := capture.New(sink, nil, nil, capture.WithObserver(m))
//	mux.Handle("/metrics", m.Handler())
//
// Exported series:
//
//   - lsd_exchanges_total: captured exchanges (labels: outcome)
//   - lsd_exchange_duration_seconds: exchange latency (labels: outcome)
//   - lsd_capture_failures_total: instrumentation failures (labels: stage)
//   - lsd_stored_messages: messages held in memory, when tracked
//   - lsd_uptime_seconds: seconds since the registry was created
package metrics
