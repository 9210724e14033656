// Package admin provides an HTTP API for inspecting captured messages.
//
// Endpoints:
//
//	GET    /healthz        - Health check
//	GET    /messages       - List stored messages (?limit=N keeps the newest N)
//	DELETE /messages       - Clear stored messages
//	GET    /diagram.puml   - PlantUML sequence diagram of stored messages
//	GET    /messages/live  - WebSocket stream of newly captured messages
//	GET    /metrics        - Prometheus metrics, when configured
//
// Usage:
//
//	store := sequence.NewMemorySink(1000)
//	api := admin.New(store, admin.WithMetrics(m.Handler()))
//	http.ListenAndServe(":9090", api)
//
// Example curl commands:
//
//	# Last ten messages
//	curl http://localhost:9090/messages?limit=10
//
//	# Diagram source
//	curl http://localhost:9090/diagram.puml > exchange.puml
package admin
