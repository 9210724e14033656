// Package cli implements the lsd-capture command line.
//
//	lsd-capture proxy --upstream http://localhost:3000 --listen :8080
//	lsd-capture version
//
// The proxy command forwards every request to the upstream and captures
// each exchange as a pair of sequence messages. Messages are written as
// NDJSON to the configured output and kept in memory for the admin API.
package cli
