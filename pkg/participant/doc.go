// Package participant derives diagram participant names from HTTP requests.
//
// A participant is nothing more than a normalized string. The same logical
// caller or service must map to the same name on every run, so raw header
// values are passed through Normalize, which strips version strings,
// comments, local-domain suffixes and ports, and rewrites characters that
// diagram tools treat specially.
//
//	participant.Normalize("Apache-HttpClient/4.5 (Java)") // "http_client"
//	participant.Normalize("shop.local:8080")              // "shop"
//	participant.Normalize("svc-name")                     // "svc_name"
package participant
