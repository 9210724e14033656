// Package id generates identifiers for captured sequence messages.
//
// Message identifiers are owned by whoever builds the final event, so the
// capture pipeline only asks a Generator for one identifier per message.
// Two generators are provided:
//
//   - ULIDGenerator: 26-character, lexicographically sortable identifiers that
//     keep messages in capture order when sorted as strings.
//   - Sequence: a prefixed monotonic counter, handy in tests and reports where
//     short stable identifiers read better.
//
// Both are safe for concurrent use.
package id
