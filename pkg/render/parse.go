package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrMalformedTable is returned when a HEADERS row is not a name/value pair.
var ErrMalformedTable = errors.New("render: malformed headers table")

// ParseHeaders reads the HEADERS table back out of a rendered fragment.
// A fragment without a HEADERS section yields no fields.
func ParseHeaders(fragment string) ([]Field, error) {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var (
		fields    []Field
		heading   strings.Builder
		cell      strings.Builder
		row       []string
		inHeading bool
		inHeaders bool
		inCell    bool
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return fields, nil

		case html.StartTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.H3:
				inHeading = true
				heading.Reset()
			case atom.Tr:
				row = row[:0]
			case atom.Td:
				if inHeaders {
					inCell = true
					cell.Reset()
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.H3:
				inHeading = false
				inHeaders = strings.TrimSpace(heading.String()) == "HEADERS"
			case atom.Td:
				if inCell {
					row = append(row, cell.String())
					inCell = false
				}
			case atom.Tr:
				if !inHeaders {
					continue
				}
				if len(row) != 2 {
					return nil, fmt.Errorf("%w: row has %d cells", ErrMalformedTable, len(row))
				}
				fields = append(fields, Field{Name: row[0], Value: row[1]})
			case atom.Table, atom.Section:
				inHeaders = false
			}

		case html.TextToken:
			switch {
			case inHeading:
				heading.Write(z.Text())
			case inCell:
				cell.Write(z.Text())
			}
		}
	}
}
