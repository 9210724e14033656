package sequence

import (
	"regexp"
	"strings"
)

var plainName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// PlantUML renders messages as PlantUML sequence diagram source. Response
// arrows are dashed and coloured by outcome.
func PlantUML(title string, msgs []Message) string {
	var b strings.Builder
	b.WriteString("@startuml\n")
	if title != "" {
		b.WriteString("title " + oneLine(title) + "\n")
	}
	for _, m := range msgs {
		arrow := "->"
		if m.IsResponse() {
			arrow = "-->"
			if m.Colour != "" {
				arrow = "-[#" + m.Colour + "]->"
			}
		}
		b.WriteString(participantRef(m.From))
		b.WriteString(" " + arrow + " ")
		b.WriteString(participantRef(m.To))
		if m.Label != "" {
			b.WriteString(" : " + oneLine(m.Label))
		}
		b.WriteString("\n")
	}
	b.WriteString("@enduml\n")
	return b.String()
}

func participantRef(name string) string {
	if plainName.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(oneLine(name), `"`, `'`) + `"`
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}
