package cmdtree

import (
	"strings"

	"github.com/broady/apigen/ir"
)

// describe renders documentation as command or option help text, with
// extra lines inserted after the description. Parameter help is more
// compact than command help.
func describe(doc ir.Documentation, param bool, extra ...string) string {
	var sb strings.Builder
	sb.WriteString(doc.Description)
	for _, line := range extra {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(line)
	}
	if doc.Link == "" {
		return sb.String()
	}
	if sb.Len() > 0 {
		if param {
			sb.WriteString("\n")
		} else {
			sb.WriteString("\n\n")
		}
	}
	title := doc.LinkLabel
	if strings.TrimSpace(title) == "" {
		title = "Related Links"
		if param {
			title = "See"
		}
	}
	sb.WriteString(title)
	if param {
		sb.WriteString(": ")
	} else {
		sb.WriteString(":\n  ")
	}
	sb.WriteString(doc.Link)
	return sb.String()
}

func allowedValues(values []string) string {
	var sb strings.Builder
	sb.WriteString("Allowed values: ")
	for _, v := range values {
		sb.WriteString("\n  - ")
		sb.WriteString(v)
	}
	return sb.String()
}
