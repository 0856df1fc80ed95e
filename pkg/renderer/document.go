package renderer

import (
	"fmt"
	"html"
	"strings"
)

const indentUnit = "  "

type docWriter struct {
	b strings.Builder
}

func newDocWriter() *docWriter {
	return &docWriter{}
}

func (w *docWriter) open(title string) {
	w.b.WriteString("<!DOCTYPE html>\n")
	w.b.WriteString("<html lang=\"en\">\n")
	w.b.WriteString("<head>\n")
	w.b.WriteString("  <meta charset=\"utf-8\">\n")
	w.b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	w.b.WriteString("  <meta name=\"generator\" content=\"siteindex\">\n")
	fmt.Fprintf(&w.b, "  <title>%s</title>\n", escape(title))
	w.b.WriteString("</head>\n")
	w.b.WriteString("<body>\n")
}

func (w *docWriter) close() {
	w.b.WriteString("</body>\n")
	w.b.WriteString("</html>\n")
}

func (w *docWriter) line(indent int, format string, args ...any) {
	w.b.WriteString(strings.Repeat(indentUnit, indent))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *docWriter) String() string {
	return normalizeLFString(w.b.String())
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeLFString(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}
