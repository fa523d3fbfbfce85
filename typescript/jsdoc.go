package typescript

import (
	"bytes"
	"strings"

	"github.com/broady/tsapi/schema"
)

// emitJSDoc writes a documentation block for doc at the given indent:
// the description first, then the deprecation note. Nothing is written
// when both are absent.
func emitJSDoc(buf *bytes.Buffer, indent string, doc schema.Documentation) {
	if doc.IsZero() {
		return
	}

	buf.WriteString(indent)
	buf.WriteString("/**\n")
	if doc.Description != "" {
		for _, line := range strings.Split(strings.TrimSpace(doc.Description), "\n") {
			writeDocLine(buf, indent, strings.TrimRight(line, " \t\r"))
		}
	}
	if doc.Deprecated != nil {
		line := "@deprecated"
		if note := strings.TrimSpace(*doc.Deprecated); note != "" {
			line += " " + strings.ReplaceAll(note, "\n", " ")
		}
		writeDocLine(buf, indent, line)
	}
	buf.WriteString(indent)
	buf.WriteString(" */\n")
}

func writeDocLine(buf *bytes.Buffer, indent, line string) {
	buf.WriteString(indent)
	if line == "" {
		buf.WriteString(" *\n")
		return
	}
	buf.WriteString(" * ")
	// A literal */ would end the comment early.
	buf.WriteString(strings.ReplaceAll(line, "*/", "*\\/"))
	buf.WriteString("\n")
}
