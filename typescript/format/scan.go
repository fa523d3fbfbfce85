package format

import (
	"strings"
)

// line is one source line with surrounding whitespace removed.
type line struct {
	text      string
	depth     int  // bracket depth, already lowered for leading closers
	inComment bool // the line starts inside a block comment
}

var closerFor = map[byte]byte{'{': '}', '[': ']', '(': ')'}

type opener struct {
	char byte
	line int
	col  int
}

// scanner tracks the lexical state that crosses line boundaries.
type scanner struct {
	stack   []opener
	inBlock bool
	quote   byte // 0 outside a string literal
	lineNo  int

	// where the open comment or template literal began
	openLine int
}

// scan splits src into lines and computes each line's bracket depth.
// It fails on mismatched brackets and unterminated strings or comments.
func scan(src string) ([]line, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	raw := strings.Split(src, "\n")
	s := &scanner{}
	out := make([]line, 0, len(raw))
	for i, r := range raw {
		s.lineNo = i + 1
		l, err := s.line(strings.TrimSpace(r))
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	if s.inBlock {
		return nil, &SyntaxError{Line: s.openLine, Message: "unterminated comment"}
	}
	if s.quote != 0 {
		return nil, &SyntaxError{Line: s.openLine, Message: "unterminated template literal"}
	}
	if n := len(s.stack); n > 0 {
		open := s.stack[n-1]
		return nil, &SyntaxError{Line: open.line, Column: open.col, Message: "unclosed " + string(open.char)}
	}
	return out, nil
}

func (s *scanner) line(text string) (line, error) {
	l := line{depth: len(s.stack), inComment: s.inBlock}
	if !s.inBlock && s.quote == 0 {
		for i := 0; i < len(text) && isCloser(text[i]); i++ {
			l.depth--
		}
	}

	lastCode := -1
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case s.inBlock:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				s.inBlock = false
				i++
			}
			continue
		case s.quote != 0:
			switch c {
			case '\\':
				i++
			case s.quote:
				s.quote = 0
				lastCode = i
			}
			continue
		}

		switch c {
		case '/':
			if i+1 < len(text) && text[i+1] == '/' {
				i = len(text)
				continue
			}
			if i+1 < len(text) && text[i+1] == '*' {
				s.inBlock = true
				s.openLine = s.lineNo
				i++
				continue
			}
		case '"', '\'', '`':
			s.quote = c
			s.openLine = s.lineNo
		case '{', '[', '(':
			s.stack = append(s.stack, opener{char: c, line: s.lineNo, col: i})
		case '}', ']', ')':
			n := len(s.stack)
			if n == 0 {
				return line{}, &SyntaxError{Line: s.lineNo, Column: i, Message: "unexpected " + string(c)}
			}
			if want := closerFor[s.stack[n-1].char]; want != c {
				return line{}, &SyntaxError{Line: s.lineNo, Column: i, Message: "expected " + string(want) + " but found " + string(c)}
			}
			s.stack = s.stack[:n-1]
		}
		if c != ' ' && c != '\t' {
			lastCode = i
		}
	}

	if s.quote == '"' || s.quote == '\'' {
		return line{}, &SyntaxError{Line: s.lineNo, Message: "unterminated string literal"}
	}
	if lastCode == len(text)-1 && lastCode >= 0 && text[lastCode] == ';' {
		text = strings.TrimRight(text[:lastCode], " \t")
	}
	l.text = text
	return l, nil
}

func isCloser(c byte) bool {
	return c == '}' || c == ']' || c == ')'
}
