package note

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
)

type mathKind int

const (
	inlineMath mathKind = iota
	displayMath
)

type mathSegment struct {
	kind mathKind
	tex  string
}

// extraction holds the math segments taken out of a note and the
// placeholders that replace them.
type extraction struct {
	nonce    string
	segments []mathSegment
}

func newExtraction() *extraction {
	return &extraction{nonce: strings.Replace(uuid.NewString(), "-", "", -1)}
}

func (e *extraction) placeholder(i int) string {
	return fmt.Sprintf("MATH%s%dX", e.nonce, i)
}

func (e *extraction) add(kind mathKind, tex string) string {
	e.segments = append(e.segments, mathSegment{kind: kind, tex: tex})
	return e.placeholder(len(e.segments) - 1)
}

// restore puts the math segments back in html, escaped and wrapped for
// the client side renderer.
func (e *extraction) restore(html string) string {
	pairs := make([]string, 0, 2*len(e.segments))
	for i, s := range e.segments {
		tex := template.HTMLEscapeString(s.tex)

		var rendered string
		switch s.kind {
		case displayMath:
			rendered = `<span class="math display">\[` + tex + `\]</span>`
		default:
			rendered = `<span class="math inline">\(` + tex + `\)</span>`
		}
		pairs = append(pairs, e.placeholder(i), rendered)
	}
	return strings.NewReplacer(pairs...).Replace(html)
}

// extract replaces the math of src by placeholders: ```equation fences and
// $$...$$ as display math, $...$ on a single line as inline math. Code
// blocks and code spans are left alone. Delimiters without a closing
// counterpart stay in the text as they are.
func (e *extraction) extract(src string) string {
	lines := strings.SplitAfter(src, "\n")

	var out, text strings.Builder
	flush := func() {
		out.WriteString(e.extractInline(text.String()))
		text.Reset()
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		fence, info := openingFence(line)
		if fence == "" {
			text.WriteString(line)
			continue
		}

		end := closingFence(lines, i+1, fence)
		if end < 0 {
			// Unclosed fence: the rest is a code block.
			text.WriteString(line)
			continue
		}
		flush()

		if info == "equation" || info == "math" {
			tex := strings.TrimSuffix(strings.Join(lines[i+1:end], ""), "\n")
			out.WriteString("\n" + e.add(displayMath, tex) + "\n")
			if strings.HasSuffix(lines[end], "\n") {
				out.WriteString("\n")
			}
		} else {
			out.WriteString(strings.Join(lines[i:end+1], ""))
		}
		i = end
	}
	flush()

	return out.String()
}

func openingFence(line string) (fence, info string) {
	trimmed := strings.TrimSpace(line)
	for _, f := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, f) {
			return f, strings.TrimSpace(strings.TrimLeft(trimmed, f[:1]))
		}
	}
	return "", ""
}

func closingFence(lines []string, from int, fence string) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == fence {
			return j
		}
	}
	return -1
}

func (e *extraction) extractInline(text string) string {
	var out strings.Builder

	for i := 0; i < len(text); {
		switch {
		case text[i] == '\\' && i+1 < len(text) && text[i+1] == '$':
			out.WriteByte('$')
			i += 2

		case text[i] == '`':
			n := runLength(text, i, '`')
			closing := strings.Index(text[i+n:], strings.Repeat("`", n))
			if closing < 0 {
				out.WriteString(text[i : i+n])
				i += n
				continue
			}
			end := i + n + closing + n
			out.WriteString(text[i:end])
			i = end

		case strings.HasPrefix(text[i:], "$$"):
			closing := strings.Index(text[i+2:], "$$")
			if closing < 0 {
				out.WriteString("$$")
				i += 2
				continue
			}
			tex := strings.TrimSpace(text[i+2 : i+2+closing])
			out.WriteString(e.add(displayMath, tex))
			i += 2 + closing + 2

		case text[i] == '$':
			closing := strings.IndexAny(text[i+1:], "$\n")
			if closing <= 0 || text[i+1+closing] != '$' {
				out.WriteByte('$')
				i++
				continue
			}
			out.WriteString(e.add(inlineMath, text[i+1:i+1+closing]))
			i += 1 + closing + 1

		default:
			out.WriteByte(text[i])
			i++
		}
	}
	return out.String()
}

func runLength(s string, from int, c byte) int {
	n := 0
	for from+n < len(s) && s[from+n] == c {
		n++
	}
	return n
}
