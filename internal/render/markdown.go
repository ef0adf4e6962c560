package render

import (
	"strings"
)

// MaxHeading is the deepest heading level emitted; deeper markers are capped.
const MaxHeading = 6

// Markdown renders the minimal markup dialect used by notes into HTML.
// It never fails: anything it does not recognize is emitted as escaped text.
func Markdown(src string) string {
	return Renderer{MaxHeading: MaxHeading}.Render(src)
}

// Renderer holds the few knobs the block pass honors.
type Renderer struct {
	MaxHeading int
}

// Render runs the block pass and then the inline pass on every block.
func (r Renderer) Render(src string) string {
	maxH := r.MaxHeading
	if maxH <= 0 || maxH > MaxHeading {
		maxH = MaxHeading
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")

	var out []string
	for _, blk := range splitBlocks(src) {
		out = append(out, renderBlock(blk, maxH)...)
	}
	return strings.Join(out, "\n")
}

// splitBlocks groups lines into blocks separated by blank or whitespace-only lines.
func splitBlocks(src string) [][]string {
	var blocks [][]string
	var cur []string
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// renderBlock classifies the lines of one block. A block may yield more than
// one element when a heading or list sits directly on top of paragraph text.
func renderBlock(lines []string, maxH int) []string {
	var out []string
	var para []string
	var items []string

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		rendered := make([]string, len(para))
		for i, l := range para {
			rendered[i] = inline(strings.TrimSpace(l))
		}
		out = append(out, "<p>"+strings.Join(rendered, "<br>")+"</p>")
		para = nil
	}
	flushList := func() {
		if len(items) == 0 {
			return
		}
		var b strings.Builder
		b.WriteString("<ul>")
		for _, it := range items {
			b.WriteString("<li>")
			b.WriteString(inline(it))
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
		out = append(out, b.String())
		items = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if level, text, ok := heading(trimmed); ok {
			flushPara()
			flushList()
			if level > maxH {
				level = maxH
			}
			tag := "h" + string(rune('0'+level))
			out = append(out, "<"+tag+">"+inline(text)+"</"+tag+">")
			continue
		}
		if text, ok := listItem(trimmed); ok {
			flushPara()
			items = append(items, text)
			continue
		}
		flushList()
		para = append(para, line)
	}
	flushPara()
	flushList()
	return out
}

// heading reports whether line is one or more '#' followed by a space.
func heading(line string) (level int, text string, ok bool) {
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(line[level+1:]), true
}

func listItem(line string) (string, bool) {
	if len(line) < 2 || line[1] != ' ' {
		return "", false
	}
	if line[0] != '-' && line[0] != '*' {
		return "", false
	}
	return strings.TrimSpace(line[2:]), true
}
