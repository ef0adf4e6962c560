package render

import (
	"html"
	"regexp"
	"strings"
)

var (
	escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

	codeRe   = regexp.MustCompile("`([^`]+)`")
	linkRe   = regexp.MustCompile(`\[([^\[\]]*)\]\(([^()\s]*)\)`)
	boldRe   = regexp.MustCompile(`\*\*(\S(?:.*?\S)?)\*\*`)
	italicRe = regexp.MustCompile(`\*([^\s*](?:[^*]*[^\s*])?)\*`)
)

// segment is a run of output. Final segments are generated markup or code
// span contents and are never rewritten by later steps.
type segment struct {
	s     string
	final bool
}

// inline escapes raw text and then recognizes code, links, bold and italic.
// Link targets are lifted out before emphasis so markers inside a URL can
// never place tags inside an attribute value.
func inline(raw string) string {
	segs := []segment{{s: escaper.Replace(raw)}}
	segs = replaceSpans(segs, codeRe, func(g []string) []segment {
		return []segment{{s: "<code>" + g[1] + "</code>", final: true}}
	})
	segs = replaceSpans(segs, linkRe, func(g []string) []segment {
		return []segment{
			{s: `<a href="` + safeHref(g[2]) + `">`, final: true},
			{s: g[1]},
			{s: "</a>", final: true},
		}
	})
	segs = replaceSpans(segs, boldRe, wrap("strong"))
	segs = replaceSpans(segs, italicRe, wrap("em"))

	var b strings.Builder
	for _, sg := range segs {
		b.WriteString(sg.s)
	}
	return b.String()
}

func wrap(tag string) func([]string) []segment {
	return func(g []string) []segment {
		return []segment{
			{s: "<" + tag + ">", final: true},
			{s: g[1]},
			{s: "</" + tag + ">", final: true},
		}
	}
}

// replaceSpans applies re to every non-final segment, splicing in the
// segments produced by fn for each match.
func replaceSpans(segs []segment, re *regexp.Regexp, fn func(groups []string) []segment) []segment {
	out := make([]segment, 0, len(segs))
	for _, sg := range segs {
		if sg.final {
			out = append(out, sg)
			continue
		}
		locs := re.FindAllStringSubmatchIndex(sg.s, -1)
		if locs == nil {
			out = append(out, sg)
			continue
		}
		last := 0
		for _, loc := range locs {
			if loc[0] > last {
				out = append(out, segment{s: sg.s[last:loc[0]]})
			}
			groups := make([]string, len(loc)/2)
			for i := range groups {
				if loc[2*i] >= 0 {
					groups[i] = sg.s[loc[2*i]:loc[2*i+1]]
				}
			}
			out = append(out, fn(groups)...)
			last = loc[1]
		}
		if last < len(sg.s) {
			out = append(out, segment{s: sg.s[last:]})
		}
	}
	return out
}

var blockedSchemes = []string{"javascript:", "vbscript:", "data:"}

// safeHref returns the already-escaped target unless it names a script-capable
// scheme, in which case the anchor points nowhere.
func safeHref(escaped string) string {
	raw := strings.ToLower(html.UnescapeString(escaped))
	raw = strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	for _, s := range blockedSchemes {
		if strings.HasPrefix(raw, s) {
			return "#"
		}
	}
	return escaped
}
