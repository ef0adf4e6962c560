package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMarkdownEmpty(t *testing.T) {
	assert.Equal(t, "", Markdown(""))
	assert.Equal(t, "", Markdown("   \n\t\n  "))
}

func TestMarkdownBoldAndScript(t *testing.T) {
	got := Markdown("**bold** and <script>")
	assert.Equal(t, "<p><strong>bold</strong> and &lt;script&gt;</p>", got)
	assert.NotContains(t, got, "<script>")
}

func TestMarkdownBlocks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "# Title", "<h1>Title</h1>"},
		{"heading level", "### Third", "<h3>Third</h3>"},
		{"heading capped", "######### Deep", "<h6>Deep</h6>"},
		{"hash without space", "#tag", "<p>#tag</p>"},
		{"indented heading", "  ## Two", "<h2>Two</h2>"},
		{"list", "- one\n* two", "<ul><li>one</li><li>two</li></ul>"},
		{"paragraph breaks", "line one\nline two", "<p>line one<br>line two</p>"},
		{"blank separated", "a\n\nb", "<p>a</p>\n<p>b</p>"},
		{"whitespace line separates", "a\n   \nb", "<p>a</p>\n<p>b</p>"},
		{"heading then text", "# T\nbody", "<h1>T</h1>\n<p>body</p>"},
		{"text then list", "intro\n- x", "<p>intro</p>\n<ul><li>x</li></ul>"},
		{"crlf", "a\r\nb", "<p>a<br>b</p>"},
		{"dash without space", "-not a list", "<p>-not a list</p>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Markdown(tc.in))
		})
	}
}

func TestMarkdownInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"italic", "an *emphasis* here", "<p>an <em>emphasis</em> here</p>"},
		{"bold with italic inside", "**a *b* c**", "<p><strong>a <em>b</em> c</strong></p>"},
		{"code is literal", "`**x** <b>`", "<p><code>**x** &lt;b&gt;</code></p>"},
		{"link", "[site](https://example.com/a?b=1&c=2)", `<p><a href="https://example.com/a?b=1&amp;c=2">site</a></p>`},
		{"link without scheme", "[x](nowhere)", `<p><a href="nowhere">x</a></p>`},
		{"link text emphasis", "[**go**](/docs)", `<p><a href="/docs"><strong>go</strong></a></p>`},
		{"markers in url stay in url", "[u](/a*b*c)", `<p><a href="/a*b*c">u</a></p>`},
		{"javascript link neutralized", "[x](javascript:alert(1))", `<p>[x](javascript:alert(1))</p>`},
		{"javascript href", "[x](JavaScript:void)", `<p><a href="#">x</a></p>`},
		{"quote escaped", `say "hi" & bye`, "<p>say &quot;hi&quot; &amp; bye</p>"},
		{"unterminated bold", "**open", "<p>**open</p>"},
		{"unterminated italic", "a * b", "<p>a * b</p>"},
		{"unterminated code", "`open", "<p>`open</p>"},
		{"attribute breakout", `[x](/a"onmouseover=alert)`, `<p><a href="/a&quot;onmouseover=alert">x</a></p>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Markdown(tc.in))
		})
	}
}

func TestRendererHeadingCap(t *testing.T) {
	r := Renderer{MaxHeading: 3}
	assert.Equal(t, "<h3>Deep</h3>", r.Render("##### Deep"))
}

func TestSanitizeKeepsRenderedStructure(t *testing.T) {
	out := SafePreview("# Hi\n\n- **a**\n- `b`\n\n[l](https://x.test)")
	for _, want := range []string{"<h1>Hi</h1>", "<strong>a</strong>", "<code>b</code>", `href="https://x.test"`} {
		assert.Contains(t, out, want)
	}
}

func TestSanitizeStripsForeignMarkup(t *testing.T) {
	out := Sanitize(`<p onclick="x()">a</p><script>alert(1)</script><iframe src="x"></iframe>`)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<iframe")
}

func TestMarkdownDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := rapid.String().Draw(t, "src")
		if Markdown(src) != Markdown(src) {
			t.Fatalf("render is not deterministic for %q", src)
		}
	})
}

func TestMarkdownNeverEmitsRawTags(t *testing.T) {
	allowed := []string{"<h1>", "</h1>", "<h2>", "</h2>", "<h3>", "</h3>", "<h4>", "</h4>", "<h5>", "</h5>", "<h6>", "</h6>",
		"<p>", "</p>", "<br>", "<ul>", "</ul>", "<li>", "</li>", "<strong>", "</strong>", "<em>", "</em>",
		"<code>", "</code>", "</a>"}
	rapid.Check(t, func(t *rapid.T) {
		src := rapid.StringMatching(`[a-z <>"&*#\-\[\]()\x60/:\n]{0,80}`).Draw(t, "src")
		out := Markdown(src)
		rest := out
		for _, tag := range allowed {
			rest = strings.ReplaceAll(rest, tag, "")
		}
		for {
			i := strings.Index(rest, `<a href="`)
			if i < 0 {
				break
			}
			j := strings.Index(rest[i+9:], `">`)
			if j < 0 {
				t.Fatalf("unterminated anchor in %q", out)
			}
			if strings.ContainsAny(rest[i+9:i+9+j], `<>"`) {
				t.Fatalf("raw markup inside href in %q", out)
			}
			rest = rest[:i] + rest[i+9+j+2:]
		}
		if strings.ContainsAny(rest, "<>") {
			t.Fatalf("unexpected raw markup %q from %q", out, src)
		}
	})
}
