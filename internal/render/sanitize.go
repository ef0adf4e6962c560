package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy whitelists exactly the structure Markdown emits.
var policy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6", "p", "br", "ul", "li", "strong", "em", "code")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	return p
})

// Sanitize passes rendered HTML through the whitelist policy. Output from
// Markdown is already safe; this is applied where rendered markup leaves the
// process (the HTTP preview endpoint, `render --sanitize`).
func Sanitize(html string) string {
	return policy().Sanitize(html)
}

// SafePreview renders src and sanitizes the result.
func SafePreview(src string) string {
	return Sanitize(Markdown(src))
}
