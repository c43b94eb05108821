package renderer

import (
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

const htmlMediaType = "text/html"

type minifier struct {
	m *minify.M
}

func newMinifier() *minifier {
	m := minify.New()
	m.Add(htmlMediaType, &mhtml.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	return &minifier{m: m}
}

func (mf *minifier) html(raw []byte) ([]byte, error) {
	return mf.m.Bytes(htmlMediaType, raw)
}
