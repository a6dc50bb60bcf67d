package htmlrewrite

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// linkAttrs lists the attribute holding a URL for each element we rewrite.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"video":  "src",
	"audio":  "src",
	"source": "src",
}

// Rewrite passes the URL attribute of every known link element through rw.
func Rewrite(body []byte, rw vfile.HrefRewriter) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(body))

	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				return out.Bytes(), nil
			}
			return nil, errors.WrapError(z.Err(), errors.CategoryRender, "failed to tokenize HTML").Build()
		}

		raw := z.Raw()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}

		name, _ := z.TagName()
		attr, ok := linkAttrs[string(name)]
		if !ok {
			out.Write(raw)
			continue
		}
		out.Write(rewriteTag(raw, len(name), attr, rw))
	}
}

// attrValue is the byte range of one attribute value inside a raw tag.
type attrValue struct {
	name       string
	start, end int
	quoted     bool
}

// rewriteTag rewrites the value of attr inside a raw start tag whose name is nameLen bytes long.
func rewriteTag(raw []byte, nameLen int, attr string, rw vfile.HrefRewriter) []byte {
	for _, v := range scanAttributes(raw, 1+nameLen) {
		if v.name != attr {
			continue
		}
		old := html.UnescapeString(string(raw[v.start:v.end]))
		next := rw.RewriteHref(old)
		if next == old {
			return raw
		}

		escaped := html.EscapeString(next)
		if !v.quoted {
			escaped = `"` + escaped + `"`
		}
		var buf bytes.Buffer
		buf.Grow(len(raw) + len(escaped))
		buf.Write(raw[:v.start])
		buf.WriteString(escaped)
		buf.Write(raw[v.end:])
		return buf.Bytes()
	}
	return raw
}

// scanAttributes lists attribute values of a raw start tag, starting after the tag name.
// Names are lowercased; attributes without a value are skipped.
func scanAttributes(raw []byte, i int) []attrValue {
	isSpace := func(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' }

	var attrs []attrValue
	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}

		nameStart := i
		i++
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && raw[i] != '/' {
			i++
		}
		name := strings.ToLower(string(raw[nameStart:i]))

		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			continue
		}
		i++
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) {
			break
		}

		if q := raw[i]; q == '"' || q == '\'' {
			end := bytes.IndexByte(raw[i+1:], q)
			if end < 0 {
				break
			}
			attrs = append(attrs, attrValue{name: name, start: i + 1, end: i + 1 + end, quoted: true})
			i += end + 2
			continue
		}

		start := i
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '>' {
			i++
		}
		attrs = append(attrs, attrValue{name: name, start: start, end: i})
	}
	return attrs
}
