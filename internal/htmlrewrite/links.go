package htmlrewrite

import (
	"bytes"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
)

// Link is a URL-bearing attribute found in an HTML document.
type Link struct {
	URL       string // attribute value
	Tag       string // element name (a, img, script, link, ...)
	Attribute string // href or src
}

// Links lists the non-empty link attributes of body in document order.
func Links(body []byte) ([]Link, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to parse HTML").Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					links = append(links, Link{URL: v, Tag: n.Data, Attribute: attr})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
