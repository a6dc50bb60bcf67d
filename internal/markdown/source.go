package markdown

import (
	"bytes"
	"strings"

	gmast "github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// RewriteSource rewrites the destinations of inline links, images and reference
// definitions in a Markdown body and leaves every other byte untouched.
//
// Destinations that cannot be located verbatim in the source (entity-encoded or
// backslash-escaped, or links with empty text) are left as they are.
func RewriteSource(body []byte, rw vfile.HrefRewriter) ([]byte, error) {
	root, ctx := parse(body)

	var edits []Edit
	add := func(start int, dest string) {
		if next := rw.RewriteHref(dest); next != dest {
			edits = append(edits, Edit{Start: start, End: start + len(dest), Replacement: []byte(next)})
		}
	}

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		var dest []byte
		switch node := n.(type) {
		case *gmast.Link:
			dest = node.Destination
		case *gmast.Image:
			dest = node.Destination
		default:
			return gmast.WalkContinue, nil
		}
		if start, ok := inlineDestinationOffset(body, n, dest); ok {
			add(start, string(dest))
		}
		return gmast.WalkContinue, nil
	})

	known := make(map[string]bool)
	for _, ref := range ctx.References() {
		known[string(ref.Destination())] = true
	}
	for _, def := range scanReferenceDefinitions(body) {
		if known[def.destination] {
			add(def.start, def.destination)
		}
	}

	return ApplyEdits(body, edits)
}

// inlineDestinationOffset locates dest right after the "](" that closes n's text.
func inlineDestinationOffset(body []byte, n gmast.Node, dest []byte) (int, bool) {
	stop := lastSegmentStop(body, n)
	if stop < 0 || len(dest) == 0 {
		return 0, false
	}

	i := stop
	for i < len(body) && strings.IndexByte("*_`~", body[i]) >= 0 {
		i++
	}
	if !bytes.HasPrefix(body[i:], []byte("](")) {
		return 0, false
	}
	i += 2
	for i < len(body) && (body[i] == ' ' || body[i] == '\t' || body[i] == '\n') {
		i++
	}
	if i < len(body) && body[i] == '<' {
		i++
	}
	if !bytes.HasPrefix(body[i:], dest) {
		return 0, false
	}
	return i, true
}

// lastSegmentStop returns the end offset of the last source segment under n, or -1.
// An image nested in n counts as ending at its closing parenthesis.
func lastSegmentStop(body []byte, n gmast.Node) int {
	stop := -1
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *gmast.Image:
			if c == n {
				return gmast.WalkContinue, nil
			}
			stop = max(stop, imageEnd(body, node))
			return gmast.WalkSkipChildren, nil
		case *gmast.Text:
			stop = max(stop, node.Segment.Stop)
		case *gmast.RawHTML:
			if l := node.Segments.Len(); l > 0 {
				stop = max(stop, node.Segments.At(l-1).Stop)
			}
		}
		return gmast.WalkContinue, nil
	})
	return stop
}

// imageEnd returns the offset just past the ")" closing img, or -1.
func imageEnd(body []byte, img *gmast.Image) int {
	start, ok := inlineDestinationOffset(body, img, img.Destination)
	if !ok {
		return -1
	}
	var quote byte
	for i := start + len(img.Destination); i < len(body); i++ {
		switch c := body[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' && i > start+len(img.Destination):
			quote = ')'
		case c == ')':
			return i + 1
		}
	}
	return -1
}

type referenceDefinition struct {
	start       int
	destination string
}

// scanReferenceDefinitions finds "[label]: destination" lines outside fenced code.
func scanReferenceDefinitions(body []byte) []referenceDefinition {
	var defs []referenceDefinition
	inFence := false
	fence := ""

	offset := 0
	for _, line := range strings.SplitAfter(string(body), "\n") {
		lineStart := offset
		offset += len(line)

		trimmed := strings.TrimSpace(line)
		for _, f := range []string{"```", "~~~"} {
			if strings.HasPrefix(trimmed, f) {
				inFence, fence = toggleFence(inFence, fence, f)
			}
		}
		if inFence || strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " "))
		if indent > 3 || !strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "[^") {
			continue
		}
		label := strings.IndexByte(line, ']')
		if label < 0 || !strings.HasPrefix(line[label:], "]:") {
			continue
		}
		i := label + 2
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i < len(line) && line[i] == '<' {
			i++
		}
		end := i
		for end < len(line) && !strings.ContainsRune(" \t\r\n>", rune(line[end])) {
			end++
		}
		if end > i {
			defs = append(defs, referenceDefinition{start: lineStart + i, destination: line[i:end]})
		}
	}
	return defs
}

func toggleFence(inFence bool, active, fence string) (bool, string) {
	if !inFence {
		return true, fence
	}
	if active == fence {
		return false, ""
	}
	return inFence, active
}
