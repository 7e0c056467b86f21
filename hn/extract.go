package hn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/hnjobs/core"
	"golang.org/x/net/html"
)

// ParsePage parses raw thread HTML into a document tree.
func ParsePage(page string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPage, err)
	}
	return doc, nil
}

// ExtractPostings walks a parsed thread page and returns its top-level
// comments as posting candidates, in document order.
//
// Comment rows are `tr.athing.comtr` nodes. Rows whose indent attribute is
// greater than zero are replies and are dropped entirely. Entries without a
// recoverable external id are still emitted with ExternalId 0; filtering them
// is the ingestor's job.
func ExtractPostings(doc *html.Node) []core.RawPosting {
	var postings []core.RawPosting
	for _, row := range commentRows(doc) {
		if indentDepth(row) > 0 {
			continue
		}
		postings = append(postings, core.RawPosting{
			Text:       commentMarkup(row),
			Author:     authorHandle(row),
			ExternalId: externalId(row),
		})
	}
	return postings
}

// commentRows returns every comment row node in document order.
func commentRows(doc *html.Node) []*html.Node {
	var rows []*html.Node
	walk(doc, func(n *html.Node) bool {
		if isElement(n, "tr") && hasClass(n, "athing") && hasClass(n, "comtr") {
			rows = append(rows, n)
			return false // comment rows are not nested
		}
		return true
	})
	return rows
}

// indentDepth reads the reply depth from the row's indent cell.
// Depth zero means top level.
func indentDepth(row *html.Node) int {
	cell := find(row, func(n *html.Node) bool {
		return isElement(n, "td") && hasAttr(n, "indent")
	})
	if cell == nil {
		return 0
	}
	depth, err := strconv.Atoi(attr(cell, "indent"))
	if err != nil {
		return 0
	}
	return depth
}

// commentMarkup returns the raw inner markup of the row's content block,
// entities left undecoded.
func commentMarkup(row *html.Node) string {
	block := find(row, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "commtext")
	})
	if block == nil {
		return ""
	}
	var sb strings.Builder
	for child := block.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&sb, child); err != nil {
			return ""
		}
	}
	return sb.String()
}

// authorHandle returns the poster's display handle, if present.
func authorHandle(row *html.Node) string {
	user := find(row, func(n *html.Node) bool {
		return isElement(n, "a") && hasClass(n, "hnuser")
	})
	if user == nil {
		return ""
	}
	return textContent(user)
}

// externalId derives the HN item id from the row's age/permalink control:
// the trailing numeric segment of the link target, after the last "=" (or
// the last "/" for path-style links). Returns 0 when no id is recoverable.
func externalId(row *html.Node) int64 {
	age := find(row, func(n *html.Node) bool {
		return isElement(n, "span") && hasClass(n, "age")
	})
	if age == nil {
		return 0
	}
	link := find(age, func(n *html.Node) bool {
		return isElement(n, "a")
	})
	if link == nil {
		return 0
	}
	return idFromTarget(attr(link, "href"))
}

func idFromTarget(href string) int64 {
	if href == "" {
		return 0
	}
	segment := href
	if i := strings.LastIndexByte(segment, '='); i >= 0 {
		segment = segment[i+1:]
	} else if i := strings.LastIndexByte(segment, '/'); i >= 0 {
		segment = segment[i+1:]
	}
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// Tree helpers

// walk visits nodes depth-first; visit returning false prunes the subtree.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

// find returns the first descendant (or n itself) matching pred.
func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := find(child, pred); found != nil {
			return found
		}
	}
	return nil
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(child *html.Node) bool {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
		return true
	})
	return sb.String()
}
