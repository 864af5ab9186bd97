package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// ContainerStrategy locates the repeated "item" fragments in a document.
// Strategies are tried in priority order; the engine stops at the first one
// that finds a non-zero number of containers.
type ContainerStrategy interface {
	// Name returns the strategy identifier for logging.
	Name() string

	// Find returns one selection per candidate item container.
	Find(doc *goquery.Document) []*goquery.Selection
}

// CSSStrategy finds containers with a CSS selector via goquery.
type CSSStrategy struct {
	// Label identifies the strategy in logs ("primary", "secondary", ...).
	Label string

	// Selector is the container CSS selector.
	Selector string
}

// Name implements ContainerStrategy.
func (s *CSSStrategy) Name() string { return s.Label }

// Find implements ContainerStrategy.
func (s *CSSStrategy) Find(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find(s.Selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, sel)
	})
	return out
}

// XPathStrategy finds containers with an XPath expression via htmlquery.
// Used as the loosest fallback: XPath can reach structures that the stricter
// CSS selectors miss when the source markup shifts.
type XPathStrategy struct {
	Label string

	// Expr is the container XPath expression.
	Expr string
}

// Name implements ContainerStrategy.
func (s *XPathStrategy) Name() string { return s.Label }

// Find implements ContainerStrategy. Matched nodes are wrapped back into
// goquery selections so field extraction works identically across
// strategies.
func (s *XPathStrategy) Find(doc *goquery.Document) []*goquery.Selection {
	if len(doc.Selection.Nodes) == 0 {
		return nil
	}
	root := doc.Selection.Nodes[0]

	nodes, err := htmlquery.QueryAll(root, s.Expr)
	if err != nil {
		return nil
	}

	out := make([]*goquery.Selection, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, goquery.NewDocumentFromNode(node).Selection)
	}
	return out
}
