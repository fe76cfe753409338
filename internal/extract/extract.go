// Package extract resolves named fields inside container elements of a
// rendered page. Every field is optional: a selector that matches nothing
// yields nil and never fails the container.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field locates one value relative to a container
type Field struct {
	// Selector is relative to the container; empty means the container itself
	Selector string
	// Attr names the attribute to read; empty reads the trimmed text
	Attr string
}

// Text is a field reading the text of the first match
func Text(selector string) Field {
	return Field{Selector: selector}
}

// Attr is a field reading an attribute of the first match
func Attr(selector, attr string) Field {
	return Field{Selector: selector, Attr: attr}
}

// FieldMap maps field names to their locations
type FieldMap map[string]Field

// Values holds extracted fields; absent fields are nil
type Values map[string]*string

// Get returns the value of a field, nil when absent
func (v Values) Get(name string) *string {
	return v[name]
}

// Extractor reads fields from containers
type Extractor struct {
	// BaseURL resolves root-relative links; optional
	BaseURL string
}

// New creates an extractor resolving links against baseURL
func New(baseURL string) *Extractor {
	return &Extractor{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Document parses a rendered page snapshot
func Document(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Containers returns up to max elements matching selector in DOM order
func Containers(root *goquery.Selection, selector string, max int) []*goquery.Selection {
	if selector == "" || max <= 0 {
		return nil
	}

	matches := root.Find(selector)
	count := matches.Length()
	if count > max {
		count = max
	}

	containers := make([]*goquery.Selection, 0, count)
	for i := 0; i < count; i++ {
		containers = append(containers, matches.Eq(i))
	}
	return containers
}

// Extract resolves every field of fields inside container
func (e *Extractor) Extract(container *goquery.Selection, fields FieldMap) Values {
	values := make(Values, len(fields))
	for name, field := range fields {
		values[name] = e.Value(container, field)
	}
	return values
}

// Value resolves a single field, nil when nothing matches
func (e *Extractor) Value(container *goquery.Selection, field Field) *string {
	if container == nil {
		return nil
	}

	target := container
	if field.Selector != "" {
		target = container.Find(field.Selector)
	}
	if target.Length() == 0 {
		return nil
	}
	target = target.First()

	if field.Attr == "" {
		text := strings.TrimSpace(renderedText(target))
		return &text
	}

	value, exists := target.Attr(field.Attr)
	if !exists {
		return nil
	}
	if isURLAttr(field.Attr) {
		value = e.ResolveURL(strings.TrimSpace(value))
	}
	return &value
}

// invisibleSelector matches descendants that contribute no rendered text
const invisibleSelector = "script, style, noscript, template, [hidden]"

// renderedText returns the text of sel without script, style and hidden
// descendants, closer to what the page displays than the raw text content.
func renderedText(sel *goquery.Selection) string {
	if sel.Find(invisibleSelector).Length() == 0 {
		return sel.Text()
	}
	visible := sel.Clone()
	visible.Find(invisibleSelector).Remove()
	return visible.Text()
}

// ResolveURL makes protocol-relative and root-relative links absolute
func (e *Extractor) ResolveURL(href string) string {
	switch {
	case href == "":
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/") && e.BaseURL != "":
		return e.BaseURL + href
	default:
		return href
	}
}

func isURLAttr(attr string) bool {
	switch strings.ToLower(attr) {
	case "href", "src", "data-src", "srcset":
		return true
	}
	return false
}
