// Package locator finds, waits for and clicks elements of a rendered page.
//
// Elements are selected by Selector predicates (tag, attribute, visible text)
// rather than by structural paths, so callers never deal with the DOM directly.
package locator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotRendered is returned by WaitRendered when the bound elapses first.
var ErrNotRendered = errors.New("element not rendered within wait bound")

// Locator is the capability a page exposes to the syllabus walker.
// Rendered means visible: elements that are hidden, collapsed or detached
// from layout are never waited for, listed or clicked.
type Locator interface {
	// Click triggers a click on the first visible element matching selector.
	Click(ctx context.Context, selector Selector) error
	// WaitRendered blocks until at least one element matching selector is
	// visible inside section, or returns ErrNotRendered once bound has elapsed.
	WaitRendered(ctx context.Context, section Section, selector Selector, bound time.Duration) error
	// List returns every visible element matching selector inside section, in document order.
	List(ctx context.Context, section Section, selector Selector) ([]Element, error)
}

// Section is the part of a page from the first element matching Start up to
// the next element matching Stop that is not inside it, in document order.
// The zero Section is the whole page.
type Section struct {
	Start Selector
	Stop  Selector
}

var WholePage = Section{}

func Between(start Selector, stop Selector) Section {
	return Section{Start: start, Stop: stop}
}

func (s Section) IsZero() bool {
	return s == WholePage
}

// Selector is a predicate over page elements. Empty fields match anything.
// Selectors are comparable with ==.
type Selector struct {
	Tag               string `mapstructure:"tag"`
	Attribute         string `mapstructure:"attribute"`
	AttributeValue    string `mapstructure:"attribute_value"`
	AttributeContains bool   `mapstructure:"attribute_contains"`
	TextContains      string `mapstructure:"text_contains"`
	TextEquals        string `mapstructure:"text_equals"`
}

func Tag(tag string) Selector {
	return Selector{Tag: tag}
}

func TextContains(tag string, text string) Selector {
	return Selector{Tag: tag, TextContains: text}
}

func AttributeEquals(tag string, name string, value string) Selector {
	return Selector{Tag: tag, Attribute: name, AttributeValue: value}
}

func AttributeContains(tag string, name string, value string) Selector {
	return Selector{Tag: tag, Attribute: name, AttributeValue: value, AttributeContains: true}
}

// WithText narrows s to elements whose normalized visible text equals label.
// An empty label removes the narrowing.
func (s Selector) WithText(label string) Selector {
	s.TextEquals = NormalizeSpace(label)
	return s
}

func (s Selector) IsZero() bool {
	return s == Selector{}
}

func (s Selector) tagOrWildcard() string {
	if s.Tag == "" {
		return "*"
	}
	return s.Tag
}

// XPath renders s as an XPath expression for chromedp.BySearch.
func (s Selector) XPath() string {
	var builder strings.Builder
	builder.WriteString("//")
	builder.WriteString(s.tagOrWildcard())
	if s.Attribute != "" {
		switch {
		case s.AttributeValue == "":
			fmt.Fprintf(&builder, "[@%s]", s.Attribute)
		case s.AttributeContains:
			fmt.Fprintf(&builder, "[contains(@%s,%s)]", s.Attribute, xpathLiteral(s.AttributeValue))
		default:
			fmt.Fprintf(&builder, "[@%s=%s]", s.Attribute, xpathLiteral(s.AttributeValue))
		}
	}
	if s.TextContains != "" {
		fmt.Fprintf(&builder, "[contains(normalize-space(.),%s)]", xpathLiteral(s.TextContains))
	}
	if s.TextEquals != "" {
		fmt.Fprintf(&builder, "[normalize-space(.)=%s]", xpathLiteral(s.TextEquals))
	}
	return builder.String()
}

func (s Selector) String() string {
	return s.XPath()
}

// xpathLiteral quotes value for XPath 1.0, which has no escape sequences.
func xpathLiteral(value string) string {
	if !strings.Contains(value, `"`) {
		return `"` + value + `"`
	}
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	parts := strings.Split(value, `"`)
	quotedParts := make([]string, 0, len(parts)*2)
	for index, part := range parts {
		if index > 0 {
			quotedParts = append(quotedParts, `'"'`)
		}
		if part != "" {
			quotedParts = append(quotedParts, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(quotedParts, ",") + ")"
}

// NormalizeSpace matches XPath normalize-space(): trims and collapses whitespace runs.
func NormalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Element is a snapshot of one rendered node. A link target read through
// Attribute("href") is absolute whenever the page URL was known.
type Element struct {
	text       string
	attributes map[string]string
}

func NewElement(text string, attributes map[string]string) Element {
	return Element{text: NormalizeSpace(text), attributes: attributes}
}

// Text is the normalized visible text.
func (e Element) Text() string {
	return e.text
}

func (e Element) Attribute(name string) (string, bool) {
	value, found := e.attributes[name]
	return value, found
}
