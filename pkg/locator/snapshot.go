package locator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var concealedTags = map[string]struct{}{
	"head":     {},
	"template": {},
	"script":   {},
	"style":    {},
	"noscript": {},
}

// Snapshot is a parsed copy of a page at one moment, together with the URL
// relative links are resolved against.
type Snapshot struct {
	document *goquery.Document
	pageURL  *url.URL
}

// NewSnapshot parses pageHTML. pageURL may be empty, in which case hrefs are
// returned as written.
func NewSnapshot(pageHTML string, pageURL string) (*Snapshot, error) {
	document, documentError := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if documentError != nil {
		return nil, documentError
	}
	snapshot := &Snapshot{document: document}
	if pageURL != "" {
		parsedURL, parseError := url.Parse(pageURL)
		if parseError != nil {
			return nil, fmt.Errorf("page url %q: %w", pageURL, parseError)
		}
		snapshot.pageURL = parsedURL
	}
	return snapshot, nil
}

// Find evaluates selector against the visible part of the snapshot, limited
// to section. Nodes hidden by markup (the hidden attribute, inline
// display:none or visibility:hidden, hidden inputs) and everything inside
// them are skipped.
func (s *Snapshot) Find(section Section, selector Selector) []Element {
	var matchedElements []Element
	var sectionStart *goquery.Selection
	inSection := section.IsZero()

	s.document.Find("*").Each(func(_ int, node *goquery.Selection) {
		if concealed(node) {
			return
		}
		if !section.IsZero() {
			switch {
			case sectionStart == nil:
				if section.Start.matches(node) {
					sectionStart = node
					inSection = true
				}
			case inSection && !section.Stop.IsZero() && section.Stop.matches(node) && !sectionStart.Contains(node.Nodes[0]):
				inSection = false
			}
		}
		if inSection && selector.matches(node) {
			matchedElements = append(matchedElements, s.elementFromSelection(node))
		}
	})
	return matchedElements
}

func (s Selector) matches(candidate *goquery.Selection) bool {
	if s.Tag != "" && goquery.NodeName(candidate) != s.Tag {
		return false
	}
	if s.Attribute != "" {
		attributeValue, present := candidate.Attr(s.Attribute)
		if !present {
			return false
		}
		switch {
		case s.AttributeValue == "":
		case s.AttributeContains:
			if !strings.Contains(attributeValue, s.AttributeValue) {
				return false
			}
		default:
			if attributeValue != s.AttributeValue {
				return false
			}
		}
	}
	visibleText := NormalizeSpace(candidate.Text())
	if s.TextContains != "" && !strings.Contains(visibleText, s.TextContains) {
		return false
	}
	if s.TextEquals != "" && visibleText != s.TextEquals {
		return false
	}
	return true
}

func concealed(node *goquery.Selection) bool {
	if hiddenInMarkup(node) {
		return true
	}
	return node.Parents().FilterFunction(func(_ int, parent *goquery.Selection) bool {
		return hiddenInMarkup(parent)
	}).Length() > 0
}

func hiddenInMarkup(node *goquery.Selection) bool {
	if _, skipped := concealedTags[goquery.NodeName(node)]; skipped {
		return true
	}
	if _, hidden := node.Attr("hidden"); hidden {
		return true
	}
	if inputType, isInput := node.Attr("type"); isInput && goquery.NodeName(node) == "input" && strings.EqualFold(inputType, "hidden") {
		return true
	}
	inlineStyle := strings.ToLower(strings.Join(strings.Fields(node.AttrOr("style", "")), ""))
	return strings.Contains(inlineStyle, "display:none") || strings.Contains(inlineStyle, "visibility:hidden")
}

func (s *Snapshot) elementFromSelection(node *goquery.Selection) Element {
	attributes := map[string]string{}
	if len(node.Nodes) > 0 {
		for _, attribute := range node.Nodes[0].Attr {
			attributes[attribute.Key] = attribute.Val
		}
	}
	if href, found := attributes["href"]; found && s.pageURL != nil && strings.TrimSpace(href) != "" {
		attributes["href"] = s.resolve(href)
	}
	return NewElement(node.Text(), attributes)
}

// resolve turns a possibly relative link into an absolute one, the way the
// DOM href property reports it.
func (s *Snapshot) resolve(href string) string {
	reference, parseError := url.Parse(strings.TrimSpace(href))
	if parseError != nil {
		return href
	}
	return s.pageURL.ResolveReference(reference).String()
}
