package css

import (
	"pinecone/pkg/html"
)

// MatchesSelector returns true if the element matches every component of
// the compound selector. Text and comment nodes never match.
func MatchesSelector(node *html.Node, selector Selector) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}

	// Match element
	if selector.Tag != "" && node.TagName != selector.Tag {
		return false
	}

	// Match ID
	if selector.ID != "" && node.ID() != selector.ID {
		return false
	}

	// Match classes
	for _, requiredClass := range selector.Classes {
		if !node.HasClass(requiredClass) {
			return false
		}
	}

	if selector.Attr != nil && !matchesAttributeSelector(node, *selector.Attr) {
		return false
	}

	return true
}

// matchesAttributeSelector checks if a node matches an attribute selector
func matchesAttributeSelector(node *html.Node, attr AttrTest) bool {
	value, ok := node.Attr(attr.Name)
	if !ok {
		return false
	}

	switch attr.Op {
	case AttrExists:
		return true
	case AttrEquals:
		// Exact match
		return value == attr.Value
	case AttrIncludes:
		// Word match (whitespace-separated)
		for _, word := range splitValue(value) {
			if word == attr.Value {
				return true
			}
		}
	}
	return false
}

// matchedRule is a rule that matched an element, tagged with its origin so
// the cascade can order it.
type matchedRule struct {
	rule   *Rule
	origin int
	order  int
}

// FindMatchingRules returns all rules of the stylesheet that match the node,
// in source order.
func FindMatchingRules(node *html.Node, stylesheet *Stylesheet) []Rule {
	matches := make([]Rule, 0)
	for _, rule := range stylesheet.Rules {
		if MatchesSelector(node, rule.Selector) {
			matches = append(matches, rule)
		}
	}
	return matches
}
