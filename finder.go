package main

import (
	"context"
	"strings"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

// ========================================
// Element finding
// ========================================

// FindCriteria is shared with the MCP layer.
type FindCriteria = types.FindCriteria

// DefaultFindCriteria returns criteria with the usual defaults
func DefaultFindCriteria() FindCriteria {
	return types.DefaultFindCriteria()
}

// FindElements returns every element of the current screen matching
// the criteria, in document order. A failed layout extraction yields
// an empty list, matching the "nothing found" contract.
func (a *App) FindElements(ctx context.Context, criteria FindCriteria) []types.UIElement {
	layout := a.GetUILayout(ctx, false, false)
	if !layout.Success {
		LogWarn("finder").Str("error", layout.Error).Msg("element search aborted, no layout")
		return nil
	}
	return filterElements(layout.Elements, criteria)
}

// filterElements applies criteria to an already-extracted element list
func filterElements(elements []types.UIElement, criteria FindCriteria) []types.UIElement {
	var matches []types.UIElement
	for _, el := range elements {
		if elementMatches(el, criteria) {
			matches = append(matches, el)
		}
	}
	return matches
}

// elementMatches checks one element against all set criteria.
//
// Text, class and content-desc match case-insensitively as substrings
// unless ExactMatch is set. Resource IDs are developer-assigned
// identifiers, so their substring match stays case-sensitive.
func elementMatches(el types.UIElement, c FindCriteria) bool {
	if c.ClickableOnly && el.Clickable != "true" {
		return false
	}
	if c.EnabledOnly && el.Enabled != "true" {
		return false
	}
	if c.ScrollableOnly && el.Scrollable != "true" {
		return false
	}

	if c.Text != "" {
		if c.ExactMatch {
			if el.Text != c.Text {
				return false
			}
		} else if !strings.Contains(strings.ToLower(el.Text), strings.ToLower(c.Text)) {
			return false
		}
	}

	if c.ResourceID != "" {
		if c.ExactMatch {
			if el.ResourceID != c.ResourceID {
				return false
			}
		} else if !strings.Contains(el.ResourceID, c.ResourceID) {
			return false
		}
	}

	if c.ClassName != "" {
		if c.ExactMatch {
			if el.Class != c.ClassName {
				return false
			}
		} else if !strings.Contains(strings.ToLower(el.Class), strings.ToLower(c.ClassName)) {
			return false
		}
	}

	if c.ContentDesc != "" {
		if c.ExactMatch {
			if el.ContentDesc != c.ContentDesc {
				return false
			}
		} else if !strings.Contains(strings.ToLower(el.ContentDesc), strings.ToLower(c.ContentDesc)) {
			return false
		}
	}

	return true
}

// FindBestElement returns the highest-scoring match for the criteria,
// or nil when nothing matches.
//
// Scoring:
//   - exact text match (case-insensitive): +10
//   - partial text match: +5
//   - clickable: +3
//   - enabled: +2
//   - has resource ID: +1
//   - both dimensions over 100px: +1
func (a *App) FindBestElement(ctx context.Context, criteria FindCriteria) *types.UIElement {
	matches := a.FindElements(ctx, criteria)
	return bestElement(matches, criteria.Text)
}

// bestElement applies the scoring to a candidate list. Ties keep the
// first candidate in document order.
func bestElement(matches []types.UIElement, text string) *types.UIElement {
	if len(matches) == 0 {
		return nil
	}

	bestIdx := 0
	bestScore := -1
	for i, el := range matches {
		score := scoreElement(el, text)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return &matches[bestIdx]
}

func scoreElement(el types.UIElement, text string) int {
	score := 0

	if text != "" && el.Text != "" {
		switch {
		case strings.EqualFold(el.Text, text):
			score += 10
		case strings.Contains(strings.ToLower(el.Text), strings.ToLower(text)):
			score += 5
		}
	}

	if el.Clickable == "true" {
		score += 3
	}
	if el.Enabled == "true" {
		score += 2
	}
	if el.ResourceID != "" {
		score++
	}

	bounds := ParseBounds(el.Bounds)
	if bounds.Width() > 100 && bounds.Height() > 100 {
		score++
	}

	return score
}

// ElementCenter returns the tap point for an element
func ElementCenter(el types.UIElement) (int, int) {
	return ParseBounds(el.Bounds).Center()
}
