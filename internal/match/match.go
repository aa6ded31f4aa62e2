// Package match resolves typed grocery-item names against a user's items.
package match

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/lewis-cheung/grocery-bot/internal/domain"
)

// DefaultTopN caps how many fuzzy candidates a disambiguation prompt offers.
const DefaultTopN = 5

// Resolution is the outcome of matching a typed name.
type Resolution struct {
	// Exact is set when a case-insensitive exact match exists; Candidates is
	// empty in that case.
	Exact *domain.GroceryItem
	// Candidates holds the ranked fuzzy matches, best first, at most topN.
	Candidates []*domain.GroceryItem
}

// IsExact reports whether the typed name matched one item exactly.
func (r Resolution) IsExact() bool {
	return r.Exact != nil
}

// IsMiss reports whether nothing matched at all.
func (r Resolution) IsMiss() bool {
	return r.Exact == nil && len(r.Candidates) == 0
}

// Resolve matches typed against the given items: exact case-insensitive match
// first, then ranked fuzzy search over the item names. topN <= 0 falls back
// to DefaultTopN.
func Resolve(typed string, items []*domain.GroceryItem, topN int) Resolution {
	if topN <= 0 {
		topN = DefaultTopN
	}

	typed = strings.TrimSpace(typed)
	lower := strings.ToLower(typed)

	for _, item := range items {
		if item.NameLower == lower {
			return Resolution{Exact: item}
		}
	}

	byName := make(map[string]*domain.GroceryItem, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		byName[item.Name] = item
		names = append(names, item.Name)
	}

	ranks := fuzzy.RankFindNormalizedFold(typed, names)
	// Ties keep the items' stored order.
	sort.Stable(ranks)

	candidates := make([]*domain.GroceryItem, 0, topN)
	for _, rank := range ranks {
		if len(candidates) == topN {
			break
		}

		if item, ok := byName[rank.Target]; ok {
			candidates = append(candidates, item)
		}
	}

	return Resolution{Candidates: candidates}
}
