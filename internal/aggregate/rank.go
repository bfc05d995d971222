package aggregate

import (
	"sort"

	"github.com/streamdex/streamdex/internal/media"
	"github.com/streamdex/streamdex/pkg/title"
)

// rankItems orders one provider's items by title similarity to the
// query, best first. The sort is stable so equally similar items keep
// the provider's own order.
func rankItems(query string, items []media.ContentItem) {
	if len(items) < 2 {
		return
	}
	type scored struct {
		item  media.ContentItem
		score float64
	}
	ranked := make([]scored, len(items))
	for i, it := range items {
		ranked[i] = scored{item: it, score: title.Similarity(query, it.Title)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	for i, r := range ranked {
		items[i] = r.item
	}
}
