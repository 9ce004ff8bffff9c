package model

import (
	"sort"
	"time"
)

// Item is one checklist entry of a Definition of Done.
// Order drives display; it is neither unique nor contiguous.
type Item struct {
	ID          uint      `json:"id"`
	DoDID       uint      `json:"dod_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsRequired  bool      `json:"is_required"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}

// SortItems orders items by Order, keeping server order for ties.
func SortItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// RequiredCount returns how many items are marked required.
func RequiredCount(items []Item) (required int) {
	for _, it := range items {
		if it.IsRequired {
			required++
		}
	}
	return
}
