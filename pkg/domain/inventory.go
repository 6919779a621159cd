package domain

// Inventory maps each category to its FIFO queue of records.
type Inventory map[Category][]SecretRecord

// CategoryCount is a category together with its remaining records.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for category, records := range inv {
		cp := make([]SecretRecord, len(records))
		copy(cp, records)
		out[category] = cp
	}
	return out
}

// Total sums the per-category queue lengths.
func (inv Inventory) Total() int {
	total := 0
	for _, records := range inv {
		total += len(records)
	}
	return total
}

// NonEmpty returns the categories holding at least one record, sorted.
func (inv Inventory) NonEmpty() []Category {
	out := make([]Category, 0, len(inv))
	for category, records := range inv {
		if len(records) > 0 {
			out = append(out, category)
		}
	}
	SortCategories(out)
	return out
}

// Counts returns the non-empty categories with their sizes, sorted by name.
func (inv Inventory) Counts() []CategoryCount {
	categories := inv.NonEmpty()
	out := make([]CategoryCount, 0, len(categories))
	for _, category := range categories {
		out = append(out, CategoryCount{Category: category, Count: len(inv[category])})
	}
	return out
}
