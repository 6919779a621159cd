package domain

import (
	"sort"
	"strings"
)

// Category namespaces the secret pool. Values are always lower-cased and
// trimmed; build them with ParseCategory.
type Category string

// ParseCategory canonicalizes raw input into a Category.
func ParseCategory(raw string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "", ErrCategoryRequired
	}
	return Category(name), nil
}

// MustCategory is ParseCategory for literals; it panics on empty input.
func MustCategory(raw string) Category {
	c, err := ParseCategory(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Category) String() string { return string(c) }

// SortCategories orders categories lexicographically in place.
func SortCategories(categories []Category) {
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
}
