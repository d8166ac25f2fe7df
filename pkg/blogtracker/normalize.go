package blogtracker

import "strings"

// NormalizeCategoryName lowercases and trims a raw category name. Two names
// that differ only by case or surrounding whitespace resolve to the same
// category.
func NormalizeCategoryName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeTagName trims a raw tag name. Case is preserved: tag uniqueness
// is case-sensitive, unlike categories.
func NormalizeTagName(raw string) string {
	return strings.TrimSpace(raw)
}
