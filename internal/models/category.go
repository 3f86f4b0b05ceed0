package models

import "strings"

// Category is the fixed classification taxonomy for published articles.
type Category string

const (
	CategorySociety       Category = "Society"
	CategoryEconomy       Category = "Economy"
	CategoryRealEstate    Category = "Real Estate"
	CategoryCulture       Category = "Culture"
	CategoryPolitics      Category = "Politics"
	CategoryInternational Category = "International"
	CategoryKoreaVietnam  Category = "Korea-Vietnam"
	CategoryCommunity     Category = "Community"
	CategoryTravel        Category = "Travel"
	CategoryHealth        Category = "Health"
	CategoryFood          Category = "Food"
)

// DefaultCategory is the baseline used when classification produces
// nothing usable.
const DefaultCategory = CategorySociety

// AllCategories returns the valid categories in canonical order.
func AllCategories() []Category {
	return []Category{
		CategorySociety, CategoryEconomy, CategoryRealEstate, CategoryCulture,
		CategoryPolitics, CategoryInternational, CategoryKoreaVietnam,
		CategoryCommunity, CategoryTravel, CategoryHealth, CategoryFood,
	}
}

// legacyAliases maps category names that older prompts or editors used to
// their canonical values.
var legacyAliases = map[string]Category{
	"policy":        CategoryPolitics,
	"political":     CategoryPolitics,
	"realestate":    CategoryRealEstate,
	"real-estate":   CategoryRealEstate,
	"korea vietnam": CategoryKoreaVietnam,
	"koreavietnam":  CategoryKoreaVietnam,
	"finance":       CategoryEconomy,
	"business":      CategoryEconomy,
	"world":         CategoryInternational,
}

// NormalizeCategory maps a raw classification string onto the fixed enum.
// Legacy aliases resolve to their canonical value; anything unrecognized
// falls back to DefaultCategory so an invalid value never propagates.
func NormalizeCategory(raw string) Category {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultCategory
	}
	for _, c := range AllCategories() {
		if strings.EqualFold(string(c), trimmed) {
			return c
		}
	}
	if c, ok := legacyAliases[strings.ToLower(trimmed)]; ok {
		return c
	}
	return DefaultCategory
}
