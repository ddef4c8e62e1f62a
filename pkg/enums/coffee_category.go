package enums

import "fmt"

// CoffeeCategory groups menu items for browsing.
type CoffeeCategory string

const (
	CoffeeCategoryHot       CoffeeCategory = "hot"
	CoffeeCategoryCold      CoffeeCategory = "cold"
	CoffeeCategorySpecialty CoffeeCategory = "specialty"
)

var validCoffeeCategories = []CoffeeCategory{
	CoffeeCategoryHot,
	CoffeeCategoryCold,
	CoffeeCategorySpecialty,
}

// String implements fmt.Stringer.
func (c CoffeeCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CoffeeCategory.
func (c CoffeeCategory) IsValid() bool {
	for _, candidate := range validCoffeeCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCoffeeCategory converts raw input into a CoffeeCategory.
func ParseCoffeeCategory(value string) (CoffeeCategory, error) {
	for _, candidate := range validCoffeeCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coffee category %q", value)
}
