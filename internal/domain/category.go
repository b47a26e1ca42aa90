package domain

// Category is the product-line classifier used to route tickets to engineers.
type Category string

const (
	CategoryModelS     Category = "MODEL_S"
	CategoryModel3     Category = "MODEL_3"
	CategoryModelX     Category = "MODEL_X"
	CategoryModelY     Category = "MODEL_Y"
	CategoryCybertruck Category = "CYBERTRUCK"
)

// Categories lists every known category in a stable order.
func Categories() []Category {
	return []Category{CategoryModelS, CategoryModel3, CategoryModelX, CategoryModelY, CategoryCybertruck}
}

// Valid reports whether the category is a known product line.
func (c Category) Valid() bool {
	switch c {
	case CategoryModelS, CategoryModel3, CategoryModelX, CategoryModelY, CategoryCybertruck:
		return true
	}
	return false
}

var productCategories = map[string]Category{
	"Model S":    CategoryModelS,
	"Model 3":    CategoryModel3,
	"Model X":    CategoryModelX,
	"Model Y":    CategoryModelY,
	"Cybertruck": CategoryCybertruck,
}

// CategoryForProduct maps a product name to its routing category.
func CategoryForProduct(name string) (Category, bool) {
	c, ok := productCategories[name]
	return c, ok
}
