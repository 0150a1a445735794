package models

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 1000
	// MaxPage keeps (Page-1)*Limit well inside int range.
	MaxPage = 1_000_000
)

// Fields is a partial document update keyed by stored field name.
type Fields map[string]interface{}

type Page struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into their accepted ranges.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

type ProductFilter struct {
	Category  string
	Search    string
	AddedBy   string
	ExcludeID string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	SortBy    string
	SortDesc  bool
	Page
}

// ProductSortFields are the fields a product listing may be sorted by.
var ProductSortFields = map[string]bool{
	"price":              true,
	"name":               true,
	"rating":             true,
	"stock":              true,
	"createdAt":          true,
	"discountPercentage": true,
}

type OrderFilter struct {
	Email  string
	Status string
	Search string
	Page
}

type UserFilter struct {
	Email  string
	Role   string
	Search string
	Page
}
