package query

import "strings"

// ProductFilter narrows a product listing. Zero values mean "no condition".
type ProductFilter struct {
	Category         string
	ManufacturerName string
	MaxAmountInStock *int // inclusive upper bound
}

// ProductList builds the listing query for filter and page.
func ProductList(filter ProductFilter, page Pagination) Query {
	b := NewBuilder()
	if c := strings.TrimSpace(filter.Category); c != "" {
		b.Where(FieldCategory, OpContainsFold, c)
	}
	if m := strings.TrimSpace(filter.ManufacturerName); m != "" {
		b.Where(FieldManufacturerName, OpContainsFold, m)
	}
	if filter.MaxAmountInStock != nil {
		b.Where(FieldAmountInStock, OpLessOrEqual, *filter.MaxAmountInStock)
	}
	return b.Page(page).Build()
}

// StockBelow selects every product with fewer than threshold items in stock.
func StockBelow(threshold int) Query {
	return NewBuilder().Where(FieldAmountInStock, OpLessThan, threshold).Build()
}
