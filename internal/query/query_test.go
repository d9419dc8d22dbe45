package query_test

import (
	"math"
	"testing"

	"inventory/internal/apperr"
	"inventory/internal/query"

	"github.com/stretchr/testify/assert"
)

func TestProductList_NoFilter(t *testing.T) {
	q := query.ProductList(query.ProductFilter{}, query.Pagination{Limit: 10, Page: 3})

	assert.Empty(t, q.Predicates)
	assert.Equal(t, 20, q.Offset)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, []query.Sort{{Field: query.FieldCreatedAt}, {Field: query.FieldID}}, q.Sort)
	assert.False(t, q.Joins("manufacturer"))
}

func TestProductList_AllFilters(t *testing.T) {
	ceiling := 4
	q := query.ProductList(query.ProductFilter{
		Category:         " Tools ",
		ManufacturerName: "acme",
		MaxAmountInStock: &ceiling,
	}, query.Pagination{Limit: 5, Page: 1})

	assert.Equal(t, []query.Predicate{
		{Field: query.FieldCategory, Op: query.OpContainsFold, Value: "Tools"},
		{Field: query.FieldManufacturerName, Op: query.OpContainsFold, Value: "acme"},
		{Field: query.FieldAmountInStock, Op: query.OpLessOrEqual, Value: 4},
	}, q.Predicates)
	assert.True(t, q.Joins("manufacturer"))
	assert.Equal(t, 0, q.Offset)
}

func TestProductList_ZeroMaxStockIsAFilter(t *testing.T) {
	zero := 0
	q := query.ProductList(query.ProductFilter{MaxAmountInStock: &zero}, query.Pagination{Limit: 1, Page: 1})
	assert.Len(t, q.Predicates, 1)
}

func TestStockBelow(t *testing.T) {
	q := query.StockBelow(10)

	assert.Equal(t, []query.Predicate{{Field: query.FieldAmountInStock, Op: query.OpLessThan, Value: 10}}, q.Predicates)
	assert.Zero(t, q.Limit)
}

func TestBuilder_BuildDoesNotShareState(t *testing.T) {
	b := query.NewBuilder().Where(query.FieldCategory, query.OpEqual, "a")
	first := b.Build()
	b.Where(query.FieldCategory, query.OpEqual, "b")
	second := b.Build()

	assert.Len(t, first.Predicates, 1)
	assert.Len(t, second.Predicates, 2)
	assert.Len(t, first.Sort, 2)
}

func TestPagination_Validate(t *testing.T) {
	assert.NoError(t, query.Pagination{Limit: 10, Page: 1}.Validate(100))

	err := query.Pagination{Limit: 0, Page: 0}.Validate(100)
	assert.True(t, apperr.Is(err, apperr.KindValidationFailed))
	assert.Len(t, apperr.FieldsOf(err), 2)

	err = query.Pagination{Limit: 101, Page: 1}.Validate(100)
	assert.Len(t, apperr.FieldsOf(err), 1)
	assert.NoError(t, query.Pagination{Limit: 1000, Page: 1}.Validate(0))
}

func TestPagination_ValidateRejectsOverflowingPage(t *testing.T) {
	assert.NoError(t, query.Pagination{Limit: 10, Page: math.MaxInt / 10}.Validate(0))

	err := query.Pagination{Limit: 10, Page: math.MaxInt/10 + 2}.Validate(100)
	assert.True(t, apperr.Is(err, apperr.KindValidationFailed))
	assert.Equal(t, []apperr.FieldError{{Path: "page", Message: "is out of range"}}, apperr.FieldsOf(err))

	err = query.Pagination{Limit: 1, Page: math.MaxInt}.Validate(0)
	assert.NoError(t, err)
	assert.Equal(t, math.MaxInt-1, query.Pagination{Limit: 1, Page: math.MaxInt}.Offset())
}
