package query

import (
	"fmt"
	"math"
	"strings"

	"inventory/internal/apperr"
)

// Field is a logical, storage-independent field name. Joined fields use a
// dotted path ("manufacturer.name").
type Field string

const (
	FieldID               Field = "id"
	FieldCategory         Field = "category"
	FieldAmountInStock    Field = "amountInStock"
	FieldCreatedAt        Field = "createdAt"
	FieldManufacturerName Field = "manufacturer.name"
)

// Operator is the comparison applied by a Predicate.
type Operator string

const (
	OpEqual        Operator = "eq"
	OpContainsFold Operator = "icontains" // case-insensitive substring
	OpLessThan     Operator = "lt"
	OpLessOrEqual  Operator = "lte"
)

// Predicate is one filter condition.
type Predicate struct {
	Field Field
	Op    Operator
	Value interface{}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value)
}

// Sort is one ordering key.
type Sort struct {
	Field Field
	Desc  bool
}

// Query is a compiled-independent description of a filtered, ordered,
// optionally paginated read. Limit 0 means no limit.
type Query struct {
	Predicates []Predicate
	Sort       []Sort
	Offset     int
	Limit      int
}

// Joins reports whether any predicate or sort key refers to a joined entity
// with the given prefix (e.g. "manufacturer").
func (q Query) Joins(prefix string) bool {
	for _, p := range q.Predicates {
		if strings.HasPrefix(string(p.Field), prefix+".") {
			return true
		}
	}
	for _, s := range q.Sort {
		if strings.HasPrefix(string(s.Field), prefix+".") {
			return true
		}
	}
	return false
}

// Builder accumulates predicates and ordering into a Query.
type Builder struct {
	q Query
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Where(field Field, op Operator, value interface{}) *Builder {
	b.q.Predicates = append(b.q.Predicates, Predicate{Field: field, Op: op, Value: value})
	return b
}

func (b *Builder) OrderBy(field Field, desc bool) *Builder {
	b.q.Sort = append(b.q.Sort, Sort{Field: field, Desc: desc})
	return b
}

func (b *Builder) Page(p Pagination) *Builder {
	b.q.Offset = p.Offset()
	b.q.Limit = p.Limit
	return b
}

// Build returns the query. Every query is ordered by creation time and then
// id so that pages are stable across calls.
func (b *Builder) Build() Query {
	q := b.q
	q.Predicates = append([]Predicate(nil), b.q.Predicates...)
	q.Sort = append([]Sort(nil), b.q.Sort...)
	q.Sort = append(q.Sort, Sort{Field: FieldCreatedAt}, Sort{Field: FieldID})
	return q
}

// Pagination selects one page of a listing.
type Pagination struct {
	Limit int
	Page  int
}

// Offset is the number of rows skipped before the page starts.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Validate checks limit > 0, limit <= maxLimit (when maxLimit > 0), page >= 1
// and that the page offset fits in an int.
func (p Pagination) Validate(maxLimit int) error {
	var fields []apperr.FieldError
	if p.Limit <= 0 {
		fields = append(fields, apperr.FieldError{Path: "limit", Message: "must be greater than 0"})
	} else if maxLimit > 0 && p.Limit > maxLimit {
		fields = append(fields, apperr.FieldError{Path: "limit", Message: fmt.Sprintf("must be at most %d", maxLimit)})
	}
	if p.Page < 1 {
		fields = append(fields, apperr.FieldError{Path: "page", Message: "must be at least 1"})
	} else if p.Limit > 0 && p.Page-1 > math.MaxInt/p.Limit {
		fields = append(fields, apperr.FieldError{Path: "page", Message: "is out of range"})
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
