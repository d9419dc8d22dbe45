package repositories

import (
	"fmt"
	"strings"

	"inventory/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const joinManufacturers = "LEFT JOIN manufacturers ON manufacturers.id = products.manufacturer_id"

// productColumns maps logical product query fields to SQL columns.
var productColumns = map[query.Field]clause.Column{
	query.FieldID:               {Table: "products", Name: "id"},
	query.FieldCategory:         {Table: "products", Name: "category"},
	query.FieldAmountInStock:    {Table: "products", Name: "amount_in_stock"},
	query.FieldCreatedAt:        {Table: "products", Name: "created_at"},
	query.FieldManufacturerName: {Table: "manufacturers", Name: "name"},
}

// compileProductQuery applies the filter, join and order of q to db. Offset
// and limit are left to the caller so the same scope serves Count.
func compileProductQuery(db *gorm.DB, q query.Query) (*gorm.DB, error) {
	if q.Joins("manufacturer") {
		db = db.Joins(joinManufacturers)
	}
	for _, p := range q.Predicates {
		expr, err := compilePredicate(p)
		if err != nil {
			return nil, err
		}
		db = db.Where(expr)
	}
	return db, nil
}

func orderProductQuery(db *gorm.DB, q query.Query) (*gorm.DB, error) {
	for _, s := range q.Sort {
		col, ok := productColumns[s.Field]
		if !ok {
			return nil, fmt.Errorf("cannot sort products by %q", s.Field)
		}
		db = db.Order(clause.OrderByColumn{Column: col, Desc: s.Desc})
	}
	return db, nil
}

func compilePredicate(p query.Predicate) (clause.Expression, error) {
	col, ok := productColumns[p.Field]
	if !ok {
		return nil, fmt.Errorf("cannot filter products by %q", p.Field)
	}
	switch p.Op {
	case query.OpEqual:
		return clause.Eq{Column: col, Value: p.Value}, nil
	case query.OpLessThan:
		return clause.Lt{Column: col, Value: p.Value}, nil
	case query.OpLessOrEqual:
		return clause.Lte{Column: col, Value: p.Value}, nil
	case query.OpContainsFold:
		s, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("operator %s needs a string value, got %T", p.Op, p.Value)
		}
		// Both sides go through the database's LOWER so they fold alike.
		return clause.Expr{
			SQL:  `LOWER(?) LIKE LOWER(?) ESCAPE '\'`,
			Vars: []interface{}{col, "%" + escapeLike(s) + "%"},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported operator %q", p.Op)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
