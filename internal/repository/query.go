package repository

import "strconv"

const (
	// DefaultListLimit is used by listings that must be bounded when no limit is given.
	DefaultListLimit = 20
	maxListLimit     = 500

	ProductIDField QueryField = "product_id"
)

// Query narrows a listing. A zero Limit means "no limit" for the catalog and
// DefaultListLimit for the sales log.
type Query struct {
	Values map[QueryField]string

	Limit int
}

type QueryField string

func NewQuery() *Query {
	return &Query{
		Values: map[QueryField]string{},
	}
}

func (q *Query) With(field QueryField, val string) *Query {
	q.Values[field] = val
	return q
}

// WithProductID restricts a sales listing to one product.
func (q *Query) WithProductID(id int64) *Query {
	return q.With(ProductIDField, strconv.FormatInt(id, 10))
}

// WithLimit caps the number of returned rows.
func (q *Query) WithLimit(limit int) *Query {
	q.Limit = min(maxListLimit, max(0, limit))
	return q
}
