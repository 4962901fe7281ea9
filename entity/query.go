package entity

// Op is a filter operation recognized by the query language.
type Op string

const (
	OpEquals      Op = "equals"
	OpNotEquals   Op = "not_equals"
	OpContains    Op = "contains"
	OpNotContains Op = "not_contains"
)

// Ops lists the recognized filter operations in display order.
var Ops = []Op{OpEquals, OpNotEquals, OpContains, OpNotContains}

// Filter is a single field comparison in a query.
type Filter struct {
	Field string `yaml:"field"`
	Op    Op     `yaml:"op"`
	Value string `yaml:"value"`
}

// QueryState is the structured form of a query, kept in sync with its
// text form by the builder.
type QueryState struct {
	Entity    string
	Time      string
	Bucket    string
	Agg       string
	Series    string
	SortField string
	SortDir   string
	Limit     int
	Filters   []Filter
}

// Clone returns a deep copy so callers can mutate freely.
func (qs QueryState) Clone() QueryState {
	out := qs
	out.Filters = make([]Filter, len(qs.Filters))
	copy(out.Filters, qs.Filters)
	return out
}

// Pagination carries opaque cursors forwarded verbatim from the adapter.
type Pagination struct {
	Limit      int
	NextCursor string
	PrevCursor string
}
