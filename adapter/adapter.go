// Package adapter declares the execution contract between the query core and
// tenant-scoped backing resources. The core never interprets cursors or rows;
// it forwards params and renders whatever comes back.
package adapter

import (
	"context"

	"github.com/pkg/errors"

	nt "srql/entity"
)

// Filter ops at the execution boundary. Wider than the query language's four:
// structured callers may pass range and membership ops directly.
const (
	OpEq       = "eq"
	OpNeq      = "neq"
	OpGt       = "gt"
	OpGte      = "gte"
	OpLt       = "lt"
	OpLte      = "lte"
	OpContains = "contains"
	OpIn       = "in"

	// OpNotContains is an extension op; implementations lacking it skip the entry.
	OpNotContains = "not_contains"
)

// Filter is one executable comparison. Implementations silently skip entries
// with unknown ops or empty fields rather than failing the call.
type Filter struct {
	Field string
	Op    string
	Value string
}

// Sort orders results by one field.
type Sort struct {
	Field string
	Desc  bool
}

// Actor identifies who runs the query; implementations enforce tenant
// isolation with it. A nil actor must be refused.
type Actor struct {
	ID     string
	Tenant string
}

// Params carries everything an implementation needs to execute one query.
// Raw is the verbatim query text, kept for implementations that do their own
// parsing or logging.
type Params struct {
	Filters []Filter
	Sort    Sort
	Limit   int
	Cursor  string
	Raw     string
}

// Result is one page of rows. Rows are string-keyed maps with datetime fields
// serialized as ISO-8601 strings.
type Result struct {
	Rows       []map[string]any
	Pagination nt.Pagination
}

// Sentinel errors for the two refusals the contract defines.
var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrForbidden     = errors.New("forbidden")
)

// Adapter executes a query against the backing resource for an entity.
type Adapter interface {
	// Query runs params against entity's resource under actor's authorization.
	Query(ctx context.Context, entity string, params Params, actor *Actor) (Result, error)
}

// OpFromQuery maps a query-language filter op to an execution op.
// not_contains is an extension; implementations without it skip the entry.
func OpFromQuery(op nt.Op) string {
	switch op {
	case nt.OpEquals:
		return OpEq
	case nt.OpNotEquals:
		return OpNeq
	case nt.OpNotContains:
		return OpNotContains
	default:
		return OpContains
	}
}
