// Package duck implements the adapter contract over an in-memory DuckDB,
// one table per entity, ingested from NDJSON exports. Good for local
// exploration and as the reference adapter for tests.
package duck

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"srql/adapter"
	nt "srql/entity"
)

// Duck executes queries against per-entity DuckDB tables.
type Duck struct {
	db     *sql.DB
	logger nt.Logger
	tables map[string]tableInfo
}

type tableInfo struct {
	name      string
	columns   map[string]bool
	hasTenant bool
}

// New opens an in-memory DuckDB.
func New(lgr nt.Logger) (dk *Duck, err error) {

	db, err := sql.Open("duckdb", "")
	if err != nil {
		err = errors.Wrapf(err, "failed to open memo duck")
		return
	}

	dk = &Duck{
		db:     db,
		logger: lgr,
		tables: map[string]tableInfo{},
	}
	return
}

func (dk *Duck) Close() {
	dk.db.Close()
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Query implements adapter.Adapter. Malformed filter and sort entries are
// dropped silently; a nil actor is refused; tenant-scoped tables are always
// constrained to the actor's tenant.
func (dk *Duck) Query(ctx context.Context, entity string, params adapter.Params, actor *adapter.Actor) (result adapter.Result, err error) {

	if actor == nil {
		err = adapter.ErrForbidden
		return
	}

	info, ok := dk.tables[entity]
	if !ok {
		err = errors.Wrapf(adapter.ErrUnknownEntity, "entity %q", entity)
		return
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := decodeCursor(params.Cursor)

	where := dk.whereClause(info, params.Filters, actor)
	order := orderClause(info, params.Sort)

	// Fetch one row past the page to detect whether a next page exists.
	query := fmt.Sprintf("SELECT * FROM %s %s %s LIMIT %d OFFSET %d",
		info.name, where, order, limit+1, offset)

	rows, err := dk.db.QueryContext(ctx, query)
	if err != nil {
		err = errors.Wrapf(err, "failed to query %s", info.name)
		return
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		err = errors.Wrapf(err, "failed to get cols from query rows")
		return
	}

	for rows.Next() {
		var vals []any
		vals, err = scanRow(rows, len(cols))
		if err != nil {
			err = errors.Wrapf(err, "failed to scan row")
			return
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = presentable(vals[i])
		}
		result.Rows = append(result.Rows, row)
	}
	err = rows.Err()
	if err != nil {
		err = errors.Wrapf(err, "error iterating rows")
		return
	}

	result.Pagination = paginate(result.Rows, limit, offset)
	if len(result.Rows) > limit {
		result.Rows = result.Rows[:limit]
	}
	return
}

// whereClause assembles WHERE from the recognized filters plus the tenant
// constraint. Unknown ops, bad identifiers, and unknown columns are skipped.
func (dk *Duck) whereClause(info tableInfo, filters []adapter.Filter, actor *adapter.Actor) string {

	var clauses []string
	for _, filter := range filters {
		expr := filterExpr(info, filter)
		if expr != "" {
			clauses = append(clauses, expr)
		}
	}

	if info.hasTenant {
		clauses = append(clauses, fmt.Sprintf("tenant_id = '%s'", escapeValue(actor.Tenant)))
	}

	if len(clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(clauses, " AND ")
}

func filterExpr(info tableInfo, filter adapter.Filter) string {

	if !identRe.MatchString(filter.Field) || !info.columns[filter.Field] {
		return ""
	}
	value := escapeValue(filter.Value)

	switch filter.Op {
	case adapter.OpEq:
		return fmt.Sprintf("%s = '%s'", filter.Field, value)
	case adapter.OpNeq:
		return fmt.Sprintf("%s != '%s'", filter.Field, value)
	case adapter.OpGt:
		return fmt.Sprintf("%s > '%s'", filter.Field, value)
	case adapter.OpGte:
		return fmt.Sprintf("%s >= '%s'", filter.Field, value)
	case adapter.OpLt:
		return fmt.Sprintf("%s < '%s'", filter.Field, value)
	case adapter.OpLte:
		return fmt.Sprintf("%s <= '%s'", filter.Field, value)
	case adapter.OpContains:
		return fmt.Sprintf("CAST(%s AS VARCHAR) LIKE '%%%s%%'", filter.Field, value)
	case adapter.OpNotContains:
		return fmt.Sprintf("CAST(%s AS VARCHAR) NOT LIKE '%%%s%%'", filter.Field, value)
	case adapter.OpIn:
		var quoted []string
		for _, item := range strings.Split(filter.Value, ",") {
			quoted = append(quoted, "'"+escapeValue(strings.TrimSpace(item))+"'")
		}
		return fmt.Sprintf("%s IN (%s)", filter.Field, strings.Join(quoted, ", "))
	default:
		return ""
	}
}

func orderClause(info tableInfo, sort adapter.Sort) string {

	if sort.Field == "" || !identRe.MatchString(sort.Field) || !info.columns[sort.Field] {
		return ""
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", sort.Field, dir)
}

// paginate derives opaque offset cursors from the fetched page.
func paginate(rows []map[string]any, limit, offset int) nt.Pagination {

	pn := nt.Pagination{Limit: limit}
	if len(rows) > limit {
		pn.NextCursor = encodeCursor(offset + limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		pn.PrevCursor = encodeCursor(prev)
	}
	return pn
}

func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte("o:" + strconv.Itoa(offset)))
}

func decodeCursor(cursor string) int {

	if cursor == "" {
		return 0
	}
	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(strings.TrimPrefix(string(data), "o:"))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

func escapeValue(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

func scanRow(rows *sql.Rows, columnCount int) ([]any, error) {
	vals := make([]any, columnCount)
	ptrs := make([]any, columnCount)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err := rows.Scan(ptrs...)
	return vals, err
}

// presentable converts driver values to the contract's wire shapes: datetimes
// become ISO-8601 strings, byte blobs become text.
func presentable(value any) any {

	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case []byte:
		return string(v)
	default:
		return value
	}
}
