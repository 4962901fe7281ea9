// Package page orchestrates one query session: it resolves the effective
// query text, keeps the structured builder state reconciled with it, executes
// through the adapter, and attaches an inferred chart shape to the results.
//
// The text query is always authoritative. A parse failure disables the
// structured builder but never blocks execution; an adapter failure surfaces
// as an error string over an empty result list.
package page

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"srql/adapter"
	"srql/builder"
	"srql/catalog"
	nt "srql/entity"
	"srql/viz"
)

// Session is the per-request/session query state. Exclusively owned by one
// interactive session; never persisted.
type Session struct {
	ID            string
	Entity        string
	Draft         string // text in the edit box, possibly unsubmitted
	Query         string // active query text, authoritative
	State         nt.QueryState
	BuilderOpen   bool
	BuilderSynced bool // structured state mirrors the active query
	Unsupported   bool // active query cannot be represented structurally
	Route         string

	Results    []map[string]any
	Error      string
	Viz        viz.Inference
	Pagination nt.Pagination
}

// Request carries the parameters of one list load.
type Request struct {
	Entity string
	Query  string // non-empty supersedes the session's built query
	Limit  string
	Cursor string
	Route  string
	Actor  *adapter.Actor
}

// Page glues catalog, builder, viz, and adapter for query pages.
type Page struct {
	catalog *catalog.Catalog
	builder *builder.Builder
	adapter adapter.Adapter
	logger  nt.Logger
}

// New creates a page orchestrator. The adapter is injected, never resolved
// from global state, so tests swap it per instance.
func New(cat *catalog.Catalog, ad adapter.Adapter, lgr nt.Logger) *Page {
	return &Page{
		catalog: cat,
		builder: builder.New(cat),
		adapter: ad,
		logger:  lgr,
	}
}

// Builder exposes the page's transcoder for hosts that render the form.
func (pg *Page) Builder() *builder.Builder {
	return pg.builder
}

// Catalog exposes the entity registry.
func (pg *Page) Catalog() *catalog.Catalog {
	return pg.catalog
}

// Init seeds a session for an entity. Catalog entities get a default builder
// state and its canonical text; anything else gets a minimal fallback query
// with the builder flagged unsupported.
func (pg *Page) Init(entityID string, limit int) Session {

	sess := Session{
		ID:     uuid.NewString(),
		Entity: entityID,
		Route:  pg.catalog.Entity(entityID).Route,
	}

	if pg.catalog.Has(entityID) {
		sess.State = pg.builder.DefaultState(entityID, limit)
		sess.Query = pg.builder.Build(sess.State)
		sess.Draft = sess.Query
		sess.BuilderSynced = true
		return sess
	}

	sess.Query = fallbackQuery(entityID, builder.NormalizeLimit(limit))
	sess.Draft = sess.Query
	sess.Unsupported = true
	return sess
}

// fallbackQuery covers entities without structured-builder support.
// Event-shaped entities get a week of history; the rest just a limit.
func fallbackQuery(entityID string, limit int) string {

	query := "in:" + entityID
	if timeSeriesLike(entityID) {
		query += " time:last_7d"
	}
	return query + " limit:" + strconv.Itoa(limit)
}

func timeSeriesLike(entityID string) bool {
	for _, suffix := range []string{"events", "logs", "alerts", "metrics", "traces"} {
		if strings.HasSuffix(entityID, suffix) {
			return true
		}
	}
	return false
}

// LoadList resolves the effective query for a request, executes it, and
// returns the session with results, viz, and pagination attached.
func (pg *Page) LoadList(ctx context.Context, sess Session, req Request) Session {

	if req.Entity != "" {
		sess.Entity = req.Entity
	}
	limit := builder.NormalizeLimit(req.Limit)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = sess.Query
	}
	if query == "" {
		sess = pg.Init(sess.Entity, limit)
		query = sess.Query
	}

	sess.Query = query
	sess.Draft = query

	// Resync structured state from the text; on failure the text stays
	// authoritative and the builder is just flagged out of sync.
	state, err := pg.builder.Parse(query)
	if err != nil {
		sess.BuilderSynced = false
		sess.Unsupported = true
		pg.logger.Info(ctx, "query not representable in builder", "query", query, "reason", err.Error())
	} else {
		sess.State = state
		sess.BuilderSynced = true
		sess.Unsupported = false
	}

	entityID := queryEntity(query)
	if entityID == "" {
		entityID = sess.Entity
	}
	sess.Entity = entityID

	if req.Route != "" {
		sess.Route = req.Route
	} else {
		sess.Route = pg.catalog.Entity(entityID).Route
	}

	params := pg.executionParams(sess, err == nil, limit, req.Cursor, query)

	result, qerr := pg.adapter.Query(ctx, entityID, params, req.Actor)
	if qerr != nil {
		pg.logger.Error(ctx, "query failed", qerr, "entity", entityID, "query", query)
		sess.Results = nil
		sess.Error = qerr.Error()
		sess.Viz = viz.Inference{}
		sess.Pagination = nt.Pagination{Limit: params.Limit}
		return sess
	}

	sess.Results = result.Rows
	sess.Error = ""
	sess.Viz = viz.Infer(result.Rows)
	sess.Pagination = result.Pagination
	if sess.Pagination.Limit == 0 {
		sess.Pagination.Limit = params.Limit
	}
	return sess
}

// executionParams converts the session's state into adapter params. When the
// text did not parse, only the raw query and paging go through.
func (pg *Page) executionParams(sess Session, parsed bool, limit int, cursor, raw string) adapter.Params {

	params := adapter.Params{
		Limit:  limit,
		Cursor: cursor,
		Raw:    raw,
	}
	if !parsed {
		return params
	}

	state := sess.State
	params.Limit = state.Limit
	for _, filter := range state.Filters {
		if filter.Value == "" {
			continue
		}
		params.Filters = append(params.Filters, adapter.Filter{
			Field: filter.Field,
			Op:    adapter.OpFromQuery(filter.Op),
			Value: filter.Value,
		})
	}
	if state.SortField != "" {
		params.Sort = adapter.Sort{
			Field: state.SortField,
			Desc:  state.SortDir != "asc",
		}
	}
	return params
}

// queryEntity pulls the entity id out of a query's leading in: token.
func queryEntity(query string) string {

	fields := strings.Fields(query)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "in:") {
		return ""
	}
	return strings.ToLower(fields[0][len("in:"):])
}
