package page

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srql/adapter"
	"srql/catalog"
	"srql/viz"
)

// fakeAdapter records the last call and plays back a canned response.
type fakeAdapter struct {
	entity string
	params adapter.Params
	actor  *adapter.Actor

	result adapter.Result
	err    error
}

func (fa *fakeAdapter) Query(ctx context.Context, entity string, params adapter.Params, actor *adapter.Actor) (adapter.Result, error) {
	fa.entity = entity
	fa.params = params
	fa.actor = actor
	return fa.result, fa.err
}

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, kv ...any)             {}
func (nopLogger) Error(ctx context.Context, msg string, err error, kv ...any) {}

func newPage(fa *fakeAdapter) *Page {
	return New(catalog.Default(), fa, nopLogger{})
}

func TestInit(t *testing.T) {
	pg := newPage(&fakeAdapter{})

	t.Run("catalog entity seeds builder state", func(t *testing.T) {
		sess := pg.Init("events", 100)

		assert.NotEmpty(t, sess.ID)
		assert.True(t, sess.BuilderSynced)
		assert.False(t, sess.Unsupported)
		assert.Equal(t, "/events", sess.Route)
		assert.Equal(t, sess.Query, sess.Draft)
		assert.Equal(t, "in:events time:last_24h sort:timestamp:desc limit:100", sess.Query)

		// The seeded empty filter row stays in state even though it does not
		// serialize.
		require.Len(t, sess.State.Filters, 1)
		assert.Empty(t, sess.State.Filters[0].Value)
	})

	t.Run("unknown entity gets fallback query", func(t *testing.T) {
		sess := pg.Init("otel_traces", 100)

		assert.True(t, sess.Unsupported)
		assert.Equal(t, "in:otel_traces time:last_7d limit:100", sess.Query)
	})

	t.Run("unknown non-timeseries entity skips the window", func(t *testing.T) {
		sess := pg.Init("inventory", 0)
		assert.Equal(t, "in:inventory limit:100", sess.Query)
	})
}

func TestLoadList(t *testing.T) {
	actor := &adapter.Actor{ID: "u1", Tenant: "t1"}

	t.Run("executes parsed query through adapter", func(t *testing.T) {
		fa := &fakeAdapter{
			result: adapter.Result{
				Rows: []map[string]any{
					{"timestamp": "2025-01-01T00:00:00Z", "value": 10},
					{"timestamp": "2025-01-01T00:01:00Z", "value": 12},
				},
			},
		}
		pg := newPage(fa)

		sess := pg.Init("events", 100)
		sess = pg.LoadList(context.Background(), sess, Request{
			Query: "in:events time:last_7d severity:critical sort:timestamp:desc limit:25",
			Actor: actor,
		})

		assert.Empty(t, sess.Error)
		assert.Len(t, sess.Results, 2)
		assert.Equal(t, viz.Timeseries, sess.Viz.Kind)
		assert.True(t, sess.BuilderSynced)

		assert.Equal(t, "events", fa.entity)
		assert.Equal(t, actor, fa.actor)
		assert.Equal(t, 25, fa.params.Limit)
		require.Len(t, fa.params.Filters, 1)
		assert.Equal(t, adapter.Filter{Field: "severity", Op: adapter.OpEq, Value: "critical"}, fa.params.Filters[0])
		assert.Equal(t, adapter.Sort{Field: "timestamp", Desc: true}, fa.params.Sort)
	})

	t.Run("parse failure keeps text authoritative", func(t *testing.T) {
		fa := &fakeAdapter{}
		pg := newPage(fa)

		sess := pg.Init("events", 100)
		sess = pg.LoadList(context.Background(), sess, Request{
			Query: "in:events flux:high limit:10",
			Actor: actor,
		})

		assert.True(t, sess.Unsupported)
		assert.False(t, sess.BuilderSynced)
		assert.Empty(t, sess.Error)

		// The raw text still went to the adapter, verbatim.
		assert.Equal(t, "events", fa.entity)
		assert.Equal(t, "in:events flux:high limit:10", fa.params.Raw)
		assert.Empty(t, fa.params.Filters)
	})

	t.Run("adapter failure surfaces as error string", func(t *testing.T) {
		fa := &fakeAdapter{err: errors.New("backend unavailable")}
		pg := newPage(fa)

		sess := pg.Init("events", 100)
		sess = pg.LoadList(context.Background(), sess, Request{Actor: actor})

		assert.Equal(t, "backend unavailable", sess.Error)
		assert.Empty(t, sess.Results)
		assert.Equal(t, viz.None, sess.Viz.Kind)
	})

	t.Run("cursor and limit forwarded", func(t *testing.T) {
		fa := &fakeAdapter{}
		pg := newPage(fa)

		sess := pg.Init("devices", 100)
		sess = pg.LoadList(context.Background(), sess, Request{
			Query:  "in:devices limit:50",
			Cursor: "abc123",
			Actor:  actor,
		})

		assert.Equal(t, "abc123", fa.params.Cursor)
		assert.Equal(t, 50, fa.params.Limit)
		assert.Equal(t, 50, sess.Pagination.Limit)
	})

	t.Run("carries session query when request has none", func(t *testing.T) {
		fa := &fakeAdapter{}
		pg := newPage(fa)

		sess := pg.Init("devices", 100)
		want := sess.Query
		sess = pg.LoadList(context.Background(), sess, Request{Actor: actor})

		assert.Equal(t, want, sess.Query)
		assert.Equal(t, want, fa.params.Raw)
	})

	t.Run("records the resolved route", func(t *testing.T) {
		fa := &fakeAdapter{}
		pg := newPage(fa)

		sess := pg.Init("devices", 100)
		sess = pg.LoadList(context.Background(), sess, Request{
			Query: "in:logs time:last_1h limit:10",
			Actor: actor,
		})

		assert.Equal(t, "/logs", sess.Route)
		assert.Equal(t, "logs", sess.Entity)
	})
}
