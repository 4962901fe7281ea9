package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srql/catalog"
	nt "srql/entity"
)

func newBuilder() *Builder {
	return New(catalog.Default())
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
	}{
		{name: "zero falls back", input: 0, want: 100},
		{name: "negative falls back", input: -5, want: 100},
		{name: "huge is clamped", input: 10000, want: 500},
		{name: "string parses", input: "37", want: 37},
		{name: "garbage falls back", input: "many", want: 100},
		{name: "in range passes", input: 250, want: 250},
		{name: "padded string parses", input: " 42 ", want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLimit(tt.input))
		})
	}
}

func TestBuildTokenOrder(t *testing.T) {
	bld := newBuilder()

	state := nt.QueryState{
		Entity:    "events",
		Time:      "last_7d",
		SortField: "timestamp",
		SortDir:   "desc",
		Limit:     25,
		Filters: []nt.Filter{
			{Field: "severity", Op: nt.OpEquals, Value: "critical"},
		},
	}

	assert.Equal(t,
		"in:events time:last_7d severity:critical sort:timestamp:desc limit:25",
		bld.Build(state))
}

func TestBuildSkipsEmptyFilters(t *testing.T) {
	bld := newBuilder()

	state := nt.QueryState{
		Entity: "devices",
		Limit:  100,
		Filters: []nt.Filter{
			{Field: "hostname", Op: nt.OpEquals, Value: ""},
		},
	}

	assert.Equal(t, "in:devices limit:100", bld.Build(state))
}

func TestBuildFilterEscaping(t *testing.T) {
	bld := newBuilder()

	state := nt.QueryState{
		Entity:  "devices",
		SortDir: "desc",
		Limit:   100,
		Filters: []nt.Filter{
			{Field: "hostname", Op: nt.OpContains, Value: "server 1"},
		},
	}
	query := bld.Build(state)
	assert.Contains(t, query, `hostname:%server\ 1%`)

	parsed, err := bld.Parse(query)
	require.NoError(t, err)
	require.Len(t, parsed.Filters, 1)
	assert.Equal(t, nt.OpContains, parsed.Filters[0].Op)
	assert.Equal(t, "server 1", parsed.Filters[0].Value)
}

func TestBuildDownsampleGating(t *testing.T) {
	bld := newBuilder()

	// Downsample tokens emit for a capable entity with bucket and time set.
	state := bld.DefaultState("metrics", 100)
	assert.Equal(t,
		"in:metrics time:last_24h bucket:5m agg:avg series:metric_name sort:timestamp:asc limit:100",
		bld.Build(state))

	// Never for an entity that cannot downsample.
	state.Entity = "devices"
	assert.NotContains(t, bld.Build(state), "bucket:")
}

func TestRoundTrip(t *testing.T) {
	bld := newBuilder()

	queries := []string{
		"in:devices sort:last_seen:desc limit:100",
		"in:events time:last_7d severity:critical sort:timestamp:desc limit:25",
		"in:logs time:last_1h service:api !severity:debug sort:timestamp:desc limit:50",
		"in:metrics time:last_24h bucket:5m agg:avg series:metric_name sort:timestamp:asc limit:100",
		`in:devices hostname:%server\ 1% sort:last_seen:desc limit:100`,
		"in:devices hostname:%cam% !status:offline sort:last_seen:asc limit:10",
	}

	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			state, err := bld.Parse(query)
			require.NoError(t, err)
			assert.Equal(t, query, bld.Build(state))
		})
	}
}

func TestRoundTripFromState(t *testing.T) {
	bld := newBuilder()

	for _, entityID := range []string{"devices", "pollers", "events", "logs", "alerts", "metrics"} {
		t.Run(entityID, func(t *testing.T) {
			state := bld.DefaultState(entityID, 100)
			query := bld.Build(state)

			parsed, err := bld.Parse(query)
			require.NoError(t, err)
			assert.Equal(t, query, bld.Build(parsed))
		})
	}
}

func TestDefaultState(t *testing.T) {
	bld := newBuilder()

	state := bld.DefaultState("events", 50)
	assert.Equal(t, "events", state.Entity)
	assert.Equal(t, "last_24h", state.Time)
	assert.Equal(t, "timestamp", state.SortField)
	assert.Equal(t, "desc", state.SortDir)
	assert.Equal(t, 50, state.Limit)
	require.Len(t, state.Filters, 1)
	assert.Equal(t, "severity", state.Filters[0].Field)
	assert.Equal(t, "", state.Filters[0].Value)
}

func TestNormalize(t *testing.T) {
	bld := newBuilder()

	t.Run("unknown entity falls back to devices", func(t *testing.T) {
		state := bld.Normalize(nt.QueryState{Entity: "nonexistent"})
		assert.Equal(t, "devices", state.Entity)
	})

	t.Run("sort dir is clamped", func(t *testing.T) {
		state := bld.Normalize(nt.QueryState{Entity: "devices", SortDir: "sideways"})
		assert.Equal(t, "desc", state.SortDir)
	})

	t.Run("filters are never empty", func(t *testing.T) {
		state := bld.Normalize(nt.QueryState{Entity: "devices"})
		require.Len(t, state.Filters, 1)
		assert.Equal(t, "hostname", state.Filters[0].Field)
	})

	t.Run("disallowed filter field falls back to default", func(t *testing.T) {
		state := bld.Normalize(nt.QueryState{
			Entity:  "events",
			Filters: []nt.Filter{{Field: "flux", Op: nt.OpEquals, Value: "x"}},
		})
		assert.Equal(t, "severity", state.Filters[0].Field)
	})

	t.Run("unknown op falls back to contains", func(t *testing.T) {
		state := bld.Normalize(nt.QueryState{
			Entity:  "devices",
			Filters: []nt.Filter{{Field: "hostname", Op: "regex", Value: "x"}},
		})
		assert.Equal(t, nt.OpContains, state.Filters[0].Op)
	})

	t.Run("downsample cleared for incapable entity", func(t *testing.T) {
		state := bld.Normalize(nt.QueryState{Entity: "devices", Bucket: "5m", Agg: "avg"})
		assert.Empty(t, state.Bucket)
		assert.Empty(t, state.Agg)
	})

	t.Run("bucket without time defaults the window", func(t *testing.T) {
		state := bld.Normalize(nt.QueryState{Entity: "metrics", Bucket: "1h"})
		assert.Equal(t, "last_24h", state.Time)
	})

	t.Run("unrecognized time window drops", func(t *testing.T) {
		state := bld.Normalize(nt.QueryState{Entity: "events", Time: "yesterday"})
		assert.Empty(t, state.Time)
	})
}

func TestUpdate(t *testing.T) {
	bld := newBuilder()

	state := bld.DefaultState("devices", 100)

	state = bld.Update(state, map[string]string{
		"filters.0.field": "status",
		"filters.0.op":    "not_equals",
		"filters.0.value": "offline",
		"sort_dir":        "asc",
		"limit":           "9999",
	})

	assert.Equal(t, "status", state.Filters[0].Field)
	assert.Equal(t, nt.OpNotEquals, state.Filters[0].Op)
	assert.Equal(t, "offline", state.Filters[0].Value)
	assert.Equal(t, "asc", state.SortDir)
	assert.Equal(t, 500, state.Limit)

	// Out-of-range filter edits are ignored, not fatal.
	same := bld.Update(state, map[string]string{"filters.9.value": "x"})
	assert.Equal(t, state, same)
}
