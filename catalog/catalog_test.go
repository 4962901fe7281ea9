package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityLookup(t *testing.T) {
	cat := Default()

	t.Run("known entity", func(t *testing.T) {
		ec := cat.Entity("events")
		assert.Equal(t, "events", ec.ID)
		assert.Equal(t, "timestamp", ec.DefaultSortField)
		assert.Equal(t, "/events", ec.Route)
		assert.True(t, cat.Has("events"))
	})

	t.Run("unknown entity synthesizes default", func(t *testing.T) {
		ec := cat.Entity("nonexistent")
		assert.Empty(t, ec.FilterFields)
		assert.Equal(t, "timestamp", ec.DefaultSortField)
		assert.Empty(t, ec.DefaultFilterField)
		assert.False(t, cat.Has("nonexistent"))
	})

	t.Run("registration order is preserved", func(t *testing.T) {
		entities := cat.Entities()
		require.NotEmpty(t, entities)
		assert.Equal(t, "devices", entities[0].ID)
	})
}

func TestAllowsFilter(t *testing.T) {
	cat := Default()

	events := cat.Entity("events")
	assert.True(t, events.AllowsFilter("severity"))
	assert.False(t, events.AllowsFilter("flux"))

	// Empty allow-list means unrestricted.
	unknown := cat.Entity("anything")
	assert.True(t, unknown.AllowsFilter("flux"))
}

func TestAllowsSeries(t *testing.T) {
	cat := Default()

	metrics := cat.Entity("metrics")
	assert.True(t, metrics.AllowsSeries("device_id"))
	assert.False(t, metrics.AllowsSeries("hostname"))
}

func TestDownsampleDefaults(t *testing.T) {
	cat := Default()

	metrics := cat.Entity("metrics")
	assert.True(t, metrics.Downsample)
	assert.Equal(t, "5m", metrics.DefaultBucket)
	assert.Equal(t, "avg", metrics.DefaultAgg)

	devices := cat.Entity("devices")
	assert.False(t, devices.Downsample)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	content := `
entities:
  - id: devices
    label: Fleet
    default_sort_field: hostname
    default_sort_dir: asc
    default_filter_field: hostname
    route: /fleet
  - id: traps
    label: SNMP Traps
    default_time: last_24h
    default_sort_field: timestamp
    default_sort_dir: desc
    default_filter_field: oid
    route: /traps
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cat, err := Load(path)
	require.NoError(t, err)

	// Overrides replace built-ins by id.
	devices := cat.Entity("devices")
	assert.Equal(t, "Fleet", devices.Label)
	assert.Equal(t, "/fleet", devices.Route)

	// New entries extend the roster.
	assert.True(t, cat.Has("traps"))
	assert.Equal(t, "oid", cat.Entity("traps").DefaultFilterField)

	// Built-ins not named stay put.
	assert.True(t, cat.Has("metrics"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("nope/catalog.yaml")
	assert.Error(t, err)
}
