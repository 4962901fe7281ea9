// Package catalog holds the static per-entity query configuration: default
// sort, filter, and time window, the filter-field allow list, and downsample
// capability. Loaded once at startup and never mutated.
package catalog

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EntityConfig describes how one queryable entity behaves.
// An empty FilterFields list means any field may be filtered.
type EntityConfig struct {
	ID                 string   `yaml:"id"`
	Label              string   `yaml:"label"`
	DefaultTime        string   `yaml:"default_time,omitempty"`
	DefaultSortField   string   `yaml:"default_sort_field"`
	DefaultSortDir     string   `yaml:"default_sort_dir"`
	DefaultFilterField string   `yaml:"default_filter_field"`
	FilterFields       []string `yaml:"filter_fields,omitempty"`
	Downsample         bool     `yaml:"downsample,omitempty"`
	DefaultBucket      string   `yaml:"default_bucket,omitempty"`
	DefaultAgg         string   `yaml:"default_agg,omitempty"`
	DefaultSeriesField string   `yaml:"default_series_field,omitempty"`
	SeriesFields       []string `yaml:"series_fields,omitempty"`
	Route              string   `yaml:"route"`
}

// AllowsFilter reports whether field may appear in a filter for this entity.
func (ec EntityConfig) AllowsFilter(field string) bool {
	if len(ec.FilterFields) == 0 {
		return true
	}
	for _, f := range ec.FilterFields {
		if f == field {
			return true
		}
	}
	return false
}

// AllowsSeries reports whether field may be used as a downsample series.
// An absent allow-list permits any field.
func (ec EntityConfig) AllowsSeries(field string) bool {
	if len(ec.SeriesFields) == 0 {
		return true
	}
	for _, f := range ec.SeriesFields {
		if f == field {
			return true
		}
	}
	return false
}

// Catalog is an immutable registry of entity configurations.
type Catalog struct {
	byID  map[string]EntityConfig
	order []string
}

// New creates a catalog from the given configs, preserving their order.
func New(configs []EntityConfig) *Catalog {

	cat := &Catalog{
		byID: map[string]EntityConfig{},
	}
	for _, ec := range configs {
		if _, ok := cat.byID[ec.ID]; !ok {
			cat.order = append(cat.order, ec.ID)
		}
		cat.byID[ec.ID] = ec
	}
	return cat
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(builtin)
}

// Load reads entity configs from a yaml file and merges them over the
// built-in set. Entries with a known id replace the built-in entry.
func Load(path string) (cat *Catalog, err error) {

	data, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read catalog file")
		return
	}

	var override struct {
		Entities []EntityConfig `yaml:"entities"`
	}
	err = yaml.Unmarshal(data, &override)
	if err != nil {
		err = errors.Wrapf(err, "failed to unmarshal catalog file")
		return
	}

	cat = New(append(append([]EntityConfig{}, builtin...), override.Entities...))
	return
}

// Entities returns all configs in registration order.
func (cat *Catalog) Entities() []EntityConfig {

	out := make([]EntityConfig, 0, len(cat.order))
	for _, id := range cat.order {
		out = append(out, cat.byID[id])
	}
	return out
}

// Entity returns the config for id, or a synthesized permissive default for
// unknown ids. Never fails; use Has to distinguish.
func (cat *Catalog) Entity(id string) EntityConfig {

	ec, ok := cat.byID[id]
	if ok {
		return ec
	}
	return Unknown(id)
}

// Has reports whether id is a registered entity.
func (cat *Catalog) Has(id string) bool {
	_, ok := cat.byID[id]
	return ok
}

// FilterFields returns the sorted filter allow-list for id, empty when
// unrestricted.
func (cat *Catalog) FilterFields(id string) []string {

	fields := append([]string{}, cat.Entity(id).FilterFields...)
	sort.Strings(fields)
	return fields
}

// Unknown is the one documented fallback config for ids outside the registry:
// unrestricted filtering, timestamp sort, no default filter field.
func Unknown(id string) EntityConfig {
	return EntityConfig{
		ID:               id,
		Label:            id,
		DefaultSortField: "timestamp",
		DefaultSortDir:   "desc",
		Route:            "/" + id,
	}
}
