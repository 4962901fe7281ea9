// Package builder keeps the two representations of a query — compact text and
// structured state — in exact sync. Parse and Build are near-inverses and both
// route through the same normalization, so alternating between raw-text edits
// and structured edits never lets the two views silently diverge.
package builder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"srql/catalog"
	nt "srql/entity"
)

const (
	// DefaultLimit applies when a query names no limit or an unusable one.
	DefaultLimit = 100
	// MaxLimit is the hard ceiling on any query's limit.
	MaxLimit = 500
)

// Times lists the recognized relative time windows, "" meaning all time.
var Times = []string{"", "last_1h", "last_24h", "last_7d", "last_30d"}

// Aggs lists the recognized downsample aggregations.
var Aggs = []string{"avg", "min", "max", "sum", "count"}

var bucketRe = regexp.MustCompile(`^\d+(s|m|h|d)$`)

// Builder transcodes and normalizes queries against a catalog.
type Builder struct {
	catalog *catalog.Catalog
}

// New creates a builder over the given catalog.
func New(cat *catalog.Catalog) *Builder {
	return &Builder{catalog: cat}
}

// DefaultState seeds a fresh state from the entity's catalog defaults,
// including one empty filter row so the form always has something to edit.
func (bld *Builder) DefaultState(entityID string, limit int) nt.QueryState {

	ec := bld.catalog.Entity(entityID)

	state := nt.QueryState{
		Entity:    ec.ID,
		Time:      ec.DefaultTime,
		SortField: ec.DefaultSortField,
		SortDir:   ec.DefaultSortDir,
		Limit:     limit,
		Filters: []nt.Filter{
			{Field: ec.DefaultFilterField, Op: nt.OpEquals},
		},
	}
	if ec.Downsample {
		state.Bucket = ec.DefaultBucket
		state.Agg = ec.DefaultAgg
		state.Series = ec.DefaultSeriesField
	}

	return bld.Normalize(state)
}

// Build serializes state to its canonical text form. Token order is fixed:
// in, time, bucket/agg/series, filters, sort, limit.
func (bld *Builder) Build(state nt.QueryState) string {

	state = bld.Normalize(state)
	ec := bld.catalog.Entity(state.Entity)

	tokens := []string{"in:" + state.Entity}

	if state.Time != "" {
		tokens = append(tokens, "time:"+state.Time)
	}

	if ec.Downsample && state.Bucket != "" && state.Time != "" {
		tokens = append(tokens, "bucket:"+state.Bucket)
		if state.Agg != "" {
			tokens = append(tokens, "agg:"+state.Agg)
		}
		if state.Series != "" {
			tokens = append(tokens, "series:"+state.Series)
		}
	}

	for _, filter := range state.Filters {
		if filter.Value == "" {
			continue
		}
		tokens = append(tokens, buildFilter(filter))
	}

	if state.SortField != "" {
		tokens = append(tokens, fmt.Sprintf("sort:%s:%s", state.SortField, state.SortDir))
	}

	tokens = append(tokens, fmt.Sprintf("limit:%d", state.Limit))

	return strings.Join(tokens, " ")
}

func buildFilter(filter nt.Filter) string {

	value := escape(filter.Value)

	switch filter.Op {
	case nt.OpEquals:
		return fmt.Sprintf("%s:%s", filter.Field, value)
	case nt.OpNotEquals:
		return fmt.Sprintf("!%s:%s", filter.Field, value)
	case nt.OpNotContains:
		return fmt.Sprintf("!%s:%%%s%%", filter.Field, value)
	default:
		return fmt.Sprintf("%s:%%%s%%", filter.Field, value)
	}
}

// Update merges a partial edit into state and re-normalizes. Recognized keys:
// entity, time, bucket, agg, series, sort_field, sort_dir, limit, and
// filters.N.field / filters.N.op / filters.N.value for filter rows.
func (bld *Builder) Update(state nt.QueryState, changes map[string]string) nt.QueryState {

	state = state.Clone()

	for key, value := range changes {
		switch key {
		case "entity":
			state.Entity = value
		case "time":
			state.Time = value
		case "bucket":
			state.Bucket = value
		case "agg":
			state.Agg = value
		case "series":
			state.Series = value
		case "sort_field":
			state.SortField = value
		case "sort_dir":
			state.SortDir = value
		case "limit":
			state.Limit = NormalizeLimit(value)
		default:
			updateFilter(&state, key, value)
		}
	}

	return bld.Normalize(state)
}

func updateFilter(state *nt.QueryState, key, value string) {

	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "filters" {
		return
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 || idx >= len(state.Filters) {
		return
	}

	switch parts[2] {
	case "field":
		state.Filters[idx].Field = value
	case "op":
		state.Filters[idx].Op = nt.Op(value)
	case "value":
		state.Filters[idx].Value = value
	}
}

// Normalize canonicalizes a loosely-constructed state: unknown entity falls
// back to devices, sort direction and limit are clamped, filter fields and ops
// are resolved against the entity's rules, and downsample settings are only
// kept where the entity supports them.
func (bld *Builder) Normalize(state nt.QueryState) nt.QueryState {

	state = state.Clone()

	state.Entity = strings.ToLower(strings.TrimSpace(state.Entity))
	if !bld.catalog.Has(state.Entity) {
		state.Entity = "devices"
	}
	ec := bld.catalog.Entity(state.Entity)

	if state.SortDir != "asc" && state.SortDir != "desc" {
		state.SortDir = "desc"
	}
	state.Limit = clampLimit(state.Limit)
	state.Time = normalizeTime(state.Time)

	for i, filter := range state.Filters {
		field := strings.ToLower(strings.TrimSpace(filter.Field))
		if field == "" || !ec.AllowsFilter(field) {
			field = ec.DefaultFilterField
		}
		state.Filters[i].Field = field
		state.Filters[i].Op = normalizeOp(filter.Op)
	}
	if len(state.Filters) == 0 {
		state.Filters = []nt.Filter{{Field: ec.DefaultFilterField, Op: nt.OpEquals}}
	}

	state = normalizeDownsample(ec, state)

	return state
}

func normalizeDownsample(ec catalog.EntityConfig, state nt.QueryState) nt.QueryState {

	if !ec.Downsample {
		state.Bucket = ""
		state.Agg = ""
		state.Series = ""
		return state
	}

	if state.Bucket != "" && !bucketRe.MatchString(state.Bucket) {
		state.Bucket = ec.DefaultBucket
	}
	if state.Bucket != "" {
		if !validAgg(state.Agg) {
			state.Agg = ec.DefaultAgg
		}
		if state.Series != "" && !ec.AllowsSeries(state.Series) {
			state.Series = ec.DefaultSeriesField
		}
		if state.Time == "" {
			state.Time = ec.DefaultTime
			if state.Time == "" {
				state.Time = "last_24h"
			}
		}
	}

	return state
}

// validateDownsample enforces the downsample grammar rules at parse time,
// before normalization papers over loose values.
func validateDownsample(ec catalog.EntityConfig, state nt.QueryState) error {

	if !ec.Downsample {
		if state.Bucket != "" {
			return parseError(DownsampleNotSupported, state.Bucket)
		}
		return nil
	}

	if state.Bucket != "" && !bucketRe.MatchString(state.Bucket) {
		return parseError(InvalidBucket, state.Bucket)
	}
	if state.Agg != "" && !validAgg(state.Agg) {
		return parseError(InvalidAgg, state.Agg)
	}
	if state.Series != "" && !ec.AllowsSeries(state.Series) {
		return parseError(UnsupportedSeriesField, state.Series)
	}
	return nil
}

func validAgg(agg string) bool {
	for _, a := range Aggs {
		if a == agg {
			return true
		}
	}
	return false
}

func normalizeOp(op nt.Op) nt.Op {
	for _, known := range nt.Ops {
		if known == op {
			return op
		}
	}
	return nt.OpContains
}

// normalizeTime silently drops unrecognized time windows.
func normalizeTime(value string) string {
	for _, t := range Times {
		if t == value {
			return value
		}
	}
	return ""
}

// NormalizeLimit parses and clamps a limit value from any loose form.
// Unparseable or non-positive input falls back to the default.
func NormalizeLimit(value any) int {

	switch v := value.(type) {
	case int:
		return clampLimit(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return DefaultLimit
		}
		return clampLimit(n)
	default:
		return DefaultLimit
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
