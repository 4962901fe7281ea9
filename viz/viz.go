// Package viz infers a chart shape from raw result rows. Result columns vary
// per entity and aggregation, so the choice is driven by column names and
// value types rather than hardcoded per entity.
package viz

import (
	"sort"
	"strconv"
	"time"
)

const (
	// MaxPoints bounds a timeseries sample.
	MaxPoints = 120
	// MaxItems bounds a category breakdown.
	MaxItems = 12
)

// Kind tags an inference result.
type Kind int

const (
	None Kind = iota
	Timeseries
	Categories
)

// Point is one timeseries sample.
type Point struct {
	At    time.Time
	Value float64
}

// Item is one category bucket.
type Item struct {
	Label string
	Value float64
}

// Inference is the inferred chart shape. Fields beyond Kind are populated
// per the kind: XKey/YKey/Points for Timeseries, LabelKey/ValueKey/Items for
// Categories.
type Inference struct {
	Kind     Kind
	XKey     string
	YKey     string
	Points   []Point
	LabelKey string
	ValueKey string
	Items    []Item
}

// xKeys are recognized time columns, in preference order.
var xKeys = []string{"timestamp", "ts", "time", "bucket", "inserted_at", "observed_at"}

// yKeys are recognized value columns, in preference order.
var yKeys = []string{"value", "count", "avg", "min", "max", "p95", "p99"}

// Infer classifies rows as a timeseries, a category breakdown, or nothing.
// Best-effort: rows that do not fit are skipped, never fatal.
func Infer(rows []map[string]any) Inference {

	if len(rows) == 0 {
		return Inference{Kind: None}
	}

	inf, ok := inferTimeseries(rows)
	if ok {
		return inf
	}

	inf, ok = inferCategories(rows)
	if ok {
		return inf
	}

	return Inference{Kind: None}
}

func inferTimeseries(rows []map[string]any) (inf Inference, ok bool) {

	xKey := pickKey(rows[0], xKeys)
	if xKey == "" {
		return
	}

	yKey := pickKey(rows[0], yKeys)
	if yKey == "" {
		yKey = firstNumericKey(rows, xKey)
	}
	if yKey == "" {
		return
	}

	var points []Point
	for _, row := range rows {
		if len(points) == MaxPoints {
			break
		}
		at, tok := asTime(row[xKey])
		if !tok {
			continue
		}
		val, vok := asNumber(row[yKey])
		if !vok {
			continue
		}
		points = append(points, Point{At: at, Value: val})
	}
	if len(points) == 0 {
		return
	}

	inf = Inference{
		Kind:   Timeseries,
		XKey:   xKey,
		YKey:   yKey,
		Points: points,
	}
	ok = true
	return
}

func inferCategories(rows []map[string]any) (inf Inference, ok bool) {

	valueKey := pickKey(rows[0], []string{"count", "value"})
	if valueKey == "" {
		valueKey = firstNumericKey(rows, "")
	}
	if valueKey == "" {
		return
	}

	labelKey := firstStringKey(rows, valueKey)
	if labelKey == "" {
		return
	}

	sums := map[string]float64{}
	var order []string
	for _, row := range rows {
		label, lok := row[labelKey].(string)
		if !lok {
			continue
		}
		val, vok := asNumber(row[valueKey])
		if !vok {
			continue
		}
		if _, seen := sums[label]; !seen {
			order = append(order, label)
		}
		sums[label] += val
	}
	if len(order) == 0 {
		return
	}

	items := make([]Item, 0, len(order))
	for _, label := range order {
		items = append(items, Item{Label: label, Value: sums[label]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		return items[i].Label < items[j].Label
	})
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}

	inf = Inference{
		Kind:     Categories,
		LabelKey: labelKey,
		ValueKey: valueKey,
		Items:    items,
	}
	ok = true
	return
}

// pickKey returns the first candidate present in the row.
func pickKey(row map[string]any, candidates []string) string {
	for _, key := range candidates {
		if _, ok := row[key]; ok {
			return key
		}
	}
	return ""
}

// firstNumericKey returns the first column, in sorted key order, whose values
// are numeric across the sample. Key order is sorted for determinism; exact
// choice among several numeric columns is not a stable contract.
func firstNumericKey(rows []map[string]any, exclude string) string {

	keys := sortedKeys(rows[0])
	for _, key := range keys {
		if key == exclude {
			continue
		}
		numeric := true
		for _, row := range rows {
			if _, ok := asNumber(row[key]); !ok {
				numeric = false
				break
			}
		}
		if numeric {
			return key
		}
	}
	return ""
}

// firstStringKey returns the first column holding string values, skipping the
// value column.
func firstStringKey(rows []map[string]any, exclude string) string {

	keys := sortedKeys(rows[0])
	for _, key := range keys {
		if key == exclude {
			continue
		}
		if _, ok := rows[0][key].(string); ok {
			return key
		}
	}
	return ""
}

func sortedKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// asTime accepts time values, ISO-8601 strings with offset, or naive
// datetimes assumed UTC.
func asTime(value any) (time.Time, bool) {

	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		if at, err := time.Parse(time.RFC3339, v); err == nil {
			return at, true
		}
		if at, err := time.Parse("2006-01-02T15:04:05", v); err == nil {
			return at.UTC(), true
		}
		if at, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return at.UTC(), true
		}
	}
	return time.Time{}, false
}

// asNumber accepts native ints and floats plus their string encodings.
func asNumber(value any) (float64, bool) {

	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
