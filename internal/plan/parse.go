// Package plan turns raw AI plan responses into typed items and renders
// them into the list markup cached in daily_plans.
//
// WIRE GRAMMAR:
//
//	plan   := item (";" item)*
//	item   := label ":" name ":" number
//	number := non-negative decimal
//
// The whole response may instead be the single word "None", meaning the
// model declined to produce a safe plan.
package plan

import (
	"math"
	"strconv"
	"strings"

	"github.com/sakif/fittrack/internal/model"
)

// DeclinedSentinel is the response the model gives when it refuses.
const DeclinedSentinel = "None"

const (
	itemSeparator  = ";"
	fieldSeparator = ":"
)

// Parse extracts the valid items of raw in input order.
//
// An item is valid when it has exactly three ":"-separated fields and the
// third is a finite, non-negative number. Invalid items are skipped, never
// fatal. Fields are trimmed of surrounding whitespace. Duplicates are kept.
func Parse(raw string) []model.PlanItem {
	raw = strings.TrimSpace(raw)
	if raw == "" || IsDeclined(raw) {
		return nil
	}

	var items []model.PlanItem
	for _, chunk := range strings.Split(raw, itemSeparator) {
		item, ok := parseItem(chunk)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// IsDeclined reports whether raw is the refusal sentinel.
func IsDeclined(raw string) bool {
	return strings.TrimSpace(raw) == DeclinedSentinel
}

func parseItem(chunk string) (model.PlanItem, bool) {
	fields := strings.Split(chunk, fieldSeparator)
	if len(fields) != 3 {
		return model.PlanItem{}, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return model.PlanItem{}, false
	}

	return model.PlanItem{
		Label: strings.TrimSpace(fields[0]),
		Name:  strings.TrimSpace(fields[1]),
		Value: value,
	}, true
}

// Format is the inverse of Parse for well-formed items.
func Format(items []model.PlanItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Label + fieldSeparator + it.Name + fieldSeparator +
			strconv.FormatFloat(it.Value, 'f', -1, 64)
	}
	return strings.Join(parts, itemSeparator)
}
