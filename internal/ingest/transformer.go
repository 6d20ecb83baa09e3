package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ryabkov82/backoffice-server/internal/record"
)

// Resolve returns the first non-empty value among the field's aliases.
// Headers and values are compared after trimming; matching is case-sensitive.
func Resolve(row RawRow, spec FieldSpec) (string, bool) {
	for _, alias := range spec.Aliases {
		v, ok := row[strings.TrimSpace(alias)]
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// MapRow builds a candidate record from one row. The returned reasons are
// empty when the row is valid.
func MapRow(fields []FieldSpec, row RawRow) (record.Fields, []string) {
	out := make(record.Fields, len(fields)+1)
	var reasons []string

	for _, f := range fields {
		value, ok := Resolve(row, f)

		if f.Address != nil {
			value = addressValue(value, out, f.Address)
			ok = value != ""
		}

		if !ok {
			if f.Required {
				reasons = append(reasons, "missing field: "+f.Field)
				continue
			}
			if f.Default != nil {
				out[f.Field] = f.Default
			}
			continue
		}

		if f.Transform != nil {
			out[f.Field] = f.Transform(value)
		} else {
			out[f.Field] = value
		}
	}

	out["status"] = record.StatusActive
	return out, reasons
}

func addressValue(value string, resolved record.Fields, rule *AddressRule) string {
	if IsMapLink(value) {
		return value
	}
	if value == "" {
		city, state := resolved.String(rule.CityField), resolved.String(rule.StateField)
		if city != "" && state != "" {
			return city + ", " + state
		}
	}
	return value
}

var mapLinkMarkers = []string{
	"google.com/maps",
	"maps.google.",
	"goo.gl/maps",
	"maps.app.goo.gl",
}

// IsMapLink reports whether s looks like a shared map location URL
func IsMapLink(s string) bool {
	for _, m := range mapLinkMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// RawRowFromJSON renders a decoded JSON object as a row so that API bodies go
// through the same alias mapping as uploaded files.
func RawRowFromJSON(body map[string]any) RawRow {
	row := make(RawRow, len(body))
	for k, v := range body {
		switch val := v.(type) {
		case nil:
		case string:
			row[strings.TrimSpace(k)] = val
		case float64:
			row[strings.TrimSpace(k)] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			row[strings.TrimSpace(k)] = strconv.FormatBool(val)
		default:
			row[strings.TrimSpace(k)] = fmt.Sprint(val)
		}
	}
	return row
}

// dedupKey joins the lower-cased key fields of a mapped record
func dedupKey(fields record.Fields, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strings.ToLower(fields.String(k))
	}
	return strings.Join(parts, "\x00")
}
