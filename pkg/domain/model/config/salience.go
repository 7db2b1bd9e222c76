package config

import (
	"maps"
	"strings"

	"github.com/webmasterarbez/elaoms/pkg/domain/types"
)

// defaultSalienceFields is the built-in data-collection field to tier mapping.
// Fields not listed here are stored with low salience.
var defaultSalienceFields = map[string]types.SalienceTier{
	"first_name":    types.SalienceHigh,
	"name":          types.SalienceHigh,
	"last_name":     types.SalienceHigh,
	"full_name":     types.SalienceHigh,
	"email":         types.SalienceHigh,
	"phone":         types.SalienceHigh,
	"phone_number":  types.SalienceHigh,
	"address":       types.SalienceHigh,
	"birthday":      types.SalienceHigh,
	"date_of_birth": types.SalienceHigh,

	"preference":  types.SalienceMedium,
	"preferences": types.SalienceMedium,
	"topic":       types.SalienceMedium,
	"interest":    types.SalienceMedium,
	"interests":   types.SalienceMedium,
	"request":     types.SalienceMedium,
	"issue":       types.SalienceMedium,
	"feedback":    types.SalienceMedium,
	"summary":     types.SalienceMedium,
	"sentiment":   types.SalienceMedium,
	"goal":        types.SalienceMedium,
}

// SalienceTable maps normalized data-collection field keys to salience tiers.
// It is immutable after construction.
type SalienceTable struct {
	fields map[string]types.SalienceTier
}

// DefaultSalienceTable returns the built-in mapping
func DefaultSalienceTable() *SalienceTable {
	return &SalienceTable{fields: maps.Clone(defaultSalienceFields)}
}

// NewSalienceTable builds a table from fields. Keys are normalized; when
// withDefaults is set, the built-in mapping is applied first and fields
// override it.
func NewSalienceTable(fields map[string]types.SalienceTier, withDefaults bool) *SalienceTable {
	t := &SalienceTable{fields: make(map[string]types.SalienceTier)}
	if withDefaults {
		maps.Copy(t.fields, defaultSalienceFields)
	}
	for k, v := range fields {
		t.fields[NormalizeFieldKey(k)] = v
	}
	return t
}

// Tier returns the tier of a field, or low when the field is not mapped
func (t *SalienceTable) Tier(field string) types.SalienceTier {
	if t == nil {
		return DefaultSalienceTable().Tier(field)
	}
	if tier, ok := t.fields[NormalizeFieldKey(field)]; ok {
		return tier
	}
	return types.SalienceLow
}

// Fields returns a copy of the explicit mapping
func (t *SalienceTable) Fields() map[string]types.SalienceTier {
	return maps.Clone(t.fields)
}

// NormalizeFieldKey lower-cases a data-collection id and turns hyphens and
// spaces into underscores
func NormalizeFieldKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("-", "_", " ", "_").Replace(key)
}
