package terminology

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ayushbridge/platform/pkg/common/logger"
	"github.com/ayushbridge/platform/pkg/common/models"
)

// Category selects which mapping table a term is resolved against.
type Category string

const (
	CategoryCondition  Category = "condition"
	CategorySystemType Category = "system_type"
	CategorySeverity   Category = "severity"
)

// Tier reports how a term resolved. Anything below TierExact is recorded so
// translation confidence stays auditable downstream.
type Tier int

const (
	TierSkipped Tier = iota // blank input, defined no-op
	TierExact
	TierCaseInsensitive
	TierPartial // substring match, conditions only
	TierNone    // passthrough, original term kept
)

type table struct {
	entries map[string]string
	keys    []string // sorted so scans resolve deterministically
}

func newTable(entries map[string]string) *table {
	t := &table{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	t.rebuildKeys()
	return t
}

func (t *table) rebuildKeys() {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t.keys = keys
}

func (t *table) add(native, english string) {
	_, existed := t.entries[native]
	t.entries[native] = english
	if !existed {
		t.rebuildKeys()
	}
}

// Translator maps native-language clinical vocabulary (Devanagari, Tamil,
// Arabic-script Urdu, English) to standardized English terms. Tables are
// mutable at runtime through AddMapping; reads and writes are safe to mix.
type Translator struct {
	mu     sync.RWMutex
	tables map[Category]*table

	exact           int64
	caseInsensitive int64
	partial         int64
	unmatched       int64
}

// New returns a Translator seeded with the built-in AYUSH/NAMASTE tables.
func New() *Translator {
	return &Translator{
		tables: map[Category]*table{
			CategoryCondition:  newTable(defaultConditionMappings),
			CategorySystemType: newTable(defaultSystemTypeMappings),
			CategorySeverity:   newTable(defaultSeverityMappings),
		},
	}
}

// NewWithCatalog overlays a loaded catalog on top of the built-in tables.
func NewWithCatalog(cat Catalog) *Translator {
	tr := New()
	for native, english := range cat.Conditions {
		tr.tables[CategoryCondition].add(native, english)
	}
	for native, english := range cat.SystemTypes {
		tr.tables[CategorySystemType].add(native, english)
	}
	for native, english := range cat.Severities {
		tr.tables[CategorySeverity].add(native, english)
	}
	return tr
}

// Translate resolves a term against the category's table. Matching is
// strictly tiered: exact, then case-insensitive, then (conditions only)
// substring in either direction. An unmatched term is returned unchanged;
// translation is best-effort and never fails. Blank input yields "".
func (tr *Translator) Translate(term string, category Category) string {
	result, _ := tr.TranslateWithTier(term, category)
	return result
}

// TranslateWithTier is Translate plus the tier the term resolved at, used by
// the cleaner to report per-batch translation confidence.
func (tr *Translator) TranslateWithTier(term string, category Category) (string, Tier) {
	cleaned := strings.TrimSpace(term)
	if cleaned == "" {
		return "", TierSkipped
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	t, ok := tr.tables[category]
	if !ok {
		tr.unmatched++
		return cleaned, TierNone
	}

	if english, ok := t.entries[cleaned]; ok {
		tr.exact++
		return english, TierExact
	}

	lowered := strings.ToLower(cleaned)
	for _, key := range t.keys {
		if strings.ToLower(key) == lowered {
			tr.caseInsensitive++
			return t.entries[key], TierCaseInsensitive
		}
	}

	if category == CategoryCondition {
		for _, key := range t.keys {
			keyLower := strings.ToLower(key)
			if strings.Contains(lowered, keyLower) || strings.Contains(keyLower, lowered) {
				tr.partial++
				logger.Log.WithFields(map[string]interface{}{
					"original":   cleaned,
					"matched":    key,
					"translated": t.entries[key],
				}).Debug("partial match used for condition translation")
				return t.entries[key], TierPartial
			}
		}
	}

	tr.unmatched++
	return cleaned, TierNone
}

func (tr *Translator) TranslateCondition(term string) string {
	return tr.Translate(term, CategoryCondition)
}

func (tr *Translator) TranslateSystemType(term string) string {
	return tr.Translate(term, CategorySystemType)
}

func (tr *Translator) TranslateSeverity(term string) string {
	return tr.Translate(term, CategorySeverity)
}

// AddMapping registers a native-term to English-term pair at runtime. The
// addition is visible to the next lookup and leaves every other entry
// untouched.
func (tr *Translator) AddMapping(category Category, native, english string) error {
	native = strings.TrimSpace(native)
	english = strings.TrimSpace(english)
	if native == "" || english == "" {
		return fmt.Errorf("both native and english terms are required")
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	t, ok := tr.tables[category]
	if !ok {
		return fmt.Errorf("unknown mapping category %q", category)
	}
	t.add(native, english)

	logger.Log.WithFields(map[string]interface{}{
		"category": string(category),
		"native":   native,
		"english":  english,
	}).Info("terminology mapping registered")

	return nil
}

// MappingStats reports how many translations each table holds.
type MappingStats struct {
	ConditionMappings  int `json:"condition_mappings"`
	SystemTypeMappings int `json:"system_type_mappings"`
	SeverityMappings   int `json:"severity_mappings"`
	TotalMappings      int `json:"total_mappings"`
}

func (tr *Translator) Stats() MappingStats {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	s := MappingStats{
		ConditionMappings:  len(tr.tables[CategoryCondition].entries),
		SystemTypeMappings: len(tr.tables[CategorySystemType].entries),
		SeverityMappings:   len(tr.tables[CategorySeverity].entries),
	}
	s.TotalMappings = s.ConditionMappings + s.SystemTypeMappings + s.SeverityMappings
	return s
}

// TierCounts returns the process-lifetime tier counters.
func (tr *Translator) TierCounts() models.TranslationStats {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	return models.TranslationStats{
		ExactMatches:           int(tr.exact),
		CaseInsensitiveMatches: int(tr.caseInsensitive),
		PartialMatches:         int(tr.partial),
		Unmatched:              int(tr.unmatched),
	}
}
