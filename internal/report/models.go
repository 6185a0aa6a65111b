// Package report turns the raw fetchAvailableModels payload into the grouped,
// normalized records the dashboard prints, and renders them as a fixed-width
// colorized table.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pistat/pistat/internal/collector"
)

// Model is one normalized row of the report.
type Model struct {
	Name    string
	Icon    string
	Percent int // remaining quota, 0-100
	Limit   string
	Reset   string
	// ResetAtMs is the raw reset instant in epoch milliseconds, 0 when the
	// API sent no reset time. Kept for secondary sorting.
	ResetAtMs int64
}

// Grouped partitions the report rows into the fixed family buckets.
type Grouped struct {
	Claude []Model
	Gemini []Model
	Other  []Model
}

// Bucket pairs a family label with its rows.
type Bucket struct {
	Family string
	Models []Model
}

// Buckets returns the family buckets in their fixed display order.
func (g Grouped) Buckets() []Bucket {
	return []Bucket{
		{Family: "Claude", Models: g.Claude},
		{Family: "Gemini", Models: g.Gemini},
		{Family: "Other", Models: g.Other},
	}
}

// Total returns the number of rows across all buckets.
func (g Grouped) Total() int {
	return len(g.Claude) + len(g.Gemini) + len(g.Other)
}

// All returns every row in bucket order.
func (g Grouped) All() []Model {
	all := make([]Model, 0, g.Total())
	all = append(all, g.Claude...)
	all = append(all, g.Gemini...)
	all = append(all, g.Other...)
	return all
}

// excludedFamilies are name substrings (matched case-insensitively) for model
// families that should never appear in the report.
var excludedFamilies = []string{
	"gemini 2.5", // deprecated family, still returned by the API
}

// iconRules map name substrings to a display glyph, first match wins.
var iconRules = []struct {
	keyword string
	glyph   string
}{
	{"claude", "✳"},
	{"gemini", "◆"},
	{"imagen", "▣"},
}

const defaultIcon = "●"

// BuildReport filters and normalizes the raw response into grouped display
// records. now is used for the reset countdowns; passing it in keeps the
// transformation pure.
func BuildReport(resp *collector.QuotaResponse, now time.Time) Grouped {
	if resp == nil || len(resp.Models) == 0 {
		return Grouped{}
	}

	// Map iteration order is random; walk keys sorted so ties between equal
	// display names stay deterministic.
	keys := make([]string, 0, len(resp.Models))
	for k := range resp.Models {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	models := make([]Model, 0, len(keys))
	for _, k := range keys {
		entry := resp.Models[k]
		name := entryName(entry)
		if entry.IsInternal || name == "" || isExcluded(name) {
			continue
		}
		models = append(models, normalize(name, entry.QuotaInfo, now))
	}

	cl := collate.New(language.English)
	sort.SliceStable(models, func(i, j int) bool {
		return cl.CompareString(models[i].Name, models[j].Name) < 0
	})

	return groupByFamily(models)
}

func entryName(entry collector.ModelEntry) string {
	if name := strings.TrimSpace(entry.DisplayName); name != "" {
		return name
	}
	return strings.TrimSpace(entry.Model)
}

func isExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, part := range excludedFamilies {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

func normalize(name string, qi *collector.QuotaInfo, now time.Time) Model {
	m := Model{
		Name:  name,
		Icon:  iconFor(name),
		Limit: "-",
		Reset: "-",
	}
	if qi == nil {
		return m
	}

	// A missing fraction reads as fully exhausted rather than fully
	// available: the API omits it for models you can no longer call.
	if qi.RemainingFraction != nil {
		m.Percent = clampPercent(math.Round(*qi.RemainingFraction * 100))
	}
	if limit := strings.TrimSpace(qi.Limit); limit != "" {
		m.Limit = limit
	}
	if qi.ResetTime != "" {
		m.Reset = Countdown(qi.ResetTime, now)
		if t, err := time.Parse(time.RFC3339, qi.ResetTime); err == nil {
			m.ResetAtMs = t.UnixMilli()
		}
	}
	return m
}

func clampPercent(p float64) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}

func iconFor(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range iconRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.glyph
		}
	}
	return defaultIcon
}

func groupByFamily(models []Model) Grouped {
	var g Grouped
	for _, m := range models {
		lower := strings.ToLower(m.Name)
		switch {
		case strings.Contains(lower, "claude"):
			g.Claude = append(g.Claude, m)
		case strings.Contains(lower, "gemini"):
			g.Gemini = append(g.Gemini, m)
		default:
			g.Other = append(g.Other, m)
		}
	}
	return g
}

// Countdown formats the time remaining until a quota reset. An unparseable
// or empty timestamp yields "-", a reset in the past yields "Ready", and
// anything else rounds up to whole minutes.
func Countdown(resetTime string, now time.Time) string {
	if resetTime == "" {
		return "-"
	}
	target, err := time.Parse(time.RFC3339, resetTime)
	if err != nil {
		return "-"
	}

	delta := target.Sub(now)
	if delta <= 0 {
		return "Ready"
	}

	minutes := int64(math.Ceil(float64(delta.Milliseconds()) / 60000))
	if minutes >= 60 {
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}
