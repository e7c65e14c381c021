package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// autosaveLayout is the timestamp suffix of autosave names
const autosaveLayout = "20060102-150405"

// RotationPolicy defines which autosaves are kept
type RotationPolicy struct {
	// MaxAutosaves is the number of newest autosaves always kept (0 = unlimited)
	MaxAutosaves int
	// MaxAge deletes autosaves older than this (0 = unlimited)
	MaxAge time.Duration
	// KeepDaily keeps the newest autosave of this many distinct days beyond
	// MaxAutosaves (0 = none)
	KeepDaily int
}

// DefaultRotationPolicy returns the default rotation policy
func DefaultRotationPolicy() RotationPolicy {
	return RotationPolicy{
		MaxAutosaves: 10,
		MaxAge:       0,
		KeepDaily:    7,
	}
}

// AutosaveName returns the name of an autosave taken at t:
// prefix-YYYYMMDD-HHMMSS, in UTC
func AutosaveName(prefix string, t time.Time) string {
	return prefix + "-" + t.UTC().Format(autosaveLayout)
}

// ParseAutosaveName splits an autosave name into its prefix and timestamp
func ParseAutosaveName(name string) (string, time.Time, error) {
	name = strings.TrimSuffix(name, SaveFileExt)
	if len(name) < len(autosaveLayout)+2 || name[len(name)-len(autosaveLayout)-1] != '-' {
		return "", time.Time{}, fmt.Errorf("invalid autosave name format: %s", name)
	}

	split := len(name) - len(autosaveLayout)
	ts, err := time.Parse(autosaveLayout, name[split:])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid timestamp in autosave name %s: %w", name, err)
	}
	return name[:split-1], ts, nil
}

// ApplyRotationPolicy returns the names of the autosaves the policy no
// longer keeps, newest first. The input is not modified.
func ApplyRotationPolicy(saves []SaveInfo, policy RotationPolicy, now time.Time) []string {
	if len(saves) == 0 {
		return nil
	}

	sorted := make([]SaveInfo, len(saves))
	copy(sorted, saves)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	var cutoff time.Time
	if policy.MaxAge > 0 {
		cutoff = now.Add(-policy.MaxAge)
	}

	days := make(map[string]bool)
	result := make([]string, 0)
	for i, save := range sorted {
		if !cutoff.IsZero() && save.Timestamp.Before(cutoff) {
			result = append(result, save.Name)
			continue
		}

		dayKey := save.Timestamp.UTC().Format("2006-01-02")
		if policy.MaxAutosaves == 0 || i < policy.MaxAutosaves {
			days[dayKey] = true
			continue
		}
		if policy.KeepDaily > 0 && !days[dayKey] && len(days) < policy.KeepDaily {
			days[dayKey] = true
			continue
		}
		result = append(result, save.Name)
	}
	return result
}
