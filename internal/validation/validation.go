// Package validation reports conflicts in activity sets and in the week they
// are assigned to. Conflicts are warnings: resolution still works, but the
// user probably did not mean it.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/keepup/internal/calendar"
	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/scheduler"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateItemName  ConflictType = "duplicate_item_name"
	ConflictOverlappingWindows ConflictType = "overlapping_windows"
	ConflictEmptyWindow        ConflictType = "empty_window"
	ConflictEmptySet           ConflictType = "empty_set"
	ConflictMissingSet         ConflictType = "missing_set"
	ConflictMissingPenalty     ConflictType = "missing_penalty"
)

// Conflict represents a detected conflict in a set or a weekday
type Conflict struct {
	Type        ConflictType
	Description string
	Day         string   // weekday and parity (if applicable)
	Items       []string // Item names involved
	TimeRange   string   // Human-readable time range (if applicable)
	SetIDs      []int64
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

func (vr *ValidationResult) merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// Validator checks sets against the known penalties.
type Validator struct {
	penalties map[int64]models.Penalty
}

// New creates a Validator. Items referencing a penalty outside penalties are
// reported; pass nil to skip that check.
func New(penalties []models.Penalty) *Validator {
	v := &Validator{}
	if penalties != nil {
		v.penalties = make(map[int64]models.Penalty, len(penalties))
		for _, p := range penalties {
			v.penalties[p.ID] = p
		}
	}
	return v
}

// ValidateSet checks one set on its own.
func (v *Validator) ValidateSet(set models.ActivitySet) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if len(set.Items) == 0 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictEmptySet,
			Description: fmt.Sprintf("Set \"%s\" (ID %d) has no activities", set.Name, set.ID),
			SetIDs:      []int64{set.ID},
		})
		return result
	}

	names := make(map[string]int)
	for _, item := range set.Items {
		names[strings.ToLower(strings.TrimSpace(item.Name))]++
	}
	for _, item := range set.Items {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		if names[key] > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateItemName,
				Description: fmt.Sprintf("Set \"%s\" has %d activities named \"%s\"", set.Name, names[key], item.Name),
				Items:       []string{item.Name},
				SetIDs:      []int64{set.ID},
			})
			names[key] = 0 // report once
		}
	}

	for _, item := range set.Items {
		if item.StartTime == item.EndTime {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictEmptyWindow,
				Description: fmt.Sprintf("\"%s\" in set \"%s\" has an empty window (%s-%s) and can never be completed", item.Name, set.Name, item.StartTime, item.EndTime),
				Items:       []string{item.Name},
				TimeRange:   fmt.Sprintf("%s-%s", item.StartTime, item.EndTime),
				SetIDs:      []int64{set.ID},
			})
		}
		if v.penalties != nil && item.PenaltyID != nil {
			if _, ok := v.penalties[*item.PenaltyID]; !ok {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMissingPenalty,
					Description: fmt.Sprintf("\"%s\" in set \"%s\" references missing penalty %d; the fallback penalty applies", item.Name, set.Name, *item.PenaltyID),
					Items:       []string{item.Name},
					SetIDs:      []int64{set.ID},
				})
			}
		}
	}

	entries := make([]entry, len(set.Items))
	for i, item := range set.Items {
		entries[i] = entry{item: item, setID: set.ID, setName: set.Name}
	}
	result.merge(overlaps(entries, "", false))
	return result
}

// ValidateWeek checks every weekday in both month parities for overlapping
// windows between the sets that resolve together, and for assignments that
// point at sets that no longer exist.
func (v *Validator) ValidateWeek(src scheduler.Source) (ValidationResult, error) {
	result := ValidationResult{Conflicts: []Conflict{}}
	reportedMissing := make(map[int64]bool)

	for d := time.Sunday; d <= time.Saturday; d++ {
		rules, err := src.Rules(d)
		if err != nil {
			return result, err
		}

		for _, parity := range []calendar.Parity{calendar.Odd, calendar.Even} {
			keys := calendar.Keys{Weekday: d, Parity: parity}
			label := fmt.Sprintf("%s (%s months)", d, parity)

			var entries []entry
			for _, rule := range rules {
				setID := rule.SetFor(keys)
				if setID == nil {
					continue
				}
				set, err := src.GetActivitySet(*setID)
				if err != nil {
					if !apperrors.Is(err, apperrors.ErrNotFound) {
						return result, err
					}
					if !reportedMissing[*setID] {
						reportedMissing[*setID] = true
						result.Conflicts = append(result.Conflicts, Conflict{
							Type:        ConflictMissingSet,
							Description: fmt.Sprintf("%s: %s assignment references missing set %d", label, rule.Scheme(), *setID),
							Day:         label,
							SetIDs:      []int64{*setID},
						})
					}
					continue
				}
				for _, item := range set.Items {
					entries = append(entries, entry{item: item, setID: set.ID, setName: set.Name})
				}
			}
			result.merge(overlaps(entries, label, true))
		}
	}
	return result, nil
}

type entry struct {
	item    models.ActivityItem
	setID   int64
	setName string
}

// overlaps reports pairs whose windows intersect. With crossSetOnly, pairs
// from the same set are skipped since ValidateSet already reports them.
// O(n²) - sets are small.
func overlaps(entries []entry, day string, crossSetOnly bool) ValidationResult {
	result := ValidationResult{}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].item.StartTime < entries[j].item.StartTime
	})

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if crossSetOnly && a.setID == b.setID {
				continue
			}
			if !timesOverlap(a.item.StartTime, a.item.EndTime, b.item.StartTime, b.item.EndTime) {
				continue
			}
			desc := fmt.Sprintf("Windows overlap: \"%s\" (%s-%s) and \"%s\" (%s-%s)",
				a.item.Name, a.item.StartTime, a.item.EndTime, b.item.Name, b.item.StartTime, b.item.EndTime)
			if day != "" {
				desc = fmt.Sprintf("%s: %s, from sets \"%s\" and \"%s\"", day, desc, a.setName, b.setName)
			} else {
				desc = fmt.Sprintf("%s in set \"%s\"", desc, a.setName)
			}
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOverlappingWindows,
				Description: desc,
				Day:         day,
				Items:       []string{a.item.Name, b.item.Name},
				TimeRange:   fmt.Sprintf("%s-%s", b.item.StartTime, minString(a.item.EndTime, b.item.EndTime)),
				SetIDs:      uniqueIDs(a.setID, b.setID),
			})
		}
	}
	return result
}

func timesOverlap(start1, end1, start2, end2 string) bool {
	s1, err := calendar.ParseTimeToMinutes(start1)
	if err != nil {
		return false
	}
	e1, err := calendar.ParseTimeToMinutes(end1)
	if err != nil {
		return false
	}
	s2, err := calendar.ParseTimeToMinutes(start2)
	if err != nil {
		return false
	}
	e2, err := calendar.ParseTimeToMinutes(end2)
	if err != nil {
		return false
	}

	// Two ranges overlap if: start1 < end2 AND start2 < end1
	return s1 < e2 && s2 < e1
}

func minString(a, b string) string {
	if a < b {
		return a
	}
	return b
}

func uniqueIDs(a, b int64) []int64 {
	if a == b {
		return []int64{a}
	}
	return []int64{a, b}
}
