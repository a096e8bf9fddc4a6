package task

import (
	"sort"

	"github.com/amonks/cadence/internal/dates"
)

// DayStats counts outcomes on one calendar day. Completions are bucketed by
// the local date of CompletedAt; failures by ScheduledDate.
type DayStats struct {
	Date      dates.Date `json:"date"`
	Completed int        `json:"completed"`
	Failed    int        `json:"failed"`
}

// Stats summarizes the task collection.
type Stats struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Failed         int            `json:"failed"`
	TotalTimeSpent int64          `json:"total_time_spent"`
	Days           []DayStats     `json:"days"`
	Categories     map[string]int `json:"categories"`
}

// Stats computes a summary at the store clock's current time.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.refreshLocked(now)

	stats := Stats{
		Total:      len(s.tasks),
		Days:       []DayStats{},
		Categories: map[string]int{},
	}
	days := map[dates.Date]*DayStats{}
	day := func(d dates.Date) *DayStats {
		if entry, ok := days[d]; ok {
			return entry
		}
		entry := &DayStats{Date: d}
		days[d] = entry
		return entry
	}

	for _, t := range s.tasks {
		stats.TotalTimeSpent += t.ActualTimeSpent + t.accrued(now)
		switch {
		case t.Completed:
			stats.Completed++
			if t.CompletedAt != nil {
				day(dates.Of(t.CompletedAt.Local())).Completed++
			}
			if t.Category != "" {
				stats.Categories[t.Category]++
			}
		case t.Failed:
			stats.Failed++
			if t.ScheduledDate != nil {
				day(*t.ScheduledDate).Failed++
			}
		}
	}

	for _, entry := range days {
		stats.Days = append(stats.Days, *entry)
	}
	sort.Slice(stats.Days, func(i, j int) bool {
		return stats.Days[i].Date.Before(stats.Days[j].Date)
	})
	return stats
}
