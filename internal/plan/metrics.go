package plan

import (
	"sort"
	"time"

	"github.com/rondoninha/leitura/internal/model"
)

// Status compares a reader's recorded chapters against the plan's
// cumulative target through today.
type Status string

const (
	StatusOnTime Status = "on_time"
	StatusBehind Status = "behind"
)

// DashboardRow is one user's standing within one plan.
type DashboardRow struct {
	UserName     string  `json:"user_name"`
	PlanName     string  `json:"plan_name"`
	ChaptersRead int     `json:"chapters_read"`
	TargetToDate int     `json:"target_to_date"`
	PlanTotal    int     `json:"plan_total"`
	Status       Status  `json:"status"`
	PctRead      float64 `json:"pct_read"`
	PctTarget    float64 `json:"pct_target"`
}

// DashboardSummary aggregates community-wide engagement.
type DashboardSummary struct {
	TotalReaders      int `json:"total_readers"`
	TotalChaptersRead int `json:"total_chapters_read"`
	OnTimeCount       int `json:"on_time_count"`
	BehindCount       int `json:"behind_count"`
}

// ComputeDashboard groups reading tallies by (user, plan) and scores each
// group against its plan's schedule. Groups referencing a plan name absent
// from plans are skipped — stale rows from renamed plans must not break the
// page. Returns (nil, nil) when there are no tallies at all, or when every
// group was filtered out: an explicit "no data" signal.
//
// TotalChaptersRead counts every tally, including rows whose plan was
// filtered out, mirroring the headline "chapters read" metric.
func ComputeDashboard(tallies []model.ReadingTally, plans map[string]*Plan, now time.Time) (*DashboardSummary, []DashboardRow) {
	if len(tallies) == 0 {
		return nil, nil
	}

	type key struct{ user, plan string }
	counts := make(map[key]int)
	for _, t := range tallies {
		counts[key{t.UserName, t.PlanName}]++
	}

	var rows []DashboardRow
	for k, read := range counts {
		p, ok := plans[k.plan]
		if !ok {
			continue
		}

		target := 0
		for _, e := range p.Entries {
			if onOrBefore(e.Date, now) {
				target += e.ChapterCount
			}
		}

		row := DashboardRow{
			UserName:     k.user,
			PlanName:     k.plan,
			ChaptersRead: read,
			TargetToDate: target,
			PlanTotal:    p.TotalChapters,
			Status:       StatusBehind,
		}
		if read >= target {
			row.Status = StatusOnTime
		}
		if p.TotalChapters > 0 {
			row.PctRead = float64(read) / float64(p.TotalChapters)
			row.PctTarget = float64(target) / float64(p.TotalChapters)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PlanName != rows[j].PlanName {
			return rows[i].PlanName < rows[j].PlanName
		}
		return rows[i].UserName < rows[j].UserName
	})

	summary := &DashboardSummary{TotalChaptersRead: len(tallies)}
	readers := make(map[string]struct{})
	for _, r := range rows {
		readers[r.UserName] = struct{}{}
		if r.Status == StatusOnTime {
			summary.OnTimeCount++
		} else {
			summary.BehindCount++
		}
	}
	summary.TotalReaders = len(readers)
	return summary, rows
}
