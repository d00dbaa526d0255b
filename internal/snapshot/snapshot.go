// Package snapshot derives the workload snapshot from the dashboard state.
//
// Build is pure: it reads the state and the given instant and nothing
// else, so the snapshot can always be thrown away and rebuilt.
package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

const (
	// CapacityMinutes is the fixed daily capacity.
	CapacityMinutes = 240
	// DefaultEstimateMinutes is assumed for tasks without an estimate.
	DefaultEstimateMinutes = 50
	// FocusBlockMinutes and BreakMinutes shape the next work block.
	FocusBlockMinutes = 50
	BreakMinutes      = 10

	maxRecommended = 5
	maxHabits      = 3
)

// Summaries holds the canned sentence for each sentiment.
var Summaries = map[domain.Sentiment]string{
	domain.SentimentSteady:     "Your plan looks balanced; keep the pace and schedule active breaks.",
	domain.SentimentStretch:    "There is a lot in flight; favour deep-work blocks and delegate light tasks.",
	domain.SentimentOverloaded: "Your backlog exceeds the estimated capacity; pick three key tasks at most.",
}

// Sentiment classifies a backlog against a capacity. The thresholds are
// inclusive: total <= 1.1x capacity is steady, total <= 1.6x is stretch.
// Totals are whole minutes, so comparing against the floored limits is
// exact and cannot overflow.
func Sentiment(totalMinutes, capacityMinutes int) domain.Sentiment {
	switch {
	case totalMinutes == 0:
		return domain.SentimentSteady
	case totalMinutes <= capacityMinutes*11/10:
		return domain.SentimentSteady
	case totalMinutes <= capacityMinutes*16/10:
		return domain.SentimentStretch
	default:
		return domain.SentimentOverloaded
	}
}

// Build derives the snapshot for state at instant now.
func Build(state domain.State, now time.Time) domain.AiSnapshot {
	var incomplete []domain.Task
	for _, t := range state.Tasks {
		if t.Status != domain.StatusDone {
			incomplete = append(incomplete, t)
		}
	}

	total := 0
	focus := []string{}
	seen := make(map[domain.ProjectRef]bool)
	for _, t := range incomplete {
		total += estimate(t)
		if !t.ProjectID.IsZero() && !seen[t.ProjectID] {
			seen[t.ProjectID] = true
			focus = append(focus, t.ProjectID.String())
		}
	}

	sentiment := Sentiment(total, CapacityMinutes)
	bandwidth := min(total, CapacityMinutes)
	dailyGoal := pickDailyGoal(state.Goals, seen)

	chips := []string{
		fmt.Sprintf("%d active tasks", len(incomplete)),
		fmt.Sprintf("%d min estimated", bandwidth),
	}
	if dailyGoal != "" {
		chips = append(chips, "Goal: "+dailyGoal)
	}
	for _, id := range focus {
		if p, ok := state.FindProject(id); ok {
			chips = append(chips, "Project: "+p.Name)
		}
	}

	return domain.AiSnapshot{
		FocusProjects:            focus,
		RecommendedTasks:         recommend(incomplete),
		SuggestedHabits:          habits(state.Goals),
		BandwidthEstimateMinutes: bandwidth,
		Sentiment:                sentiment,
		Summary:                  Summaries[sentiment],
		FocusChips:               chips,
		PendingCount:             len(incomplete),
		TotalEstimateMinutes:     total,
		DailyGoal:                dailyGoal,
		NextBlock:                NextBlock(now),
	}
}

// NextBlock renders a focus block starting at now followed by a break.
func NextBlock(now time.Time) string {
	blockEnd := now.Add(FocusBlockMinutes * time.Minute)
	breakEnd := blockEnd.Add(BreakMinutes * time.Minute)
	const hm = "15:04"
	return fmt.Sprintf("%s–%s focus · break %s-%s",
		now.Format(hm), blockEnd.Format(hm), blockEnd.Format(hm), breakEnd.Format(hm))
}

func estimate(t domain.Task) int {
	if t.EstimateMinutes != nil {
		return *t.EstimateMinutes
	}
	return DefaultEstimateMinutes
}

// recommend ranks by priority weight, then due date with undated last.
func recommend(incomplete []domain.Task) []string {
	ranked := append([]domain.Task(nil), incomplete...)
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, wj := ranked[i].Priority.Weight(), ranked[j].Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		return dueBefore(ranked[i].DueDate, ranked[j].DueDate)
	})
	ids := []string{}
	for i := 0; i < len(ranked) && i < maxRecommended; i++ {
		ids = append(ids, ranked[i].ID)
	}
	return ids
}

func habits(goals []domain.Goal) []string {
	var dated []domain.Goal
	for _, g := range goals {
		if g.DueDate != nil {
			dated = append(dated, g)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].DueDate.Before(*dated[j].DueDate)
	})
	out := []string{}
	for i := 0; i < len(dated) && i < maxHabits; i++ {
		out = append(out, "Review "+dated[i].Title)
	}
	return out
}

// pickDailyGoal returns the label of the goal with the nearest due date.
// With focus projects, only goals in one of them or in no project count;
// without focus projects every goal counts.
func pickDailyGoal(goals []domain.Goal, focus map[domain.ProjectRef]bool) string {
	var best *domain.Goal
	for i := range goals {
		g := &goals[i]
		if len(focus) > 0 && !g.ProjectID.IsZero() && !focus[g.ProjectID] {
			continue
		}
		if best == nil || dueBefore(g.DueDate, best.DueDate) {
			best = g
		}
	}
	if best == nil {
		return ""
	}
	return fmt.Sprintf("%s (%d/%d %s)", best.Title, best.CompletedUnits, best.TargetUnits, best.UnitLabel)
}

func dueBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
