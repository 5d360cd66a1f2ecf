package planner

import "taskforge/internal/types"

// Summary holds derived statistics for one project's task collection.
type Summary struct {
	TotalTasks      int `json:"totalTasks"`
	CompletedTasks  int `json:"completedTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	BlockedTasks    int `json:"blockedTasks"`

	CompletionRate      float64 `json:"completionRate"`      // completed/total as a percentage
	TotalEstimatedHours float64 `json:"totalEstimatedHours"` // sum of recorded estimates
	TotalActualHours    float64 `json:"totalActualHours"`    // sum of recorded actuals
	AverageTaskDuration float64 `json:"averageTaskDuration"` // mean actual hours over completed tasks
	EfficiencyRatio     float64 `json:"efficiencyRatio"`     // estimated/actual as a percentage; >100 means under estimate
}

// Aggregate derives summary statistics from a task collection. Missing hour
// fields (nil pointers) contribute nothing; a caller that coerced invalid
// storage decimals to nil gets the same treatment as one that never recorded
// them.
func Aggregate(tasks []types.Task) Summary {
	var s Summary
	s.TotalTasks = len(tasks)

	var durationSum float64
	var durationCount int

	for i := range tasks {
		t := &tasks[i]
		switch t.Status {
		case types.StatusDone:
			s.CompletedTasks++
		case types.StatusInProgress:
			s.InProgressTasks++
		case types.StatusBlocked:
			s.BlockedTasks++
		}
		if t.EstimatedHours != nil {
			s.TotalEstimatedHours += *t.EstimatedHours
		}
		if t.ActualHours != nil {
			s.TotalActualHours += *t.ActualHours
		}
		// Average duration counts only finished work with a recorded actual
		// and a completion timestamp.
		if t.Status == types.StatusDone && t.ActualHours != nil && t.CompletedAt != nil {
			durationSum += *t.ActualHours
			durationCount++
		}
	}

	if s.TotalTasks > 0 {
		s.CompletionRate = float64(s.CompletedTasks) / float64(s.TotalTasks) * 100
	}
	if durationCount > 0 {
		s.AverageTaskDuration = durationSum / float64(durationCount)
	}
	// The ratio's direction matters: over 100 means the work beat its
	// estimate, under 100 means overrun.
	if s.TotalEstimatedHours > 0 && s.TotalActualHours > 0 {
		s.EfficiencyRatio = s.TotalEstimatedHours / s.TotalActualHours * 100
	}
	return s
}
