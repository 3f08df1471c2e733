package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/models"
	"github.com/mmdatafocus/estate_backend/utils"
)

// OperationsSummary totals one user's daily activity reports over a period.
type OperationsSummary struct {
	UserId                      int    `json:"user_id"`
	UserName                    string `json:"user_name"`
	Days                        int    `json:"days"`
	PropertiesAdded             int    `json:"properties_added"`
	LeadsRespondedTo            int    `json:"leads_responded_to"`
	AmendingPreviousProperties  int    `json:"amending_previous_properties"`
	PreparingContract           int    `json:"preparing_contract"`
	TasksEfficiencyDutyTime     int    `json:"tasks_efficiency_duty_time"`
	TasksEfficiencyUniform      int    `json:"tasks_efficiency_uniform"`
	TasksEfficiencyAfterDuty    int    `json:"tasks_efficiency_after_duty"`
	LeadsRespondedOutOfDutyTime int    `json:"leads_responded_out_of_duty_time"`
	// EffectiveLeadsResponded sums the per-day values, each already floored at zero.
	EffectiveLeadsResponded int `json:"effective_leads_responded"`
	TasksEfficiencyTotal    int `json:"tasks_efficiency_total"`
}

// SummarizeDailyActivity groups rows by user, ordered by user id.
func SummarizeDailyActivity(rows []commission.DailyActivityReport) []*OperationsSummary {
	byUser := make(map[int]*OperationsSummary)
	for _, row := range rows {
		s, ok := byUser[row.UserId]
		if !ok {
			s = &OperationsSummary{UserId: row.UserId}
			byUser[row.UserId] = s
		}
		s.Days++
		s.PropertiesAdded += row.PropertiesAdded
		s.LeadsRespondedTo += row.LeadsRespondedTo
		s.AmendingPreviousProperties += row.AmendingPreviousProperties
		s.PreparingContract += row.PreparingContract
		s.TasksEfficiencyDutyTime += row.TasksEfficiencyDutyTime
		s.TasksEfficiencyUniform += row.TasksEfficiencyUniform
		s.TasksEfficiencyAfterDuty += row.TasksEfficiencyAfterDuty
		s.LeadsRespondedOutOfDutyTime += row.LeadsRespondedOutOfDutyTime
		s.EffectiveLeadsResponded += row.EffectiveLeadsResponded()
		s.TasksEfficiencyTotal += row.TasksEfficiencyDutyTime + row.TasksEfficiencyUniform + row.TasksEfficiencyAfterDuty
	}

	results := make([]*OperationsSummary, 0, len(byUser))
	for _, s := range byUser {
		results = append(results, s)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].UserId < results[j].UserId
	})
	return results
}

// GetOperationsSummary loads the stored daily reports of [from, to] and totals them per user.
func GetOperationsSummary(ctx context.Context, from time.Time, to time.Time, userId *int) ([]*OperationsSummary, error) {
	start := time.Now()
	defer logSlowReport(ctx, "operations_summary", start, map[string]any{
		"from": from.Format(utils.DateLayout),
		"to":   to.Format(utils.DateLayout),
	})

	if _, err := commission.NewPeriod(from, to); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("OperationsSummary:%s:%s:%d", from.Format(utils.DateLayout), to.Format(utils.DateLayout), utils.DereferencePtr(userId))
	var results []*OperationsSummary
	if exists, err := cacheGet(key, &results); err != nil {
		return nil, err
	} else if exists {
		return results, nil
	}

	rows, err := models.ListDailyActivityReports(ctx, from, to, userId)
	if err != nil {
		return nil, err
	}
	results = SummarizeDailyActivity(rows)

	users, err := models.ListOperationsUsers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	for _, s := range results {
		s.UserName = names[s.UserId]
	}

	if err := cacheSet(key, &results); err != nil {
		return nil, err
	}
	return results, nil
}
