package commission

import (
	"encoding/json"
	"time"
)

// DailyCounts are the database-derived activity numbers for one user and day.
type DailyCounts struct {
	PropertiesAdded            int `json:"properties_added"`
	LeadsRespondedTo           int `json:"leads_responded_to"`
	AmendingPreviousProperties int `json:"amending_previous_properties"`
}

func (c DailyCounts) Validate() error {
	if c.PropertiesAdded < 0 {
		return validationFailed("properties_added", "must not be negative")
	}
	if c.LeadsRespondedTo < 0 {
		return validationFailed("leads_responded_to", "must not be negative")
	}
	if c.AmendingPreviousProperties < 0 {
		return validationFailed("amending_previous_properties", "must not be negative")
	}
	return nil
}

// DailyManualFields are entered by an operator and survive recalculation.
// The tasks_efficiency_* values are signed: negatives are point deductions.
type DailyManualFields struct {
	PreparingContract           int `json:"preparing_contract"`
	TasksEfficiencyDutyTime     int `json:"tasks_efficiency_duty_time"`
	TasksEfficiencyUniform      int `json:"tasks_efficiency_uniform"`
	TasksEfficiencyAfterDuty    int `json:"tasks_efficiency_after_duty"`
	LeadsRespondedOutOfDutyTime int `json:"leads_responded_out_of_duty_time"`
}

func (m DailyManualFields) Validate() error {
	if m.PreparingContract < 0 {
		return validationFailed("preparing_contract", "must not be negative")
	}
	if m.LeadsRespondedOutOfDutyTime < 0 {
		return validationFailed("leads_responded_out_of_duty_time", "must not be negative")
	}
	return nil
}

// DailyManualUpdate is a partial edit of the manual fields; nil means unchanged.
type DailyManualUpdate struct {
	PreparingContract           *int `json:"preparing_contract" validate:"omitempty,min=0"`
	TasksEfficiencyDutyTime     *int `json:"tasks_efficiency_duty_time"`
	TasksEfficiencyUniform      *int `json:"tasks_efficiency_uniform"`
	TasksEfficiencyAfterDuty    *int `json:"tasks_efficiency_after_duty"`
	LeadsRespondedOutOfDutyTime *int `json:"leads_responded_out_of_duty_time" validate:"omitempty,min=0"`
}

// DailyActivityReport is one row per (operations user, report date).
type DailyActivityReport struct {
	ID         int       `json:"id"`
	UserId     int       `json:"user_id"`
	ReportDate time.Time `json:"report_date"`
	DailyCounts
	DailyManualFields
}

// NewDailyActivityReport assembles a fresh report; manual fields start at zero.
func NewDailyActivityReport(userId int, date time.Time, counts DailyCounts) (DailyActivityReport, error) {
	if userId <= 0 {
		return DailyActivityReport{}, validationFailed("user_id", "is required")
	}
	if date.IsZero() {
		return DailyActivityReport{}, validationFailed("report_date", "is required")
	}
	if err := counts.Validate(); err != nil {
		return DailyActivityReport{}, err
	}
	return DailyActivityReport{
		UserId:      userId,
		ReportDate:  DateOnly(date),
		DailyCounts: counts,
	}, nil
}

// Recalculate replaces the calculated fields only; manual fields are carried forward.
func (r *DailyActivityReport) Recalculate(counts DailyCounts) error {
	if err := counts.Validate(); err != nil {
		return err
	}
	r.DailyCounts = counts
	return nil
}

func (r *DailyActivityReport) ResetManual() {
	r.DailyManualFields = DailyManualFields{}
}

// ApplyManual edits the manual fields. The record is unchanged when validation fails.
func (r *DailyActivityReport) ApplyManual(u DailyManualUpdate) error {
	next := r.DailyManualFields
	if u.PreparingContract != nil {
		next.PreparingContract = *u.PreparingContract
	}
	if u.TasksEfficiencyDutyTime != nil {
		next.TasksEfficiencyDutyTime = *u.TasksEfficiencyDutyTime
	}
	if u.TasksEfficiencyUniform != nil {
		next.TasksEfficiencyUniform = *u.TasksEfficiencyUniform
	}
	if u.TasksEfficiencyAfterDuty != nil {
		next.TasksEfficiencyAfterDuty = *u.TasksEfficiencyAfterDuty
	}
	if u.LeadsRespondedOutOfDutyTime != nil {
		next.LeadsRespondedOutOfDutyTime = *u.LeadsRespondedOutOfDutyTime
	}
	if err := next.Validate(); err != nil {
		return err
	}
	r.DailyManualFields = next
	return nil
}

// EffectiveLeadsResponded is derived on every read and never stored.
func (r DailyActivityReport) EffectiveLeadsResponded() int {
	n := r.LeadsRespondedTo - r.LeadsRespondedOutOfDutyTime
	if n < 0 {
		return 0
	}
	return n
}

func (r *DailyActivityReport) Validate() error {
	if r.UserId <= 0 {
		return validationFailed("user_id", "is required")
	}
	if r.ReportDate.IsZero() {
		return validationFailed("report_date", "is required")
	}
	if err := r.DailyCounts.Validate(); err != nil {
		return err
	}
	return r.DailyManualFields.Validate()
}

// MarshalJSON adds effective_leads_responded to the output.
func (r DailyActivityReport) MarshalJSON() ([]byte, error) {
	type plain DailyActivityReport
	return json.Marshal(struct {
		plain
		EffectiveLeadsResponded int `json:"effective_leads_responded"`
	}{
		plain:                   plain(r),
		EffectiveLeadsResponded: r.EffectiveLeadsResponded(),
	})
}
