package domain

import (
	"math"
	"time"
)

// Analysis is the aggregate report computed for one request. It is derived
// fresh every time and never persisted.
type Analysis struct {
	TotalUrgentTickets     int              `json:"total_urgent_tickets"`
	TotalSolvedTickets     int              `json:"total_solved_tickets"`
	LateTicketsData        LateTickets      `json:"late_tickets_data"`
	OnTimeTicketsData      OnTimeTickets    `json:"on_time_tickets_data"`
	ResolutionAverageSpeed *ResolutionSpeed `json:"ticket_resolution_average_speed"`
	Chart                  *ChartFragment   `json:"chart"`
}

// LateTickets counts tickets that missed their SLA while still active.
// PercentageLate is nil when there are no tickets at all.
type LateTickets struct {
	LateTickets    int      `json:"late_tickets"`
	PercentageLate *float64 `json:"percentage_late"`
}

// OnTimeTickets counts closed tickets that met their SLA
type OnTimeTickets struct {
	SolvedTicketsOnTime    int      `json:"solved_tickets_on_time"`
	PercentageSolvedOnTime *float64 `json:"percentage_solved_on_time"`
}

// ResolutionSpeed is a duration split into whole days, hours and minutes
type ResolutionSpeed struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// ResolutionSpeedFromSeconds truncates a non-negative number of seconds into
// days, hours (0-23) and minutes (0-59).
func ResolutionSpeedFromSeconds(seconds float64) ResolutionSpeed {
	if seconds <= 0 || math.IsNaN(seconds) {
		return ResolutionSpeed{}
	}
	total := int64(seconds)
	return ResolutionSpeed{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
	}
}

// TotalMinutes reconstructs the duration in minutes
func (r ResolutionSpeed) TotalMinutes() int64 {
	return int64(r.Days)*1440 + int64(r.Hours)*60 + int64(r.Minutes)
}

// Duration converts back to a time.Duration, truncated to the minute
func (r ResolutionSpeed) Duration() time.Duration {
	return time.Duration(r.TotalMinutes()) * time.Minute
}

// ChartFragment is embeddable chart markup plus the scripts it depends on
type ChartFragment struct {
	HTML    string   `json:"html"`
	Scripts []string `json:"scripts"`
}

// Percentage returns part/whole*100, or nil when whole is zero
func Percentage(part, whole int) *float64 {
	if whole <= 0 {
		return nil
	}
	p := float64(part) / float64(whole) * 100
	return &p
}

// ClampWindow applies the minimum lookback window of one day
func ClampWindow(days int) int {
	if days < 1 {
		return 1
	}
	return days
}
