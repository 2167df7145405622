package usage

import (
	"fmt"
	"sort"
	"time"
)

// AlertType identifies what an alert is about.
type AlertType string

const (
	AlertMonthlyBudget AlertType = "monthly_budget"
	AlertDailyLimit    AlertType = "daily_limit"
	AlertErrorRate     AlertType = "error_rate"
)

// Severity is how urgent an alert is.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is an evaluation outcome, not persisted state.
type Alert struct {
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	MetricValue float64   `json:"metric_value"`
}

// Thresholds are the alerting tunables. Zero-valued fields fall back to
// the defaults at evaluation time.
type Thresholds struct {
	MonthlyCriticalPct float64 `yaml:"monthly_critical_pct" koanf:"monthly_critical_pct"`
	MonthlyWarningPct  float64 `yaml:"monthly_warning_pct" koanf:"monthly_warning_pct"`
	ErrorRatePct       float64 `yaml:"error_rate_pct" koanf:"error_rate_pct"`
	ErrorWindow        int     `yaml:"error_window" koanf:"error_window"`
	ErrorMinSample     int     `yaml:"error_min_sample" koanf:"error_min_sample"`
}

// DefaultThresholds returns the standard alerting thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MonthlyCriticalPct: 90,
		MonthlyWarningPct:  75,
		ErrorRatePct:       20,
		ErrorWindow:        50,
		ErrorMinSample:     10,
	}
}

// Settings carries the per-organization alert configuration.
type Settings struct {
	MonthlyBudgetCents float64    `yaml:"monthly_budget_cents" koanf:"monthly_budget_cents"`
	DailyLimitCents    float64    `yaml:"daily_limit_cents" koanf:"daily_limit_cents"`
	AlertsEnabled      bool       `yaml:"alerts_enabled" koanf:"alerts_enabled"`
	Thresholds         Thresholds `yaml:"thresholds" koanf:"thresholds"`
}

// EvaluateAlerts computes budget and error-rate alerts from ledger entries.
// Pure: the current time is a parameter, not read from the clock.
func EvaluateAlerts(entries []Entry, settings Settings, now time.Time) []Alert {
	if !settings.AlertsEnabled {
		return nil
	}

	th := settings.Thresholds
	defaults := DefaultThresholds()
	if th.MonthlyCriticalPct == 0 {
		th.MonthlyCriticalPct = defaults.MonthlyCriticalPct
	}
	if th.MonthlyWarningPct == 0 {
		th.MonthlyWarningPct = defaults.MonthlyWarningPct
	}
	if th.ErrorRatePct == 0 {
		th.ErrorRatePct = defaults.ErrorRatePct
	}
	if th.ErrorWindow == 0 {
		th.ErrorWindow = defaults.ErrorWindow
	}
	if th.ErrorMinSample == 0 {
		th.ErrorMinSample = defaults.ErrorMinSample
	}

	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var monthCost, dayCost float64
	for _, e := range entries {
		ts := e.Timestamp.UTC()
		if ts.After(now) || ts.Before(monthStart) {
			continue
		}
		monthCost += e.CostCents
		if !ts.Before(dayStart) {
			dayCost += e.CostCents
		}
	}

	var alerts []Alert

	// Monthly budget: only the higher severity fires.
	if settings.MonthlyBudgetCents > 0 {
		pct := monthCost / settings.MonthlyBudgetCents * 100
		switch {
		case pct >= th.MonthlyCriticalPct:
			alerts = append(alerts, Alert{
				Type:     AlertMonthlyBudget,
				Severity: SeverityCritical,
				Message: fmt.Sprintf("month-to-date spend $%.2f is %.0f%% of the $%.2f monthly budget",
					monthCost/100, pct, settings.MonthlyBudgetCents/100),
				MetricValue: monthCost,
			})
		case pct >= th.MonthlyWarningPct:
			alerts = append(alerts, Alert{
				Type:     AlertMonthlyBudget,
				Severity: SeverityWarning,
				Message: fmt.Sprintf("month-to-date spend $%.2f is %.0f%% of the $%.2f monthly budget",
					monthCost/100, pct, settings.MonthlyBudgetCents/100),
				MetricValue: monthCost,
			})
		}
	}

	if settings.DailyLimitCents > 0 && dayCost >= settings.DailyLimitCents {
		alerts = append(alerts, Alert{
			Type:     AlertDailyLimit,
			Severity: SeverityCritical,
			Message: fmt.Sprintf("today's spend $%.2f has reached the $%.2f daily limit",
				dayCost/100, settings.DailyLimitCents/100),
			MetricValue: dayCost,
		})
	}

	if alert, ok := errorRateAlert(entries, th); ok {
		alerts = append(alerts, alert)
	}

	return alerts
}

// errorRateAlert checks the non-success fraction over the most recent
// window of entries.
func errorRateAlert(entries []Entry, th Thresholds) (Alert, bool) {
	if len(entries) < th.ErrorMinSample {
		return Alert{}, false
	}

	recent := make([]Entry, len(entries))
	copy(recent, entries)
	sort.Slice(recent, func(i, j int) bool { return recent[i].Timestamp.After(recent[j].Timestamp) })
	if len(recent) > th.ErrorWindow {
		recent = recent[:th.ErrorWindow]
	}

	errors := 0
	for _, e := range recent {
		if e.Status != StatusSuccess {
			errors++
		}
	}

	pct := float64(errors) / float64(len(recent)) * 100
	if pct < th.ErrorRatePct {
		return Alert{}, false
	}

	return Alert{
		Type:     AlertErrorRate,
		Severity: SeverityWarning,
		Message: fmt.Sprintf("%d of the last %d provider calls failed (%.0f%%)",
			errors, len(recent), pct),
		MetricValue: pct,
	}, true
}
