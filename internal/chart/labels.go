package chart

import (
	"fmt"
	"strings"
)

// Labels holds the user-facing chart text for one locale
type Labels struct {
	Title     string
	LastDays  string // formatted with the window in days
	Yesterday string
	YAxis     string
	Legend    string
}

var (
	EnglishLabels = Labels{
		Title:     "Tickets created per day, by priority",
		LastDays:  "Last %d days",
		Yesterday: "Yesterday",
		YAxis:     "Open tickets",
		Legend:    "Priority",
	}

	PortugueseLabels = Labels{
		Title:     "Histórico de tickets criados, por prioridade",
		LastDays:  "Últimos %d dias",
		Yesterday: "Ontem",
		YAxis:     "Tickets abertos",
		Legend:    "Prioridade",
	}
)

// LabelsFor returns the labels for a locale tag, defaulting to English
func LabelsFor(locale string) Labels {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")) {
	case "pt", "pt-br":
		return PortugueseLabels
	default:
		return EnglishLabels
	}
}

// XAxis returns the x axis title for a lookback window
func (l Labels) XAxis(windowDays int) string {
	if windowDays == 1 {
		return l.Yesterday
	}
	return fmt.Sprintf(l.LastDays, windowDays)
}
