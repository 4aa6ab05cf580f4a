package analysis

import (
	"fmt"
	"strings"
)

// Policy selects between the variants of the aggregation rules
type Policy struct {
	Name string

	// SolvedInWindow restricts solved tickets to those started within the lookback window
	SolvedInWindow bool

	// LateOpenOnly counts only Open tickets as late, instead of every active status
	LateOpenOnly bool

	// OnTimeOverTotal divides solved-on-time by all tickets instead of solved tickets
	OnTimeOverTotal bool
}

var (
	// DefaultPolicy counts all closed tickets as solved and late across all active statuses
	DefaultPolicy = Policy{Name: "default"}

	// LegacyPolicy reproduces the simpler reporting rules
	LegacyPolicy = Policy{
		Name:            "legacy",
		SolvedInWindow:  true,
		LateOpenOnly:    true,
		OnTimeOverTotal: true,
	}
)

// PolicyByName resolves a configured policy name
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DefaultPolicy.Name:
		return DefaultPolicy, nil
	case LegacyPolicy.Name:
		return LegacyPolicy, nil
	default:
		return Policy{}, fmt.Errorf("unknown statistics policy %q", name)
	}
}
