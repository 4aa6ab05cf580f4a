package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TicketStatus represents the upstream status identifier of a ticket
type TicketStatus int

const (
	TicketStatusOpen       TicketStatus = 1
	TicketStatusInProgress TicketStatus = 2
	TicketStatusPending    TicketStatus = 3
	TicketStatusClosed     TicketStatus = 4
	TicketStatusCancelled  TicketStatus = 5
)

// Valid reports whether the status is one of the known identifiers
func (s TicketStatus) Valid() bool {
	return s >= TicketStatusOpen && s <= TicketStatusCancelled
}

// Active reports whether the ticket is still being worked on
func (s TicketStatus) Active() bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress || s == TicketStatusPending
}

// Finished reports whether the ticket was closed or cancelled
func (s TicketStatus) Finished() bool {
	return s == TicketStatusClosed || s == TicketStatusCancelled
}

func (s TicketStatus) String() string {
	switch s {
	case TicketStatusOpen:
		return "open"
	case TicketStatusInProgress:
		return "in_progress"
	case TicketStatusPending:
		return "pending"
	case TicketStatusClosed:
		return "closed"
	case TicketStatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// PriorityLevel is the canonical ordering of ticket priorities
type PriorityLevel int

const (
	PriorityUnknown PriorityLevel = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityHighest
)

// TicketPriority is the priority label exactly as the upstream API delivers it.
// Labels are localized, so the level is resolved through priorityLabels.
type TicketPriority string

const (
	TicketPriorityLow     TicketPriority = "Baixa"
	TicketPriorityMedium  TicketPriority = "Média"
	TicketPriorityHigh    TicketPriority = "Alta"
	TicketPriorityHighest TicketPriority = "Altíssima"
)

var priorityLabels = map[string]PriorityLevel{
	"baixa":     PriorityLow,
	"média":     PriorityMedium,
	"media":     PriorityMedium,
	"alta":      PriorityHigh,
	"altíssima": PriorityHighest,
	"altissima": PriorityHighest,
	"low":       PriorityLow,
	"medium":    PriorityMedium,
	"high":      PriorityHigh,
	"highest":   PriorityHighest,
}

// Level resolves the canonical level of a priority label
func (p TicketPriority) Level() PriorityLevel {
	return priorityLabels[strings.ToLower(strings.TrimSpace(string(p)))]
}

// Urgent reports whether the priority is High or Highest
func (p TicketPriority) Urgent() bool {
	level := p.Level()
	return level == PriorityHigh || level == PriorityHighest
}

// SortPriorities orders labels by canonical level, unknown labels last and alphabetically.
func SortPriorities(priorities []TicketPriority) {
	sort.SliceStable(priorities, func(i, j int) bool {
		li, lj := priorities[i].Level(), priorities[j].Level()
		if li == PriorityUnknown || lj == PriorityUnknown {
			if li != lj {
				return lj == PriorityUnknown
			}
			return priorities[i] < priorities[j]
		}
		return li < lj
	})
}

// TicketID accepts both numeric and string identifiers from the upstream API
type TicketID string

func (id *TicketID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("ticketId is null")
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TicketID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = TicketID(n.String())
	return nil
}

// Ticket represents a raw ticket record fetched from the upstream tracker
type Ticket struct {
	ID          TicketID       `json:"ticketId"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"statusId"`
	OnTime      bool           `json:"onTime"`
	DateStart   time.Time      `json:"dateStart"`
	DateEnd     *time.Time     `json:"dateEnd,omitempty"`
	DateUpdated *time.Time     `json:"dateUpdated,omitempty"`
}

// ResolutionTime returns how long a closed ticket took to be resolved
func (t *Ticket) ResolutionTime() (time.Duration, bool) {
	if t.Status != TicketStatusClosed || t.DateUpdated == nil {
		return 0, false
	}
	return t.DateUpdated.Sub(t.DateStart), true
}

// ticketRecord mirrors the upstream JSON so missing fields can be told apart from zero values
type ticketRecord struct {
	TicketID    *TicketID `json:"ticketId"`
	Priority    *string   `json:"priority"`
	StatusID    *int      `json:"statusId"`
	OnTime      *bool     `json:"onTime"`
	DateStart   *string   `json:"dateStart"`
	DateEnd     *string   `json:"dateEnd"`
	DateUpdated *string   `json:"dateUpdated"`
}

// zone-less layouts are interpreted in the caller's location
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an upstream timestamp. Values carrying an offset keep it,
// zone-less values are interpreted in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// DecodeTickets parses the raw upstream dataset. Any missing or malformed required
// field, and any closed ticket updated before it started, fails the whole dataset.
func DecodeTickets(raw []byte, loc *time.Location) ([]Ticket, error) {
	var records []ticketRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &DataShapeError{Index: -1, Reason: err.Error()}
	}

	tickets := make([]Ticket, 0, len(records))
	for i, rec := range records {
		ticket, err := rec.toTicket(i, loc)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func (r ticketRecord) toTicket(index int, loc *time.Location) (Ticket, error) {
	fail := func(field, reason string) (Ticket, error) {
		return Ticket{}, &DataShapeError{Index: index, Field: field, Reason: reason}
	}

	if r.TicketID == nil || *r.TicketID == "" {
		return fail("ticketId", "missing")
	}
	if r.Priority == nil {
		return fail("priority", "missing")
	}
	if r.StatusID == nil {
		return fail("statusId", "missing")
	}
	status := TicketStatus(*r.StatusID)
	if !status.Valid() {
		return fail("statusId", fmt.Sprintf("unknown status %d", *r.StatusID))
	}
	if r.OnTime == nil {
		return fail("onTime", "missing")
	}
	if r.DateStart == nil {
		return fail("dateStart", "missing")
	}
	start, err := ParseTimestamp(*r.DateStart, loc)
	if err != nil {
		return fail("dateStart", err.Error())
	}

	ticket := Ticket{
		ID:        *r.TicketID,
		Priority:  TicketPriority(*r.Priority),
		Status:    status,
		OnTime:    *r.OnTime,
		DateStart: start,
	}

	if r.DateEnd != nil && *r.DateEnd != "" {
		end, err := ParseTimestamp(*r.DateEnd, loc)
		if err != nil {
			return fail("dateEnd", err.Error())
		}
		ticket.DateEnd = &end
	}

	if r.DateUpdated != nil && *r.DateUpdated != "" {
		updated, err := ParseTimestamp(*r.DateUpdated, loc)
		if err != nil {
			return fail("dateUpdated", err.Error())
		}
		ticket.DateUpdated = &updated
	}

	if status == TicketStatusClosed {
		if ticket.DateUpdated == nil {
			return fail("dateUpdated", "required for closed tickets")
		}
		if ticket.DateUpdated.Before(start) {
			return fail("dateUpdated", "before dateStart on a closed ticket")
		}
	}

	return ticket, nil
}

// Snapshot is one fetched copy of the upstream dataset. It is never modified
// after creation; a refetch produces a new Snapshot.
type Snapshot struct {
	Raw       json.RawMessage
	FetchedAt time.Time
}

// NewSnapshot creates a snapshot from a fetched payload
func NewSnapshot(raw []byte, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		Raw:       json.RawMessage(raw),
		FetchedAt: fetchedAt,
	}
}

// Age returns how old the snapshot is relative to now
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Tickets decodes the snapshot payload
func (s *Snapshot) Tickets(loc *time.Location) ([]Ticket, error) {
	return DecodeTickets(s.Raw, loc)
}
