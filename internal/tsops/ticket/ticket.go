package ticket

import (
	"fmt"
	"strings"
	"time"
)

const (
	// SourceIssueType is the issue type the automation picks tickets up as.
	SourceIssueType = "Support Ticket"
	// TargetIssueType is the issue type eligible tickets are transitioned to.
	TargetIssueType = "Operations Ticket"
)

// Reporter is an immutable snapshot of the person who filed a ticket.
type Reporter struct {
	Email       string
	DisplayName string
	Username    string
}

// Ticket is a snapshot of a Jira issue with the fields the automation
// cares about. Descriptions are already flattened to plain text.
type Ticket struct {
	Key         string
	ID          string
	ProjectKey  string
	IssueType   string
	Summary     string
	Description string
	Priority    string
	Reporter    *Reporter
	Labels      []string
	Created     time.Time

	// CustomFields maps a custom field ID to its display values. A
	// missing or empty slice means the field is unset.
	CustomFields map[string][]string
}

// FreeText returns the searchable text of the ticket, lowercased.
func (t *Ticket) FreeText() string {
	return strings.ToLower(t.Summary + " " + t.Description)
}

// FieldDisplayValue renders a custom field for human consumption.
func (t *Ticket) FieldDisplayValue(fieldID string) string {
	values := t.CustomFields[fieldID]
	if len(values) == 0 {
		return "Not Set"
	}
	return strings.Join(values, ", ")
}

// FieldValue is a planned value for a single custom field.
type FieldValue struct {
	Values []string
	// Multi indicates a multi-select field; single-select fields take
	// only the first value.
	Multi bool
}

// FieldUpdatePlan is the set of field writes to submit as one atomic
// update. It is either applied whole or not at all.
type FieldUpdatePlan struct {
	Values map[string]FieldValue
	// Labels is the full label set to write, nil to leave labels alone.
	Labels []string
}

// Empty reports whether the plan would change nothing.
func (p FieldUpdatePlan) Empty() bool {
	return len(p.Values) == 0 && p.Labels == nil
}

// EligibilityResult is the structured outcome of validating a ticket for
// transition.
type EligibilityResult struct {
	Eligible bool
	// Reasons holds blocking reasons, empty iff eligible.
	Reasons []string
	// MissingFields lists required fields that will be auto-filled; only
	// populated when auto-fill mode is active.
	MissingFields []string
}

// Message renders the result for human consumption.
func (r EligibilityResult) Message() string {
	if !r.Eligible {
		return strings.Join(r.Reasons, "; ")
	}
	if len(r.MissingFields) > 0 {
		return fmt.Sprintf("Validation passed - will auto-fill missing fields: %s", strings.Join(r.MissingFields, ", "))
	}
	return "Validation passed - ready for transition"
}

// TransitionOutcome records everything a single transition attempt did.
// Immutable once returned.
type TransitionOutcome struct {
	Success           bool      `json:"success"`
	IssueKey          string    `json:"issueKey"`
	Timestamp         time.Time `json:"timestamp"`
	ActionsTaken      []string  `json:"actionsTaken"`
	Errors            []string  `json:"errors"`
	Warnings          []string  `json:"warnings,omitempty"`
	OriginalIssueType string    `json:"originalIssueType"`
	NewIssueType      string    `json:"newIssueType"`
	IssueTypeChanged  bool      `json:"issueTypeChanged"`
	Project           string    `json:"project"`
}

// Transition is an available workflow transition on an issue.
type Transition struct {
	ID           string
	Name         string
	TargetStatus string
}

// IssueType is an issue type available within a project.
type IssueType struct {
	ID      string
	Name    string
	Subtask bool
}

// TaskSpec describes a follow-up task to create under a transitioned
// ticket. TypeID takes precedence over TypeName when both are set.
type TaskSpec struct {
	ProjectKey  string
	ParentKey   string
	TypeID      string
	TypeName    string
	Summary     string
	Description string
	Priority    string
	Labels      []string
}
