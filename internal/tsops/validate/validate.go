package validate

import (
	"fmt"

	"github.com/certifyos/ts-automation/internal/tsops/ticket"
)

// ReporterGate answers whether a reporter may have tickets transitioned.
type ReporterGate interface {
	IsAllowedReporter(email, name string) bool
}

// Validator decides whether a ticket may be transitioned into the
// operations workflow.
type Validator struct {
	projectKey         string
	customerFieldID    string
	requestTypeFieldID string
	opsTeamFieldID     string
	gate               ReporterGate
}

// NewValidator builds a validator for the configured target project and
// required fields.
func NewValidator(projectKey, customerFieldID, requestTypeFieldID, opsTeamFieldID string, gate ReporterGate) *Validator {
	return &Validator{
		projectKey:         projectKey,
		customerFieldID:    customerFieldID,
		requestTypeFieldID: requestTypeFieldID,
		opsTeamFieldID:     opsTeamFieldID,
		gate:               gate,
	}
}

// Validate checks a ticket against the transition requirements. Missing
// required fields hard-fail unless autoFill is enabled, in which case
// they are recorded as non-blocking missing fields.
func (v *Validator) Validate(t *ticket.Ticket, autoFill bool) ticket.EligibilityResult {
	var reasons []string
	var missingFields []string

	if t.ProjectKey != v.projectKey {
		reasons = append(reasons, fmt.Sprintf("Issue is not in %s project (found: %s)", v.projectKey, t.ProjectKey))
	}

	if t.IssueType != ticket.SourceIssueType {
		reasons = append(reasons, fmt.Sprintf("Issue type must be '%s' (found: '%s')", ticket.SourceIssueType, t.IssueType))
	}

	var reporterEmail, reporterName string
	if t.Reporter != nil {
		reporterEmail = t.Reporter.Email
		reporterName = t.Reporter.DisplayName
	}
	if !v.gate.IsAllowedReporter(reporterEmail, reporterName) {
		reasons = append(reasons, fmt.Sprintf("Reporter %s (%s) is not in the approved list", reporterName, reporterEmail))
	}

	requiredFields := []struct {
		fieldID string
		display string
	}{
		{v.customerFieldID, "Customer field"},
		{v.requestTypeFieldID, "Type of Request field"},
		{v.opsTeamFieldID, "Ops Team Designation field"},
	}

	for _, field := range requiredFields {
		if len(t.CustomFields[field.fieldID]) > 0 {
			continue
		}
		if autoFill {
			missingFields = append(missingFields, field.display)
		} else {
			reasons = append(reasons, fmt.Sprintf("%s is required", field.display))
		}
	}

	return ticket.EligibilityResult{
		Eligible:      len(reasons) == 0,
		Reasons:       reasons,
		MissingFields: missingFields,
	}
}
