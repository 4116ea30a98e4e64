package validate

import (
	"reflect"
	"testing"

	"github.com/certifyos/ts-automation/internal/tsops/ticket"
)

const (
	customerField    = "customfield_10485"
	requestTypeField = "customfield_10617"
	opsTeamField     = "customfield_10249"
)

type fakeGate struct {
	allowed bool
}

func (g fakeGate) IsAllowedReporter(email, name string) bool {
	return g.allowed
}

func eligibleTicket() *ticket.Ticket {
	return &ticket.Ticket{
		Key:        "TS-100",
		ProjectKey: "TS",
		IssueType:  ticket.SourceIssueType,
		Reporter:   &ticket.Reporter{Email: "jane@carelon.com", DisplayName: "Jane Doe"},
		CustomFields: map[string][]string{
			customerField:    {"Elevance - Carelon"},
			requestTypeField: {"General Request"},
			opsTeamField:     {"Operations Team"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name            string
		mutate          func(*ticket.Ticket)
		allowed         bool
		autoFill        bool
		expectedEligble bool
		expectedReasons []string
		expectedMissing []string
	}{
		{
			name:            "fully populated ticket passes",
			mutate:          func(tk *ticket.Ticket) {},
			allowed:         true,
			expectedEligble: true,
		},
		{
			name: "wrong project",
			mutate: func(tk *ticket.Ticket) {
				tk.ProjectKey = "OPS"
			},
			allowed:         true,
			expectedEligble: false,
			expectedReasons: []string{"Issue is not in TS project (found: OPS)"},
		},
		{
			name: "wrong issue type",
			mutate: func(tk *ticket.Ticket) {
				tk.IssueType = "Bug"
			},
			allowed:         true,
			expectedEligble: false,
			expectedReasons: []string{"Issue type must be 'Support Ticket' (found: 'Bug')"},
		},
		{
			name:            "reporter not approved",
			mutate:          func(tk *ticket.Ticket) {},
			allowed:         false,
			expectedEligble: false,
			expectedReasons: []string{"Reporter Jane Doe (jane@carelon.com) is not in the approved list"},
		},
		{
			name: "missing reporter still reaches the gate",
			mutate: func(tk *ticket.Ticket) {
				tk.Reporter = nil
			},
			allowed:         false,
			expectedEligble: false,
			expectedReasons: []string{"Reporter  () is not in the approved list"},
		},
		{
			name: "missing fields hard-fail without auto-fill",
			mutate: func(tk *ticket.Ticket) {
				tk.CustomFields = map[string][]string{}
			},
			allowed:         true,
			expectedEligble: false,
			expectedReasons: []string{
				"Customer field is required",
				"Type of Request field is required",
				"Ops Team Designation field is required",
			},
		},
		{
			name: "missing fields are non-blocking with auto-fill",
			mutate: func(tk *ticket.Ticket) {
				tk.CustomFields = map[string][]string{}
			},
			allowed:         true,
			autoFill:        true,
			expectedEligble: true,
			expectedMissing: []string{
				"Customer field",
				"Type of Request field",
				"Ops Team Designation field",
			},
		},
		{
			name: "single missing field is reported by display name",
			mutate: func(tk *ticket.Ticket) {
				delete(tk.CustomFields, requestTypeField)
			},
			allowed:         true,
			expectedEligble: false,
			expectedReasons: []string{"Type of Request field is required"},
		},
		{
			name: "multiple failures accumulate",
			mutate: func(tk *ticket.Ticket) {
				tk.ProjectKey = "OPS"
				tk.IssueType = "Bug"
			},
			allowed:         true,
			expectedEligble: false,
			expectedReasons: []string{
				"Issue is not in TS project (found: OPS)",
				"Issue type must be 'Support Ticket' (found: 'Bug')",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator("TS", customerField, requestTypeField, opsTeamField, fakeGate{allowed: tt.allowed})

			tk := eligibleTicket()
			tt.mutate(tk)

			result := v.Validate(tk, tt.autoFill)
			if result.Eligible != tt.expectedEligble {
				t.Fatalf("expected eligible=%t, got %t (reasons: %v)", tt.expectedEligble, result.Eligible, result.Reasons)
			}
			if !reflect.DeepEqual(result.Reasons, tt.expectedReasons) {
				t.Errorf("expected reasons %v, got %v", tt.expectedReasons, result.Reasons)
			}
			if !reflect.DeepEqual(result.MissingFields, tt.expectedMissing) {
				t.Errorf("expected missing fields %v, got %v", tt.expectedMissing, result.MissingFields)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	v := NewValidator("TS", customerField, requestTypeField, opsTeamField, fakeGate{allowed: true})

	clean := v.Validate(eligibleTicket(), false)
	if clean.Message() != "Validation passed - ready for transition" {
		t.Errorf("unexpected message: %q", clean.Message())
	}

	bare := eligibleTicket()
	bare.CustomFields = map[string][]string{}
	filled := v.Validate(bare, true)
	expected := "Validation passed - will auto-fill missing fields: Customer field, Type of Request field, Ops Team Designation field"
	if filled.Message() != expected {
		t.Errorf("unexpected message: %q", filled.Message())
	}
}
