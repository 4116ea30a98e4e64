package ticket

import "testing"

func TestFieldDisplayValue(t *testing.T) {
	tk := &Ticket{
		CustomFields: map[string][]string{
			"customfield_10485": {"Elevance - Carelon", "SCAN"},
			"customfield_10617": {},
		},
	}

	tests := []struct {
		name     string
		fieldID  string
		expected string
	}{
		{name: "multiple values joined", fieldID: "customfield_10485", expected: "Elevance - Carelon, SCAN"},
		{name: "empty slice is not set", fieldID: "customfield_10617", expected: "Not Set"},
		{name: "unknown field is not set", fieldID: "customfield_10249", expected: "Not Set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tk.FieldDisplayValue(tt.fieldID); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFreeText(t *testing.T) {
	tk := &Ticket{Summary: "Credentialing Request", Description: "Provider DATA update"}
	if got := tk.FreeText(); got != "credentialing request provider data update" {
		t.Errorf("unexpected free text: %q", got)
	}
}

func TestFieldUpdatePlanEmpty(t *testing.T) {
	tests := []struct {
		name     string
		plan     FieldUpdatePlan
		expected bool
	}{
		{name: "zero plan", plan: FieldUpdatePlan{}, expected: true},
		{name: "empty but allocated values", plan: FieldUpdatePlan{Values: map[string]FieldValue{}}, expected: true},
		{
			name:     "planned value",
			plan:     FieldUpdatePlan{Values: map[string]FieldValue{"customfield_10485": {Values: []string{"SCAN"}}}},
			expected: false,
		},
		{name: "label write", plan: FieldUpdatePlan{Labels: []string{"ts-automation"}}, expected: false},
		{name: "explicit empty label set", plan: FieldUpdatePlan{Labels: []string{}}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.Empty(); got != tt.expected {
				t.Errorf("expected %t, got %t", tt.expected, got)
			}
		})
	}
}

func TestEligibilityMessage(t *testing.T) {
	tests := []struct {
		name     string
		result   EligibilityResult
		expected string
	}{
		{
			name:     "eligible with nothing missing",
			result:   EligibilityResult{Eligible: true},
			expected: "Validation passed - ready for transition",
		},
		{
			name:     "eligible with fields to fill",
			result:   EligibilityResult{Eligible: true, MissingFields: []string{"Customer field", "Ops Team Designation field"}},
			expected: "Validation passed - will auto-fill missing fields: Customer field, Ops Team Designation field",
		},
		{
			name:     "ineligible joins reasons",
			result:   EligibilityResult{Reasons: []string{"Issue is not in TS project (found: OPS)", "Customer field is required"}},
			expected: "Issue is not in TS project (found: OPS); Customer field is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Message(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
