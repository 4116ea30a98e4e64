package jira

import (
	"context"
	"reflect"
	"testing"

	"github.com/andygrunwald/go-jira"
	"github.com/trivago/tgo/tcontainer"

	"github.com/certifyos/ts-automation/internal/tsops/ticket"
)

const (
	customerField    = "customfield_10485"
	requestTypeField = "customfield_10617"
	opsTeamField     = "customfield_10249"
)

func testClient(t *testing.T) *Client {
	t.Helper()

	jiraClient, err := jira.NewClient(nil, "https://example.atlassian.net")
	if err != nil {
		t.Fatal(err)
	}
	return &Client{
		jiraClient:   jiraClient,
		customFields: []string{customerField, requestTypeField, opsTeamField},
	}
}

func TestConvertIssue(t *testing.T) {
	c := testClient(t)

	issue := &jira.Issue{
		Key: "TS-100",
		ID:  "10001",
		Fields: &jira.IssueFields{
			Project:     jira.Project{Key: "TS"},
			Type:        jira.IssueType{Name: "Support Ticket"},
			Summary:     "Roster update needed",
			Description: "please update the roster",
			Priority:    &jira.Priority{Name: "High"},
			Reporter: &jira.User{
				EmailAddress: "jane@carelon.com",
				DisplayName:  "Jane Doe",
				Name:         "jdoe",
			},
			Labels: []string{"inbound"},
			Unknowns: tcontainer.MarshalMap{
				customerField: []interface{}{
					map[string]interface{}{"value": "Elevance - Carelon", "id": "12345"},
				},
				requestTypeField: map[string]interface{}{"value": "General Request"},
			},
		},
	}

	converted := c.convertIssue(issue)

	if converted.Key != "TS-100" || converted.ID != "10001" {
		t.Errorf("unexpected identity: %s/%s", converted.Key, converted.ID)
	}
	if converted.ProjectKey != "TS" || converted.IssueType != "Support Ticket" {
		t.Errorf("unexpected project/type: %s/%s", converted.ProjectKey, converted.IssueType)
	}
	if converted.Description != "please update the roster" {
		t.Errorf("unexpected description: %q", converted.Description)
	}
	if converted.Priority != "High" {
		t.Errorf("unexpected priority: %q", converted.Priority)
	}
	if converted.Reporter == nil || converted.Reporter.Email != "jane@carelon.com" ||
		converted.Reporter.DisplayName != "Jane Doe" || converted.Reporter.Username != "jdoe" {
		t.Errorf("unexpected reporter: %+v", converted.Reporter)
	}
	if !reflect.DeepEqual(converted.Labels, []string{"inbound"}) {
		t.Errorf("unexpected labels: %v", converted.Labels)
	}
	if !reflect.DeepEqual(converted.CustomFields[customerField], []string{"Elevance - Carelon"}) {
		t.Errorf("unexpected customer values: %v", converted.CustomFields[customerField])
	}
	if !reflect.DeepEqual(converted.CustomFields[requestTypeField], []string{"General Request"}) {
		t.Errorf("unexpected request type values: %v", converted.CustomFields[requestTypeField])
	}
	if _, ok := converted.CustomFields[opsTeamField]; ok {
		t.Errorf("expected unset field to stay absent, got %v", converted.CustomFields[opsTeamField])
	}
}

func TestConvertIssueWithoutOptionalFields(t *testing.T) {
	c := testClient(t)

	issue := &jira.Issue{
		Key: "TS-101",
		Fields: &jira.IssueFields{
			Project: jira.Project{Key: "TS"},
			Type:    jira.IssueType{Name: "Support Ticket"},
			Summary: "bare minimum",
		},
	}

	converted := c.convertIssue(issue)
	if converted.Reporter != nil {
		t.Errorf("expected nil reporter, got %+v", converted.Reporter)
	}
	if converted.Priority != "" {
		t.Errorf("expected empty priority, got %q", converted.Priority)
	}
	if len(converted.CustomFields) != 0 {
		t.Errorf("expected no custom fields, got %v", converted.CustomFields)
	}
}

func TestFlattenDescriptionPrefersPlainText(t *testing.T) {
	fields := &jira.IssueFields{
		Description: "plain text wins",
		Unknowns: tcontainer.MarshalMap{
			"description": map[string]interface{}{"type": "text", "text": "ignored"},
		},
	}
	if got := flattenDescription(fields); got != "plain text wins" {
		t.Errorf("unexpected description: %q", got)
	}
}

func TestFlattenDescriptionFallsBackToRichDocument(t *testing.T) {
	fields := &jira.IssueFields{
		Unknowns: tcontainer.MarshalMap{
			"description": map[string]interface{}{
				"type": "doc",
				"content": []interface{}{
					map[string]interface{}{
						"type": "paragraph",
						"content": []interface{}{
							map[string]interface{}{"type": "text", "text": "from the document"},
						},
					},
				},
			},
		},
	}
	if got := flattenDescription(fields); got != "from the document" {
		t.Errorf("unexpected description: %q", got)
	}
}

func TestDisplayValues(t *testing.T) {
	tests := []struct {
		name     string
		raw      interface{}
		expected []string
	}{
		{name: "nil", raw: nil, expected: nil},
		{name: "option object", raw: map[string]interface{}{"value": "SCAN"}, expected: []string{"SCAN"}},
		{
			name: "option list",
			raw: []interface{}{
				map[string]interface{}{"value": "SCAN"},
				map[string]interface{}{"value": "Premera"},
			},
			expected: []string{"SCAN", "Premera"},
		},
		{name: "bare string", raw: "free text", expected: []string{"free text"}},
		{name: "empty string", raw: "", expected: nil},
		{name: "object without value key", raw: map[string]interface{}{"id": "12345"}, expected: nil},
		{name: "scalar", raw: 42.0, expected: []string{"42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayValues(tt.raw); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestUpdateFieldsNoOpOnEmptyPlan(t *testing.T) {
	// An empty plan must not hit the wire.
	c := testClient(t)
	if err := c.UpdateFields(context.Background(), "TS-100", ticket.FieldUpdatePlan{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
