package jira

import (
	"context"
	"fmt"
	"time"

	"github.com/andygrunwald/go-jira"

	"github.com/certifyos/ts-automation/internal/adf"
	"github.com/certifyos/ts-automation/internal/config"
	"github.com/certifyos/ts-automation/internal/tsops/ticket"
)

// Client wraps the go-jira client with the operations the automation
// needs, converting remote issues into ticket snapshots.
type Client struct {
	jiraClient   *jira.Client
	customFields []string
}

// NewClient creates a Jira client authenticated with the configured
// basic-auth credential pair.
func NewClient(cfg *config.Config) (*Client, error) {
	transport := jira.BasicAuthTransport{
		Username: cfg.JiraEmail,
		Password: cfg.JiraAPIToken,
	}

	jiraClient, err := jira.NewClient(transport.Client(), cfg.JiraURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}

	return &Client{
		jiraClient:   jiraClient,
		customFields: []string{cfg.CustomerFieldID, cfg.RequestTypeFieldID, cfg.OpsTeamFieldID},
	}, nil
}

// GetTicket fetches a single issue by key.
func (c *Client) GetTicket(ctx context.Context, key string) (*ticket.Ticket, error) {
	issue, _, err := c.jiraClient.Issue.GetWithContext(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue %s: %w", key, err)
	}

	return c.convertIssue(issue), nil
}

// SearchTickets executes a JQL query and returns the matching issues.
func (c *Client) SearchTickets(ctx context.Context, jql string, maxResults int) ([]ticket.Ticket, error) {
	options := &jira.SearchOptions{
		MaxResults: maxResults,
	}

	issues, _, err := c.jiraClient.Issue.SearchWithContext(ctx, jql, options)
	if err != nil {
		return nil, fmt.Errorf("failed to execute JQL query: %w", err)
	}

	result := make([]ticket.Ticket, 0, len(issues))
	for i := range issues {
		result = append(result, *c.convertIssue(&issues[i]))
	}

	return result, nil
}

// UpdateFields submits a field update plan as one atomic update.
func (c *Client) UpdateFields(ctx context.Context, key string, plan ticket.FieldUpdatePlan) error {
	fields := make(map[string]interface{})

	for fieldID, value := range plan.Values {
		if value.Multi {
			options := make([]map[string]string, 0, len(value.Values))
			for _, v := range value.Values {
				options = append(options, map[string]string{"value": v})
			}
			fields[fieldID] = options
		} else if len(value.Values) > 0 {
			fields[fieldID] = map[string]string{"value": value.Values[0]}
		}
	}
	if plan.Labels != nil {
		fields["labels"] = plan.Labels
	}

	if len(fields) == 0 {
		return nil
	}

	if _, err := c.jiraClient.Issue.UpdateIssueWithContext(ctx, key, map[string]interface{}{"fields": fields}); err != nil {
		return fmt.Errorf("failed to update fields for %s: %w", key, err)
	}

	return nil
}

// SetIssueType changes an issue's type via a direct field edit. Target
// systems with workflow restrictions may reject this; callers fall back
// per their strategy order.
func (c *Client) SetIssueType(ctx context.Context, key, typeID string) error {
	data := map[string]interface{}{
		"fields": map[string]interface{}{
			"issuetype": map[string]string{"id": typeID},
		},
	}

	if _, err := c.jiraClient.Issue.UpdateIssueWithContext(ctx, key, data); err != nil {
		return fmt.Errorf("failed to set issue type for %s: %w", key, err)
	}

	return nil
}

// AvailableTransitions lists the workflow transitions currently
// available on an issue.
func (c *Client) AvailableTransitions(ctx context.Context, key string) ([]ticket.Transition, error) {
	transitions, _, err := c.jiraClient.Issue.GetTransitionsWithContext(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get transitions for %s: %w", key, err)
	}

	result := make([]ticket.Transition, 0, len(transitions))
	for _, t := range transitions {
		result = append(result, ticket.Transition{
			ID:           t.ID,
			Name:         t.Name,
			TargetStatus: t.To.Name,
		})
	}

	return result, nil
}

// ExecuteTransition performs a workflow transition on an issue.
func (c *Client) ExecuteTransition(ctx context.Context, key, transitionID string) error {
	if _, err := c.jiraClient.Issue.DoTransitionWithContext(ctx, key, transitionID); err != nil {
		return fmt.Errorf("failed to execute transition %s on %s: %w", transitionID, key, err)
	}

	return nil
}

// ProjectIssueTypes returns the issue types available within a project.
func (c *Client) ProjectIssueTypes(ctx context.Context, projectKey string) ([]ticket.IssueType, error) {
	project, _, err := c.jiraClient.Project.GetWithContext(ctx, projectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", projectKey, err)
	}

	result := make([]ticket.IssueType, 0, len(project.IssueTypes))
	for _, t := range project.IssueTypes {
		result = append(result, ticket.IssueType{
			ID:      t.ID,
			Name:    t.Name,
			Subtask: t.Subtask,
		})
	}

	return result, nil
}

// CreateTask creates a follow-up task and returns its key.
func (c *Client) CreateTask(ctx context.Context, spec ticket.TaskSpec) (string, error) {
	fields := &jira.IssueFields{
		Project:     jira.Project{Key: spec.ProjectKey},
		Summary:     spec.Summary,
		Description: spec.Description,
		Labels:      spec.Labels,
	}
	if spec.ParentKey != "" {
		fields.Parent = &jira.Parent{Key: spec.ParentKey}
	}
	if spec.TypeID != "" {
		fields.Type = jira.IssueType{ID: spec.TypeID}
	} else {
		fields.Type = jira.IssueType{Name: spec.TypeName}
	}
	if spec.Priority != "" {
		fields.Priority = &jira.Priority{Name: spec.Priority}
	}

	created, _, err := c.jiraClient.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		return "", fmt.Errorf("failed to create task under %s: %w", spec.ParentKey, err)
	}

	return created.Key, nil
}

// AddComment posts a comment on an issue.
func (c *Client) AddComment(ctx context.Context, key, body string) error {
	if _, _, err := c.jiraClient.Issue.AddCommentWithContext(ctx, key, &jira.Comment{Body: body}); err != nil {
		return fmt.Errorf("failed to add comment to %s: %w", key, err)
	}

	return nil
}

// Self returns the display name and email of the authenticated user.
func (c *Client) Self(ctx context.Context) (string, string, error) {
	user, _, err := c.jiraClient.User.GetSelfWithContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to get current user: %w", err)
	}

	return user.DisplayName, user.EmailAddress, nil
}

// convertIssue converts a go-jira Issue to a ticket snapshot
func (c *Client) convertIssue(issue *jira.Issue) *ticket.Ticket {
	fields := issue.Fields

	t := &ticket.Ticket{
		Key:          issue.Key,
		ID:           issue.ID,
		ProjectKey:   fields.Project.Key,
		IssueType:    fields.Type.Name,
		Summary:      fields.Summary,
		Description:  flattenDescription(fields),
		Created:      time.Time(fields.Created),
		CustomFields: make(map[string][]string, len(c.customFields)),
	}

	if fields.Priority != nil {
		t.Priority = fields.Priority.Name
	}

	if fields.Reporter != nil {
		t.Reporter = &ticket.Reporter{
			Email:       fields.Reporter.EmailAddress,
			DisplayName: fields.Reporter.DisplayName,
			Username:    fields.Reporter.Name,
		}
	}

	t.Labels = make([]string, len(fields.Labels))
	copy(t.Labels, fields.Labels)

	for _, fieldID := range c.customFields {
		if raw, ok := fields.Unknowns[fieldID]; ok {
			if values := displayValues(raw); len(values) > 0 {
				t.CustomFields[fieldID] = values
			}
		}
	}

	return t
}

// flattenDescription handles both plain-string and rich-document
// descriptions.
func flattenDescription(fields *jira.IssueFields) string {
	if fields.Description != "" {
		return fields.Description
	}
	if raw, ok := fields.Unknowns["description"]; ok {
		return adf.Flatten(raw)
	}
	return ""
}

// displayValues extracts the display values of a custom field, which may
// be a single option, a list of options, or a bare scalar.
func displayValues(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []interface{}:
		var values []string
		for _, item := range v {
			values = append(values, displayValues(item)...)
		}
		return values
	case map[string]interface{}:
		if value, ok := v["value"].(string); ok {
			return []string{value}
		}
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}
