package transition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/certifyos/ts-automation/internal/config"
	"github.com/certifyos/ts-automation/internal/tsops/notify"
	"github.com/certifyos/ts-automation/internal/tsops/plan"
	"github.com/certifyos/ts-automation/internal/tsops/ticket"
	"github.com/certifyos/ts-automation/internal/tsops/validate"
)

// JiraClient is the remote surface the orchestrator drives.
type JiraClient interface {
	GetTicket(ctx context.Context, key string) (*ticket.Ticket, error)
	UpdateFields(ctx context.Context, key string, plan ticket.FieldUpdatePlan) error
	SetIssueType(ctx context.Context, key, typeID string) error
	AvailableTransitions(ctx context.Context, key string) ([]ticket.Transition, error)
	ExecuteTransition(ctx context.Context, key, transitionID string) error
	ProjectIssueTypes(ctx context.Context, projectKey string) ([]ticket.IssueType, error)
	CreateTask(ctx context.Context, spec ticket.TaskSpec) (string, error)
	AddComment(ctx context.Context, key, body string) error
}

// Notifier pushes transition summaries to the configured endpoint.
type Notifier interface {
	NotifyTransition(ctx context.Context, t *ticket.Ticket, outcome *ticket.TransitionOutcome, customerDisplay, requestTypeDisplay string) error
}

// Options control a single transition attempt.
type Options struct {
	DryRun         bool
	AutoFill       bool
	SkipTypeChange bool
}

// Orchestrator sequences the multi-step transition workflow: validate,
// update fields, change issue type, create a follow-up task, annotate,
// notify. Only validation failure is fatal; later steps degrade to
// warnings.
type Orchestrator struct {
	client    JiraClient
	validator *validate.Validator
	planner   *plan.Planner
	notifier  Notifier

	projectKey           string
	customerFieldID      string
	requestTypeFieldID   string
	opsTeamFieldID       string
	disableAuditComments bool
	automationUser       string

	now func() time.Time
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(client JiraClient, validator *validate.Validator, planner *plan.Planner, notifier Notifier, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		client:               client,
		validator:            validator,
		planner:              planner,
		notifier:             notifier,
		projectKey:           cfg.ProjectKey,
		customerFieldID:      cfg.CustomerFieldID,
		requestTypeFieldID:   cfg.RequestTypeFieldID,
		opsTeamFieldID:       cfg.OpsTeamFieldID,
		disableAuditComments: cfg.DisableAuditComments,
		automationUser:       cfg.JiraEmail,
		now:                  time.Now,
	}
}

// Transition runs the whole workflow for one ticket and reports every
// action, warning and error it produced. It never returns an error: the
// outcome carries failure.
func (o *Orchestrator) Transition(ctx context.Context, key string, opts Options) *ticket.TransitionOutcome {
	outcome := &ticket.TransitionOutcome{
		IssueKey:     key,
		Timestamp:    o.now(),
		ActionsTaken: []string{},
		Errors:       []string{},
		Project:      o.projectKey,
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("Error during transition: %v", r))
			outcome.Success = false
			logrus.Errorf("Transition failed for %s: %v", key, r)
		}
	}()

	logrus.Infof("Starting transition process for %s", key)

	t, err := o.client.GetTicket(ctx, key)
	if err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("Validation failed: Issue %s not found: %v", key, err))
		return outcome
	}

	validation := o.validator.Validate(t, opts.AutoFill)
	if !validation.Eligible {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("Validation failed: %s", validation.Message()))
		return outcome
	}
	outcome.ActionsTaken = append(outcome.ActionsTaken, fmt.Sprintf("Validation passed: %s", validation.Message()))

	if opts.DryRun {
		outcome.Success = true
		outcome.ActionsTaken = append(outcome.ActionsTaken, "Dry run completed - no actual changes made")
		return outcome
	}

	// Past validation, only an unexpected error can flip this back.
	outcome.Success = true
	outcome.OriginalIssueType = t.IssueType
	outcome.NewIssueType = t.IssueType

	updatePlan := o.planner.Plan(t, opts.AutoFill)
	if !updatePlan.Empty() {
		if err := o.client.UpdateFields(ctx, key, updatePlan); err != nil {
			logrus.WithError(err).Warnf("Field update failed for %s", key)
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("Field update failed: %v", err))
		} else {
			outcome.ActionsTaken = append(outcome.ActionsTaken, "Updated OPS-specific fields")
			if opts.AutoFill {
				outcome.ActionsTaken = append(outcome.ActionsTaken, "Auto-filled missing required fields")
			}
		}
	}

	if opts.SkipTypeChange {
		logrus.Infof("Skipping issue type change for %s as requested", key)
		outcome.ActionsTaken = append(outcome.ActionsTaken, "Issue type change skipped (--skip-issue-type-change flag)")
		outcome.Warnings = append(outcome.Warnings, "Issue type change was skipped - manual change is required")
	} else if err := o.changeIssueType(ctx, t); err != nil {
		logrus.WithError(err).Warnf("Issue type transition failed for %s", key)
		outcome.ActionsTaken = append(outcome.ActionsTaken, "Issue type transition failed - manual change may be required")
		outcome.Warnings = append(outcome.Warnings, "Could not automatically change issue type - workflow restrictions may apply")
	} else {
		outcome.ActionsTaken = append(outcome.ActionsTaken, fmt.Sprintf("Transitioned from %s to %s", ticket.SourceIssueType, ticket.TargetIssueType))
		outcome.NewIssueType = ticket.TargetIssueType
		outcome.IssueTypeChanged = true
	}

	if subtaskKey, err := o.createFollowUpTask(ctx, t, updatePlan); err != nil {
		logrus.WithError(err).Warnf("Could not create follow-up task for %s", key)
		outcome.Warnings = append(outcome.Warnings, "Could not create process documentation subtask - may need manual creation")
	} else {
		outcome.ActionsTaken = append(outcome.ActionsTaken, fmt.Sprintf("Created process documentation subtask: %s", subtaskKey))
	}

	if o.disableAuditComments {
		logrus.Info("Audit comments disabled - skipping comment addition")
	} else if err := o.client.AddComment(ctx, key, o.auditComment(outcome)); err != nil {
		logrus.WithError(err).Warnf("Failed to add audit comment to %s", key)
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("Failed to add audit trail comment: %v", err))
	} else {
		outcome.ActionsTaken = append(outcome.ActionsTaken, "Added audit trail comment")
	}

	customerDisplay := displayAfterPlan(t, updatePlan, o.customerFieldID)
	requestTypeDisplay := displayAfterPlan(t, updatePlan, o.requestTypeFieldID)
	switch err := o.notifier.NotifyTransition(ctx, t, outcome, customerDisplay, requestTypeDisplay); {
	case errors.Is(err, notify.ErrNotConfigured):
		logrus.Info("No Slack webhook URL configured - skipping notification")
	case err != nil:
		logrus.WithError(err).Warnf("Failed to send Slack notification for %s", key)
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("Failed to send Slack notification: %v", err))
	default:
		outcome.ActionsTaken = append(outcome.ActionsTaken, "Sent Slack notification")
	}

	logrus.Infof("Finished transition process for %s (success=%t)", key, outcome.Success)
	return outcome
}

// transitionNameHints select workflow transitions that look like they
// change the issue type. Substring matching on names is fragile against
// workflow renames.
var transitionNameHints = []string{"operations", "ops", "convert", "change type"}

type typeChangeStrategy struct {
	name string
	run  func(ctx context.Context, t *ticket.Ticket) error
}

// changeIssueType tries each type change strategy in order; the first
// success short-circuits.
func (o *Orchestrator) changeIssueType(ctx context.Context, t *ticket.Ticket) error {
	strategies := []typeChangeStrategy{
		{name: "workflow transition", run: o.viaWorkflowTransition},
		{name: "direct field edit", run: o.viaDirectEdit},
	}

	var failures []string
	for _, strategy := range strategies {
		if err := strategy.run(ctx, t); err != nil {
			logrus.Warnf("Issue type change via %s failed for %s: %v", strategy.name, t.Key, err)
			failures = append(failures, fmt.Sprintf("%s: %v", strategy.name, err))
			continue
		}
		logrus.Infof("Changed issue type for %s via %s", t.Key, strategy.name)
		return nil
	}

	return fmt.Errorf("all issue type change strategies failed: %s", strings.Join(failures, "; "))
}

func (o *Orchestrator) viaWorkflowTransition(ctx context.Context, t *ticket.Ticket) error {
	transitions, err := o.client.AvailableTransitions(ctx, t.Key)
	if err != nil {
		return err
	}

	for _, tr := range transitions {
		if !matchesTransitionHint(tr) {
			continue
		}
		logrus.Infof("Found potential transition: %s (ID: %s)", tr.Name, tr.ID)
		return o.client.ExecuteTransition(ctx, t.Key, tr.ID)
	}

	return fmt.Errorf("no suitable workflow transition found")
}

func matchesTransitionHint(tr ticket.Transition) bool {
	name := strings.ToLower(tr.Name)
	target := strings.ToLower(tr.TargetStatus)
	for _, hint := range transitionNameHints {
		if strings.Contains(name, hint) || strings.Contains(target, hint) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) viaDirectEdit(ctx context.Context, t *ticket.Ticket) error {
	types, err := o.client.ProjectIssueTypes(ctx, t.ProjectKey)
	if err != nil {
		return err
	}

	for _, issueType := range types {
		if issueType.Name == ticket.TargetIssueType {
			return o.client.SetIssueType(ctx, t.Key, issueType.ID)
		}
	}

	return fmt.Errorf("issue type '%s' not found in project %s", ticket.TargetIssueType, t.ProjectKey)
}

// createFollowUpTask creates the process documentation task, preferring
// a resolved Task/Sub-task type ID and falling back to a simplified
// creation by type name.
func (o *Orchestrator) createFollowUpTask(ctx context.Context, t *ticket.Ticket, applied ticket.FieldUpdatePlan) (string, error) {
	priority := t.Priority
	if priority == "" {
		priority = "Medium"
	}

	full := ticket.TaskSpec{
		ProjectKey:  o.projectKey,
		ParentKey:   t.Key,
		Summary:     fmt.Sprintf("Document Next Process Steps - %s", t.Key),
		Description: o.taskDescription(t, applied),
		Priority:    priority,
		Labels:      []string{"process-documentation", "ops-transition", plan.LabelAutomation},
	}
	if typeID, err := o.resolveTaskTypeID(ctx); err != nil {
		logrus.Warnf("No Task issue type ID found, using name instead: %v", err)
		full.TypeName = "Task"
	} else {
		full.TypeID = typeID
	}

	simplified := ticket.TaskSpec{
		ProjectKey:  o.projectKey,
		ParentKey:   t.Key,
		TypeName:    "Task",
		Summary:     full.Summary,
		Description: "Process documentation for operations ticket.",
	}

	var failures []string
	for _, attempt := range []struct {
		name string
		spec ticket.TaskSpec
	}{
		{name: "full", spec: full},
		{name: "simplified", spec: simplified},
	} {
		key, err := o.client.CreateTask(ctx, attempt.spec)
		if err != nil {
			logrus.Warnf("%s subtask creation failed for %s: %v", attempt.name, t.Key, err)
			failures = append(failures, fmt.Sprintf("%s: %v", attempt.name, err))
			continue
		}
		logrus.Infof("Successfully created subtask %s for %s", key, t.Key)
		return key, nil
	}

	return "", fmt.Errorf("all subtask creation attempts failed: %s", strings.Join(failures, "; "))
}

func (o *Orchestrator) resolveTaskTypeID(ctx context.Context) (string, error) {
	types, err := o.client.ProjectIssueTypes(ctx, o.projectKey)
	if err != nil {
		return "", err
	}

	for _, issueType := range types {
		if issueType.Name == "Task" || issueType.Name == "Sub-task" {
			return issueType.ID, nil
		}
	}

	return "", fmt.Errorf("no Task or Sub-task issue type in project %s", o.projectKey)
}

func (o *Orchestrator) taskDescription(t *ticket.Ticket, applied ticket.FieldUpdatePlan) string {
	return fmt.Sprintf(`Please document the specific next process steps for this operations ticket.

*Original Ticket Details:*
• Key: %s
• Summary: %s
• Priority: %s
• Customer: %s
• Type of Request: %s
• Ops Team Designation: %s

*Required Actions:*
1. Review the operations ticket requirements
2. Document specific next process steps
3. Set appropriate timeline and expectations
4. Update customer communication if needed
5. Coordinate with relevant teams if required

*Automation Details:*
- Transitioned by: TS Automation System
- Transition Time: %s
- Automated by: %s
`,
		t.Key,
		valueOr(t.Summary, "N/A"),
		valueOr(t.Priority, "Unknown"),
		displayAfterPlan(t, applied, o.customerFieldID),
		displayAfterPlan(t, applied, o.requestTypeFieldID),
		displayAfterPlan(t, applied, o.opsTeamFieldID),
		o.now().Format(time.RFC3339),
		o.automationUser,
	)
}

func (o *Orchestrator) auditComment(outcome *ticket.TransitionOutcome) string {
	var warnings string
	if len(outcome.Warnings) > 0 {
		warnings = fmt.Sprintf("*Warnings:*\n• %s\n\n", strings.Join(outcome.Warnings, "\n• "))
	}
	var errs string
	if len(outcome.Errors) > 0 {
		errs = fmt.Sprintf("*Errors:*\n• %s\n\n", strings.Join(outcome.Errors, "\n• "))
	}

	return fmt.Sprintf(`*Automated Transition Completed*

This ticket has been automatically transitioned from %s to %s by the TS Automation System.

*Transition Details:*
• Timestamp: %s
• Success: %s
• Issue Type Changed: %s

*Actions Taken:*
• %s

%s%s*Next Steps:*
Please review the process documentation subtask and update as needed for your specific workflow requirements.

---
*Automated by:* %s
*System:* TS Automation`,
		ticket.SourceIssueType, ticket.TargetIssueType,
		outcome.Timestamp.Format(time.RFC3339),
		yesNo(outcome.Success),
		yesNo(outcome.IssueTypeChanged),
		strings.Join(outcome.ActionsTaken, "\n• "),
		warnings,
		errs,
		o.automationUser,
	)
}

// displayAfterPlan renders a field's value as it stands after the plan
// was applied.
func displayAfterPlan(t *ticket.Ticket, applied ticket.FieldUpdatePlan, fieldID string) string {
	if value, ok := applied.Values[fieldID]; ok && len(value.Values) > 0 {
		return strings.Join(value.Values, ", ")
	}
	return t.FieldDisplayValue(fieldID)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
