package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/certifyos/ts-automation/internal/tsops/ticket"
)

// ErrNotConfigured is returned when no webhook URL is configured; the
// caller skips notification silently.
var ErrNotConfigured = errors.New("no webhook URL configured")

// Message is the webhook payload.
type Message struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a color-coded block of named fields.
type Attachment struct {
	Color  string  `json:"color"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
	Footer string  `json:"footer"`
	TS     int64   `json:"ts"`
}

// Field is a single named value within an attachment.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Notifier pushes structured transition summaries to a Slack-compatible
// webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	now        func() time.Time
}

// New creates a notifier. An empty webhook URL yields a notifier whose
// sends return ErrNotConfigured.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
}

// NotifyTransition pushes a summary of a transition outcome.
func (n *Notifier) NotifyTransition(ctx context.Context, t *ticket.Ticket, outcome *ticket.TransitionOutcome, customerDisplay, requestTypeDisplay string) error {
	if n.webhookURL == "" {
		return ErrNotConfigured
	}

	status := "FAILED: Transition unsuccessful"
	color := "danger"
	titleVerb := "Failed"
	if outcome.Success {
		status = "SUCCESS: Transitioned"
		color = "good"
		titleVerb = "Completed"
	}

	typeChange := "No change (may require manual intervention)"
	if outcome.IssueTypeChanged {
		typeChange = fmt.Sprintf("%s → %s", outcome.OriginalIssueType, outcome.NewIssueType)
	}

	var reporter string
	if t.Reporter != nil {
		reporter = fmt.Sprintf("%s\n%s", t.Reporter.DisplayName, t.Reporter.Email)
	}

	fields := []Field{
		{Title: "Status", Value: status, Short: true},
		{Title: "Project", Value: outcome.Project, Short: true},
		{Title: "Reporter", Value: reporter, Short: true},
		{Title: "Issue Type Change", Value: typeChange, Short: true},
		{Title: "Customer", Value: customerDisplay, Short: true},
		{Title: "Type of Request", Value: requestTypeDisplay, Short: true},
		{Title: "Actions Taken", Value: joinBullets(outcome.ActionsTaken), Short: false},
	}

	if len(outcome.Warnings) > 0 {
		fields = append(fields, Field{Title: "Warnings", Value: joinBullets(outcome.Warnings), Short: false})
	}
	if len(outcome.Errors) > 0 {
		fields = append(fields, Field{Title: "Errors", Value: joinBullets(outcome.Errors), Short: false})
	}

	message := Message{
		Text: fmt.Sprintf("TS Automation: Ticket %s Transition %s", outcome.IssueKey, titleVerb),
		Attachments: []Attachment{{
			Color:  color,
			Title:  fmt.Sprintf("%s: %s", outcome.IssueKey, t.Summary),
			Fields: fields,
			Footer: "TS Automation System",
			TS:     n.now().Unix(),
		}},
	}

	return n.post(ctx, message)
}

// NotifyTest pushes a configuration test message.
func (n *Notifier) NotifyTest(ctx context.Context) error {
	if n.webhookURL == "" {
		return ErrNotConfigured
	}

	message := Message{
		Text: "TS Automation Configuration Test",
		Attachments: []Attachment{{
			Color: "good",
			Title: "Configuration Test Successful",
			Fields: []Field{
				{Title: "Status", Value: "All systems operational", Short: true},
			},
			Footer: "TS Automation System",
			TS:     n.now().Unix(),
		}},
	}

	return n.post(ctx, message)
}

func (n *Notifier) post(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook message: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := n.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to post webhook message: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", response.StatusCode)
	}

	return nil
}

func joinBullets(items []string) string {
	var buf bytes.Buffer
	for i, item := range items {
		if i > 0 {
			buf.WriteString("\n• ")
		}
		buf.WriteString(item)
	}
	return buf.String()
}
