package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/certifyos/ts-automation/internal/registry"
	"github.com/certifyos/ts-automation/internal/tsops/storage"
	"github.com/certifyos/ts-automation/internal/tsops/ticket"
)

const (
	// maxScanResults caps a single scan pass.
	maxScanResults = 50

	// backupLookBack is how far a backup scan rewinds the checkpoint.
	backupLookBack = 24 * time.Hour

	// jiraTimeLayout is the timestamp format JQL accepts.
	jiraTimeLayout = "2006-01-02 15:04"
)

// excludedRequestTypes are known-noisy request types the scan ignores.
var excludedRequestTypes = []string{
	"Outreach Inbox Emailed request (TS)",
	"Credentialing Inbox Emailed request (TS)",
}

// JiraClient is the remote surface the scanner drives.
type JiraClient interface {
	SearchTickets(ctx context.Context, jql string, maxResults int) ([]ticket.Ticket, error)
	UpdateFields(ctx context.Context, key string, plan ticket.FieldUpdatePlan) error
}

// Scanner polls for newly created tickets and fills their customer field
// from the reporter identity, persisting progress in a ledger.
type Scanner struct {
	client          JiraClient
	store           *storage.Store
	registry        *registry.Registry
	projectKey      string
	customerFieldID string

	now func() time.Time
}

// NewScanner wires a scanner from its collaborators.
func NewScanner(client JiraClient, store *storage.Store, reg *registry.Registry, projectKey, customerFieldID string) *Scanner {
	return &Scanner{
		client:          client,
		store:           store,
		registry:        reg,
		projectKey:      projectKey,
		customerFieldID: customerFieldID,
		now:             time.Now,
	}
}

// Summary reports what a single scan pass did.
type Summary struct {
	Found   int
	Updated int
	Skipped int
}

// ScanOnce runs a single scan pass: query tickets created since the
// checkpoint, process each in order, then advance the checkpoint and
// persist the ledger.
func (s *Scanner) ScanOnce(ctx context.Context) (*Summary, error) {
	ledger, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	since := ledger.LastRunTimestamp
	logrus.Infof("Looking for tickets created since: %s", since.Format(jiraTimeLayout))

	tickets, err := s.client.SearchTickets(ctx, s.scanJQL(since), maxScanResults)
	if err != nil {
		// The checkpoint does not advance on a failed search; the next
		// pass retries the same window.
		return nil, fmt.Errorf("failed to search for new tickets: %w", err)
	}

	summary := &Summary{Found: len(tickets)}
	logrus.Infof("Found %d newly created tickets", len(tickets))

	for i := range tickets {
		t := &tickets[i]

		if ledger.IsProcessed(t.Key) {
			logrus.Infof("%s: already processed - skipping", t.Key)
			summary.Skipped++
			continue
		}

		if t.Reporter == nil {
			logrus.Infof("%s: no reporter - skipping", t.Key)
			ledger.MarkProcessed(t.Key)
			summary.Skipped++
			continue
		}

		customer, ok := s.registry.CustomerFor(*t.Reporter)
		if !ok {
			logrus.Infof("%s: no customer mapping for: %s", t.Key, reporterLabel(t.Reporter))
			ledger.MarkProcessed(t.Key)
			summary.Skipped++
			continue
		}

		existing := t.CustomFields[s.customerFieldID]
		if contains(existing, customer) {
			logrus.Infof("%s: already has customer: %s", t.Key, customer)
			ledger.MarkProcessed(t.Key)
			summary.Skipped++
			continue
		}

		logrus.Infof("%s: setting customer: %s", t.Key, customer)

		update := ticket.FieldUpdatePlan{
			Values: map[string]ticket.FieldValue{
				s.customerFieldID: {Values: append(append([]string{}, existing...), customer), Multi: true},
			},
		}
		if err := s.client.UpdateFields(ctx, t.Key, update); err != nil {
			// Not ledgered: eligible for retry on the next scan.
			logrus.WithError(err).Errorf("%s: could not update customer field", t.Key)
			continue
		}

		ledger.MarkProcessed(t.Key)
		summary.Updated++
	}

	ledger.LastRunTimestamp = s.now()
	ledger.Trim()
	if err := s.store.Save(ledger); err != nil {
		return summary, fmt.Errorf("failed to save ledger: %w", err)
	}

	logrus.Infof("Scan summary: %d updated, %d skipped", summary.Updated, summary.Skipped)
	return summary, nil
}

// RunContinuous repeats ScanOnce with a fixed delay between iterations.
func (s *Scanner) RunContinuous(ctx context.Context, iterations int, interval time.Duration) error {
	logrus.Infof("Starting continuous customer field automation: %d iterations, %s interval", iterations, interval)

	for i := 0; i < iterations; i++ {
		logrus.Infof("Cycle %d/%d", i+1, iterations)

		if _, err := s.ScanOnce(ctx); err != nil {
			logrus.WithError(err).Error("Scan pass failed")
		}

		if i == iterations-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	logrus.Info("Continuous monitoring completed")
	return nil
}

// BackupScan rewinds the checkpoint before scanning, to catch anything
// missed during downtime.
func (s *Scanner) BackupScan(ctx context.Context) (*Summary, error) {
	logrus.Info("Backup scan: checking for any missed tickets from last 24 hours")

	ledger, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	ledger.LastRunTimestamp = s.now().Add(-backupLookBack)
	if err := s.store.Save(ledger); err != nil {
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	return s.ScanOnce(ctx)
}

// Status returns the current ledger state.
func (s *Scanner) Status() (*storage.Ledger, error) {
	return s.store.Load()
}

// Reset deletes all persisted scan state.
func (s *Scanner) Reset() error {
	return s.store.Delete()
}

func (s *Scanner) scanJQL(since time.Time) string {
	return fmt.Sprintf(`project = %s AND assignee is EMPTY AND resolution = Unresolved AND status != Done AND "issuetype" = %q AND "Request Type" NOT IN (%q,%q) AND created >= %q ORDER BY created DESC`,
		s.projectKey,
		ticket.SourceIssueType,
		excludedRequestTypes[0],
		excludedRequestTypes[1],
		since.Format(jiraTimeLayout),
	)
}

func reporterLabel(r *ticket.Reporter) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Email
}

func contains(values []string, needle string) bool {
	for _, value := range values {
		if value == needle {
			return true
		}
	}
	return false
}
