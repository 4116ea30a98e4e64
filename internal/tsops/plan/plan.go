package plan

import (
	"strings"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/certifyos/ts-automation/internal/tsops/ticket"
)

const (
	// LabelAutomation marks tickets touched by this automation
	LabelAutomation = "ts-automation"
	// LabelTransitioned marks tickets transitioned to the operations workflow
	LabelTransitioned = "transitioned-to-ops"
	// LabelAutoFilled marks tickets whose required fields were auto-filled
	LabelAutoFilled = "auto-filled-fields"
	// LabelCredentialing marks credentialing-related tickets
	LabelCredentialing = "credentialing"

	defaultCustomer    = "General Support"
	defaultRequestType = "General Request"
	defaultOpsTeam     = "Operations Team"

	credentialingRequestType = "Provider Data Update"
	credentialingOpsTeam     = "Credentialing"

	credentialingSender = "credentialing.updates@premera.com"
)

// credentialingKeywords classify a ticket as credentialing-related when
// any of them appears in its free text.
var credentialingKeywords = []string{"credentialing", "credential", "provider data"}

// knownCredentialingTickets are hard-coded exceptions that classify as
// credentialing regardless of content.
var knownCredentialingTickets = sets.New[string]("TS-24130")

// DomainCustomer maps an email domain to the customer label auto-fill
// assigns for it. Order matters: the first substring match wins.
type DomainCustomer struct {
	Domain   string
	Customer string
}

// DefaultCustomerDomains returns the production domain table for
// customer auto-fill.
func DefaultCustomerDomains() []DomainCustomer {
	return []DomainCustomer{
		{"carelon.com", "Elevance - Carelon"},
		{"fchn.com", "FCHN"},
		{"firstchoicehealth.com", "FCHN"},
		{"findheadway.com", "Headway"},
		{"headway.com", "Headway"},
		{"scanhealthplan.com", "SCAN"},
		{"scan.com", "SCAN"},
		{"hsc.utah.edu", "University of Utah Health Plan"},
		{"utah.edu", "University of Utah Health Plan"},
		{"premera.com", "Premera"},
	}
}

// Planner decides which fields are missing on a ticket and what values
// to assign them. It never overwrites an already-present value.
type Planner struct {
	customerFieldID    string
	requestTypeFieldID string
	opsTeamFieldID     string
	customerDomains    []DomainCustomer
}

// NewPlanner builds a planner for the given custom field IDs and domain
// table.
func NewPlanner(customerFieldID, requestTypeFieldID, opsTeamFieldID string, customerDomains []DomainCustomer) *Planner {
	return &Planner{
		customerFieldID:    customerFieldID,
		requestTypeFieldID: requestTypeFieldID,
		opsTeamFieldID:     opsTeamFieldID,
		customerDomains:    customerDomains,
	}
}

// IsCredentialingText reports whether free text mentions credentialing
// work. The input is matched case-insensitively.
func IsCredentialingText(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range credentialingKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// isCredentialingEmail reports whether a reporter email signals the
// credentialing team.
func isCredentialingEmail(email string) bool {
	return strings.Contains(email, "credentialing") ||
		strings.Contains(email, "premera.com") ||
		email == credentialingSender
}

// Plan computes the field update plan for a ticket. Tracking labels are
// always planned; field values only when autoFill is enabled, and only
// for fields that are missing or empty.
func (p *Planner) Plan(t *ticket.Ticket, autoFill bool) ticket.FieldUpdatePlan {
	labels := sets.New[string](t.Labels...).Insert(LabelAutomation, LabelTransitioned)
	if autoFill {
		labels.Insert(LabelAutoFilled)
	}

	credentialingTicket := IsCredentialingText(t.Summary+" "+t.Description) ||
		knownCredentialingTickets.Has(t.Key)

	var reporterEmail string
	if t.Reporter != nil {
		reporterEmail = strings.ToLower(t.Reporter.Email)
	}

	if reporterEmail != "" && (isCredentialingEmail(reporterEmail) || credentialingTicket) {
		labels.Insert(LabelCredentialing)
	}

	result := ticket.FieldUpdatePlan{
		Values: make(map[string]ticket.FieldValue),
		Labels: sets.List(labels),
	}

	if !autoFill {
		return result
	}

	if len(t.CustomFields[p.customerFieldID]) == 0 {
		customer, domain := p.customerForEmail(reporterEmail)
		if customer != "" {
			result.Values[p.customerFieldID] = ticket.FieldValue{Values: []string{customer}, Multi: true}
			logrus.Infof("Auto-filled Customer field with '%s' based on email domain '%s'", customer, domain)
		} else {
			result.Values[p.customerFieldID] = ticket.FieldValue{Values: []string{defaultCustomer}, Multi: true}
			logrus.Infof("Auto-filled Customer field with default value: %s", defaultCustomer)
		}
	}

	if len(t.CustomFields[p.requestTypeFieldID]) == 0 {
		if credentialingTicket {
			result.Values[p.requestTypeFieldID] = ticket.FieldValue{Values: []string{credentialingRequestType}}
			logrus.Infof("Auto-filled Type of Request field with: %s (credentialing detected)", credentialingRequestType)
		} else {
			result.Values[p.requestTypeFieldID] = ticket.FieldValue{Values: []string{defaultRequestType}}
			logrus.Infof("Auto-filled Type of Request field with default value: %s", defaultRequestType)
		}
	}

	if len(t.CustomFields[p.opsTeamFieldID]) == 0 {
		if credentialingTicket || isCredentialingEmail(reporterEmail) {
			result.Values[p.opsTeamFieldID] = ticket.FieldValue{Values: []string{credentialingOpsTeam}}
			logrus.Infof("Detected credentialing ticket %s - setting Ops Team Designation to '%s'", t.Key, credentialingOpsTeam)
			if isCredentialingEmail(reporterEmail) {
				logrus.Infof("  - Credentialing detection based on reporter email: %s", reporterEmail)
			}
			if IsCredentialingText(t.Summary + " " + t.Description) {
				logrus.Info("  - Credentialing detection based on keywords in summary/description")
			}
			if knownCredentialingTickets.Has(t.Key) {
				logrus.Infof("  - Special case handling for known credentialing ticket: %s", t.Key)
			}
		} else {
			result.Values[p.opsTeamFieldID] = ticket.FieldValue{Values: []string{defaultOpsTeam}}
			logrus.Infof("Auto-filled Ops Team Designation field with default value: %s", defaultOpsTeam)
		}
	}

	return result
}

// customerForEmail resolves the auto-fill customer label from the
// reporter's email. The first domain table entry contained in the email
// wins.
func (p *Planner) customerForEmail(email string) (customer, domain string) {
	if email == "" {
		return "", ""
	}
	for _, dc := range p.customerDomains {
		if strings.Contains(email, dc.Domain) {
			return dc.Customer, dc.Domain
		}
	}
	return "", ""
}
