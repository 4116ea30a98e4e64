package registry

import (
	"sort"
	"strings"

	"github.com/certifyos/ts-automation/internal/tsops/ticket"
)

// Tables is the static mapping data the registry is built from. All
// comparisons are case-insensitive; keys may be given in any case.
type Tables struct {
	// EmailToCustomer maps exact reporter emails to customer labels
	EmailToCustomer map[string]string `yaml:"emailToCustomer"`
	// NameToCustomer maps exact display names or usernames to customer labels
	NameToCustomer map[string]string `yaml:"nameToCustomer"`
	// DomainToCustomer maps email domain suffixes to customer labels
	DomainToCustomer map[string]string `yaml:"domainToCustomer"`
	// AllowedReporters lists reporter emails and names whose tickets may
	// be transitioned
	AllowedReporters []string `yaml:"allowedReporters"`
	// AllowedDomains lists email domains whose reporters may have their
	// tickets transitioned
	AllowedDomains []string `yaml:"allowedDomains"`
}

// Registry resolves reporters to customer labels and answers whether a
// reporter is allowed to have tickets transitioned. It is pure: a static
// decision table is its only dependency.
type Registry struct {
	emailToCustomer map[string]string
	nameToCustomer  map[string]string
	domainSuffixes  []domainCustomer
	allowed         map[string]struct{}
	allowedDomains  []string
}

type domainCustomer struct {
	domain   string
	customer string
}

// New builds a registry from the given tables. Input casing is
// normalized once here so lookups are plain map hits.
func New(t Tables) *Registry {
	r := &Registry{
		emailToCustomer: make(map[string]string, len(t.EmailToCustomer)),
		nameToCustomer:  make(map[string]string, len(t.NameToCustomer)),
		allowed:         make(map[string]struct{}, len(t.AllowedReporters)),
	}

	for email, customer := range t.EmailToCustomer {
		r.emailToCustomer[strings.ToLower(email)] = customer
	}
	for name, customer := range t.NameToCustomer {
		r.nameToCustomer[strings.ToLower(name)] = customer
	}
	for domain, customer := range t.DomainToCustomer {
		r.domainSuffixes = append(r.domainSuffixes, domainCustomer{strings.ToLower(domain), customer})
	}
	// Deterministic domain matching order; by construction no email
	// domain maps to more than one customer.
	sort.Slice(r.domainSuffixes, func(i, j int) bool {
		return r.domainSuffixes[i].domain < r.domainSuffixes[j].domain
	})
	for _, reporter := range t.AllowedReporters {
		r.allowed[strings.ToLower(reporter)] = struct{}{}
	}
	for _, domain := range t.AllowedDomains {
		r.allowedDomains = append(r.allowedDomains, strings.ToLower(domain))
	}

	return r
}

// CustomerFor resolves a reporter to a customer label. The lookup layers
// are tried in order: exact email, exact display name or username, then
// email domain suffix. The first match wins.
func (r *Registry) CustomerFor(reporter ticket.Reporter) (string, bool) {
	email := strings.ToLower(reporter.Email)
	displayName := strings.ToLower(reporter.DisplayName)
	username := strings.ToLower(reporter.Username)

	if email != "" {
		if customer, ok := r.emailToCustomer[email]; ok {
			return customer, true
		}
	}

	if displayName != "" {
		if customer, ok := r.nameToCustomer[displayName]; ok {
			return customer, true
		}
	}
	if username != "" {
		if customer, ok := r.nameToCustomer[username]; ok {
			return customer, true
		}
	}

	if at := strings.LastIndex(email, "@"); at >= 0 {
		domain := email[at+1:]
		for _, dc := range r.domainSuffixes {
			if domain == dc.domain || strings.HasSuffix(domain, "."+dc.domain) {
				return dc.customer, true
			}
		}
	}

	return "", false
}

// IsAllowedReporter reports whether a reporter may have tickets
// transitioned at all. This is a separate concern from CustomerFor: a
// reporter can be allowed without a resolvable customer label.
func (r *Registry) IsAllowedReporter(email, name string) bool {
	if email != "" {
		if _, ok := r.allowed[strings.ToLower(email)]; ok {
			return true
		}
	}
	if name != "" {
		if _, ok := r.allowed[strings.ToLower(name)]; ok {
			return true
		}
	}

	if email != "" {
		lowered := strings.ToLower(email)
		for _, domain := range r.allowedDomains {
			if strings.HasSuffix(lowered, "@"+domain) {
				return true
			}
		}
	}

	return false
}
