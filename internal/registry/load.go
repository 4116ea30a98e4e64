package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/certifyos/ts-automation/internal/config"
)

const (
	registryFileName = "registry.yaml"
)

// Load builds a registry from the built-in defaults merged with the
// optional override file in the user config directory. A missing file
// just means no overrides.
func Load() (*Registry, error) {
	tables := Defaults()

	registryPath := filepath.Join(config.MustConfigDir(), registryFileName)

	data, err := os.ReadFile(registryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return New(tables), nil
		}
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var overrides Tables
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	tables.merge(overrides)
	return New(tables), nil
}

// merge layers override entries on top of the receiver. Overrides win on
// key collisions; list entries are appended.
func (t *Tables) merge(overrides Tables) {
	for email, customer := range overrides.EmailToCustomer {
		t.EmailToCustomer[email] = customer
	}
	for name, customer := range overrides.NameToCustomer {
		t.NameToCustomer[name] = customer
	}
	for domain, customer := range overrides.DomainToCustomer {
		t.DomainToCustomer[domain] = customer
	}
	t.AllowedReporters = append(t.AllowedReporters, overrides.AllowedReporters...)
	t.AllowedDomains = append(t.AllowedDomains, overrides.AllowedDomains...)
}
