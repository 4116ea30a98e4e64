package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the automation needs to talk to Jira and
// Slack. All values come from the environment; an optional .env file in
// the working directory is loaded first.
type Config struct {
	JiraURL      string
	JiraEmail    string
	JiraAPIToken string

	SlackWebhookURL string

	ProjectKey string

	// Custom field IDs for the three required fields.
	CustomerFieldID    string
	RequestTypeFieldID string
	OpsTeamFieldID     string

	DisableAuditComments bool
}

// Load reads configuration from the environment. Missing credentials are
// a fatal configuration error: no partial operation is attempted.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	c := &Config{
		JiraURL:              os.Getenv("JIRA_URL"),
		JiraEmail:            os.Getenv("JIRA_EMAIL"),
		JiraAPIToken:         os.Getenv("JIRA_API_TOKEN"),
		SlackWebhookURL:      os.Getenv("SLACK_WEBHOOK_URL"),
		ProjectKey:           envOr("PROJECT_KEY", "TS"),
		CustomerFieldID:      envOr("CUSTOMER_FIELD_ID", "customfield_10485"),
		RequestTypeFieldID:   envOr("REQUEST_TYPE_FIELD_ID", "customfield_10617"),
		OpsTeamFieldID:       envOr("OPS_TEAM_FIELD_ID", "customfield_10249"),
		DisableAuditComments: envBool("TS_DISABLE_AUDIT_COMMENTS"),
	}

	if c.JiraURL == "" || c.JiraEmail == "" || c.JiraAPIToken == "" {
		return nil, fmt.Errorf("missing required environment variables: JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN")
	}

	return c, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
