package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/certifyos/ts-automation/internal/config"
	"github.com/certifyos/ts-automation/internal/registry"
	"github.com/certifyos/ts-automation/internal/tsops/jira"
	"github.com/certifyos/ts-automation/internal/tsops/notify"
	"github.com/certifyos/ts-automation/internal/tsops/plan"
	"github.com/certifyos/ts-automation/internal/tsops/scan"
	"github.com/certifyos/ts-automation/internal/tsops/storage"
	"github.com/certifyos/ts-automation/internal/tsops/transition"
	"github.com/certifyos/ts-automation/internal/tsops/validate"
)

var (
	dryRun         bool
	autoFill       bool
	skipTypeChange bool

	iterations int
	interval   time.Duration

	stateFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ts-automation",
		Short: "Automate triage of TS support tickets in Jira",
		Long: `TS Automation transitions eligible support tickets into the operations
workflow and keeps their customer field in sync with the reporter identity.

Configuration comes from the environment (JIRA_URL, JIRA_EMAIL,
JIRA_API_TOKEN and friends); an optional .env file in the working
directory is loaded first.`,
	}

	rootCmd.AddCommand(
		newTransitionCmd(),
		newCustomerFieldsCmd(),
		newTestConfigCmd(),
	)

	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}

func newTransitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transition <issue-key>",
		Short: "Transition a support ticket to an operations ticket",
		Long: `Validate a support ticket, fill its operations fields, change its issue
type, create a process documentation subtask, and record an audit trail.
The structured outcome is printed as JSON; the command exits non-zero
when the transition fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only, do not execute")
	cmd.Flags().BoolVar(&autoFill, "auto-fill", false, "Automatically fill missing required fields with defaults")
	cmd.Flags().BoolVar(&skipTypeChange, "skip-issue-type-change", false, "Skip issue type change (useful for workflow restrictions)")

	return cmd
}

func newCustomerFieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer-fields",
		Short: "Keep the customer field of new tickets in sync with their reporter",
	}

	cmd.PersistentFlags().StringVar(&stateFile, "state-file", "", "Path to the scan state file (defaults to the user data directory)")

	processCmd := &cobra.Command{
		Use:   "process",
		Short: "Process new tickets once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := createScanner()
			if err != nil {
				return err
			}
			_, err = scanner.ScanOnce(cmd.Context())
			return err
		},
	}

	continuousCmd := &cobra.Command{
		Use:   "continuous",
		Short: "Run continuous monitoring with a fixed delay between passes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := createScanner()
			if err != nil {
				return err
			}
			return scanner.RunContinuous(cmd.Context(), iterations, interval)
		},
	}
	continuousCmd.Flags().IntVar(&iterations, "iterations", 60, "Number of scan passes to run")
	continuousCmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Delay between scan passes")

	backupScanCmd := &cobra.Command{
		Use:   "backup-scan",
		Short: "Scan the last 24 hours for missed tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := createScanner()
			if err != nil {
				return err
			}
			_, err = scanner.BackupScan(cmd.Context())
			return err
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show current automation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all stored scan state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := createScanner()
			if err != nil {
				return err
			}
			if err := scanner.Reset(); err != nil {
				return err
			}
			fmt.Println("Reset complete. Run 'customer-fields process' to restart.")
			return nil
		},
	}

	cmd.AddCommand(processCmd, continuousCmd, backupScanCmd, statusCmd, resetCmd)
	return cmd
}

func newTestConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-config",
		Short: "Verify Jira connectivity, project access, and the Slack webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestConfig(cmd.Context())
		},
	}
}

func runTransition(ctx context.Context, issueKey string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reg, err := registry.Load()
	if err != nil {
		return fmt.Errorf("cannot load customer registry: %w", err)
	}

	client, err := jira.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("cannot create Jira client: %w", err)
	}

	orchestrator := transition.NewOrchestrator(
		client,
		validate.NewValidator(cfg.ProjectKey, cfg.CustomerFieldID, cfg.RequestTypeFieldID, cfg.OpsTeamFieldID, reg),
		plan.NewPlanner(cfg.CustomerFieldID, cfg.RequestTypeFieldID, cfg.OpsTeamFieldID, plan.DefaultCustomerDomains()),
		notify.New(cfg.SlackWebhookURL),
		cfg,
	)

	outcome := orchestrator.Transition(ctx, issueKey, transition.Options{
		DryRun:         dryRun,
		AutoFill:       autoFill,
		SkipTypeChange: skipTypeChange,
	})

	rendered, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot render outcome: %w", err)
	}
	fmt.Println(string(rendered))

	if !outcome.Success {
		return fmt.Errorf("failed to process %s", issueKey)
	}

	fmt.Printf("\nSuccessfully processed %s\n", issueKey)
	if dryRun {
		fmt.Println("  (Dry run - no actual changes made)")
	}
	if autoFill {
		fmt.Println("  (Auto-fill enabled - missing fields populated with defaults)")
	}
	if skipTypeChange {
		fmt.Println("  (Issue type change was skipped - manual change required)")
	}
	return nil
}

func createScanner() (*scan.Scanner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	reg, err := registry.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load customer registry: %w", err)
	}

	client, err := jira.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot create Jira client: %w", err)
	}

	store, err := createStore()
	if err != nil {
		return nil, err
	}

	return scan.NewScanner(client, store, reg, cfg.ProjectKey, cfg.CustomerFieldID), nil
}

func createStore() (*storage.Store, error) {
	path := stateFile
	if path == "" {
		var err error
		path, err = storage.DefaultStatePath()
		if err != nil {
			return nil, fmt.Errorf("cannot determine state file path: %w", err)
		}
	}
	return storage.NewStore(path), nil
}

func runStatus() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := createStore()
	if err != nil {
		return err
	}

	ledger, err := store.Load()
	if err != nil {
		return err
	}

	fmt.Println("Automation status:")
	fmt.Printf("  Last run:          %s\n", ledger.LastRunTimestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Processed tickets: %d\n", len(ledger.ProcessedTicketKeys))
	fmt.Printf("  State file:        %s\n", store.Path())
	fmt.Printf("  Project:           %s\n", cfg.ProjectKey)
	fmt.Printf("  Customer field:    %s\n", cfg.CustomerFieldID)
	return nil
}

func runTestConfig(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := jira.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("cannot create Jira client: %w", err)
	}

	logrus.Info("Testing Jira connection...")
	name, email, err := client.Self(ctx)
	if err != nil {
		return fmt.Errorf("Jira connection test failed: %w", err)
	}
	logrus.Infof("Successfully connected to Jira as: %s (%s)", name, email)

	types, err := client.ProjectIssueTypes(ctx, cfg.ProjectKey)
	if err != nil {
		return fmt.Errorf("project access test failed: %w", err)
	}
	logrus.Infof("Successfully accessed project %s (%d issue types)", cfg.ProjectKey, len(types))

	switch err := notify.New(cfg.SlackWebhookURL).NotifyTest(ctx); {
	case err == notify.ErrNotConfigured:
		logrus.Info("No Slack webhook URL configured - skipping webhook test")
	case err != nil:
		return fmt.Errorf("Slack webhook test failed: %w", err)
	default:
		logrus.Info("Slack webhook test successful")
	}

	logrus.Info("Configuration test completed successfully")
	fmt.Println("\nConfiguration test passed")
	return nil
}
