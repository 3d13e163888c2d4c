package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"go-approvals/internal/common/models"
	"go-approvals/internal/features/approval"
	"go-approvals/internal/features/audit"
	"go-approvals/internal/features/notification"
	"go-approvals/internal/features/reminder"
	"go-approvals/internal/features/user"

	"github.com/spf13/cobra"
)

var runCycleAt string

func init() {
	runCycleCmd.Flags().StringVar(&runCycleAt, "at", "", "evaluate as of this RFC3339 time instead of now")
	rootCmd.AddCommand(runCycleCmd)
}

var runCycleCmd = &cobra.Command{
	Use:   "run-cycle",
	Short: "Run one reminder and escalation cycle",
	Long:  "Scans pending tasks once, sends due reminders and escalates stale tasks, then prints the cycle report as JSON.",
	Args:  cobra.NoArgs,
	RunE:  runCycle,
}

func runCycle(cmd *cobra.Command, args []string) error {
	now := models.Now()
	if runCycleAt != "" {
		at, err := time.Parse(time.RFC3339, runCycleAt)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		now = at
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	policy, err := reminder.NewPolicy(rt.cfg)
	if err != nil {
		return err
	}

	engine := reminder.NewEngine(
		rt.db,
		approval.NewTaskRepository(rt.db),
		audit.NewAuditRepository(rt.db),
		user.NewUserRepository(rt.db),
		notification.NewNotifier(rt.cfg, rt.logger, nil),
		policy,
		rt.logger,
	)

	report, err := engine.RunCycle(cmd.Context(), now)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
