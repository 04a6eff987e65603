package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	timermcp "github.com/valter-silva-au/context-timer/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the ctimer MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ctimer MCP server on stdio",
	Long: `Start the ctimer MCP server on stdio transport.

The server exposes the timer as MCP tools that AI assistants can call:
list_tasks, create_task, start_task, switch_task, stop_session, list_active,
start_work_day, stop_work_day, daily_summary, weekly_summary, get_metrics,
and get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil || Tracker == nil || Reports == nil {
			return errTimerNotInitialized
		}

		srv := timermcp.NewServer(timermcp.Services{
			Tasks:       Tasks,
			Tracker:     Tracker,
			Reports:     Reports,
			MetricsCalc: MetricsCalc,
			AlertEngine: AlertEngine,
			Location:    location(),
		}, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
