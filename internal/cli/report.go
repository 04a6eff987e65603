package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/context-timer/internal/core"
)

var (
	reportDate   string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize tracked time",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Per-task totals and context switches for one day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Reports == nil {
			return errTimerNotInitialized
		}
		day, err := parseDay(reportDate)
		if err != nil {
			return err
		}
		summary, err := Reports.DailySummary(day)
		if err != nil {
			return err
		}
		if done, err := printStructured(reportFormat, summary); done {
			return err
		}

		fmt.Println(headerStyle.Render("Daily Report: " + summary.Date.Format(core.ReportDateLayout)))
		fmt.Printf("  %-24s %d\n", "Tasks worked on:", len(summary.Tasks))
		fmt.Printf("  %-24s %d\n", "Context switches:", summary.TotalSwitches)
		fmt.Printf("  %-24s %s\n", "Total time:", core.FormatDurationVerbose(summary.TotalSeconds))

		if len(summary.Tasks) == 0 {
			fmt.Println("\n  No sessions recorded.")
			return nil
		}
		fmt.Printf("\n  %-28s %-10s %s\n", "TASK", "TIME", "SESSIONS")
		for _, t := range summary.Tasks {
			fmt.Printf("  %-28s %-10s %d\n", t.Name, core.FormatDuration(t.TotalSeconds), t.SessionCount)
		}
		return nil
	},
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Day-by-day totals for the Monday-Sunday week containing a date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Reports == nil {
			return errTimerNotInitialized
		}
		day, err := parseDay(reportDate)
		if err != nil {
			return err
		}
		summary, err := Reports.WeeklySummary(day)
		if err != nil {
			return err
		}
		if done, err := printStructured(reportFormat, summary); done {
			return err
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Weekly Report: %s - %s",
			summary.WeekStart.Format(core.ReportDateLayout), summary.WeekEnd.Format(core.ReportDateLayout))))
		fmt.Printf("  %-16s %-10s %-10s %s\n", "DATE", "TIME", "SWITCHES", "TASKS")
		for _, d := range summary.Days {
			fmt.Printf("  %-16s %-10s %-10d %d\n",
				d.Date.Format("Mon Jan 02"), core.FormatDuration(d.Seconds), d.Switches, d.TaskCount)
		}
		fmt.Println()
		fmt.Printf("  %-24s %s\n", "Total time:", core.FormatDurationVerbose(summary.TotalSeconds))
		fmt.Printf("  %-24s %d\n", "Context switches:", summary.TotalSwitches)
		fmt.Printf("  %-24s %s\n", "Daily average:", core.FormatDurationVerbose(summary.AverageSeconds))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{reportDailyCmd, reportWeeklyCmd} {
		c.Flags().StringVar(&reportDate, "date", "", "Day to report on (YYYY-MM-DD, default today)")
		c.Flags().StringVar(&reportFormat, "format", "text", "Output format: text, json, or yaml")
	}
	reportCmd.AddCommand(reportDailyCmd, reportWeeklyCmd)
	rootCmd.AddCommand(reportCmd)
}
