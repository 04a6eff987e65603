package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/context-timer/internal/core"
)

var (
	exportPeriod string
	exportDate   string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write sessions or reports to CSV",
	Long: `Export timer data as CSV files. Files are written to the export directory
(export.dir in .ctimerconfig) unless --out is given, and are named
context-timer-<kind>-<date>-<HHMMSS>.csv.`,
}

var exportSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Export every session in a period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Reports == nil {
			return errTimerNotInitialized
		}
		t := now()
		start, end, suffix, err := core.PeriodRange(exportPeriod, t, location())
		if err != nil {
			return err
		}
		sessions, err := Reports.SessionsForRange(start, end)
		if err != nil {
			return err
		}
		return writeExport(core.ExportSessions, suffix, func(w io.Writer) error {
			return core.WriteSessionsCSV(w, sessions, t)
		}, fmt.Sprintf("%d session(s)", len(sessions)))
	},
}

var exportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Export the daily report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Reports == nil {
			return errTimerNotInitialized
		}
		day, err := parseDay(exportDate)
		if err != nil {
			return err
		}
		summary, err := Reports.DailySummary(day)
		if err != nil {
			return err
		}
		return writeExport(core.ExportDaily, summary.Date.Format("20060102"), func(w io.Writer) error {
			return core.WriteDailyCSV(w, summary)
		}, "daily report")
	},
}

var exportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Export the weekly report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Reports == nil {
			return errTimerNotInitialized
		}
		day, err := parseDay(exportDate)
		if err != nil {
			return err
		}
		summary, err := Reports.WeeklySummary(day)
		if err != nil {
			return err
		}
		return writeExport(core.ExportWeekly, summary.WeekStart.Format("20060102")+"-week", func(w io.Writer) error {
			return core.WriteWeeklyCSV(w, summary)
		}, "weekly report")
	},
}

// writeExport writes one CSV into --out, export.dir, or the default export
// directory, in that order of preference.
func writeExport(kind, dateStr string, write func(io.Writer) error, what string) error {
	dir := exportOut
	if dir == "" && Config != nil {
		dir = Config.Export.Dir
	}
	if dir == "" {
		dir = core.DefaultExportDir()
	}

	path, err := core.WriteExportFile(dir, core.ExportFilename(kind, dateStr, now()), write)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %s to %s\n", what, path)
	return nil
}

func init() {
	exportSessionsCmd.Flags().StringVar(&exportPeriod, "period", core.PeriodToday, "Period: today, week, month, or all")
	exportDailyCmd.Flags().StringVar(&exportDate, "date", "", "Day to export (YYYY-MM-DD, default today)")
	exportWeeklyCmd.Flags().StringVar(&exportDate, "date", "", "Any day in the week to export (YYYY-MM-DD, default today)")
	exportCmd.PersistentFlags().StringVar(&exportOut, "out", "", "Directory to write into (default export.dir)")

	exportCmd.AddCommand(exportSessionsCmd, exportDailyCmd, exportWeeklyCmd)
	rootCmd.AddCommand(exportCmd)
}
