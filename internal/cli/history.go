package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	historyFrom string
	historyTo   string
	historyDay  string
	historyAll  bool
	historyYes  bool
)

// confirmInput is read for the clear confirmation prompt.
var confirmInput io.Reader = os.Stdin

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded sessions and switches",
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete sessions and context switches",
	Long: `Delete recorded sessions and context switches for a day, a date range,
or everything. Tasks are kept. The range form covers --from through --to,
both inclusive.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Reports == nil {
			return errTimerNotInitialized
		}

		modes := 0
		for _, set := range []bool{historyAll, historyDay != "", historyFrom != "" || historyTo != ""} {
			if set {
				modes++
			}
		}
		if modes != 1 {
			return fmt.Errorf("specify exactly one of --all, --day, or --from/--to")
		}

		var (
			what string
			run  func() (int, error)
		)
		switch {
		case historyAll:
			what = "ALL history"
			run = Reports.ClearAll
		case historyDay != "":
			day, err := parseDay(historyDay)
			if err != nil {
				return err
			}
			what = "history for " + day.Format("2006-01-02")
			run = func() (int, error) { return Reports.ClearDay(day) }
		default:
			if historyFrom == "" || historyTo == "" {
				return fmt.Errorf("--from and --to must be used together")
			}
			from, err := parseDay(historyFrom)
			if err != nil {
				return err
			}
			to, err := parseDay(historyTo)
			if err != nil {
				return err
			}
			if to.Before(from) {
				return fmt.Errorf("--to %s is before --from %s", historyTo, historyFrom)
			}
			what = fmt.Sprintf("history from %s to %s", historyFrom, historyTo)
			run = func() (int, error) { return Reports.ClearRange(from, to.AddDate(0, 0, 1)) }
		}

		if !historyYes && !confirm(fmt.Sprintf("Delete %s? This cannot be undone. [y/N] ", what)) {
			fmt.Println("Aborted.")
			return nil
		}

		n, err := run()
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d session(s).\n", n)
		return nil
	},
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(confirmInput).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	historyClearCmd.Flags().StringVar(&historyFrom, "from", "", "First day to clear (YYYY-MM-DD)")
	historyClearCmd.Flags().StringVar(&historyTo, "to", "", "Last day to clear, inclusive (YYYY-MM-DD)")
	historyClearCmd.Flags().StringVar(&historyDay, "day", "", "Single day to clear (YYYY-MM-DD)")
	historyClearCmd.Flags().BoolVar(&historyAll, "all", false, "Clear every session and switch")
	historyClearCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "Skip the confirmation prompt")

	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
