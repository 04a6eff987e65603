package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/context-timer/internal/core"
	"github.com/valter-silva-au/context-timer/pkg/models"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Start, stop, or inspect the Work Day",
	Long: `The Work Day is a reserved timer that brackets the day. Starting it again
on the same calendar day resumes today's session instead of creating a
new one. Stopping it stops every running timer.`,
}

var dayStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume today's Work Day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return applySpecial(core.StartWorkDayAction{}, "Started")
	},
}

var dayStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the Work Day and every running timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return applySpecial(core.StopWorkDayAction{}, "Stopped")
	},
}

var dayStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the Work Day, Lunch, and Break timers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tracker == nil {
			return errTimerNotInitialized
		}
		state, err := Tracker.SpecialState()
		if err != nil {
			return err
		}

		t := now()
		for _, row := range []struct {
			kind    models.SpecialKind
			session *models.TimerSession
		}{
			{models.SpecialWorkDay, state.WorkDay},
			{models.SpecialLunch, state.Lunch},
			{models.SpecialBreak, state.Break},
		} {
			if row.session == nil {
				fmt.Printf("  %-10s stopped\n", row.kind.Name())
				continue
			}
			fmt.Printf("  %-10s running %s (session %d)\n",
				row.kind.Name(), core.ElapsedDisplay(*row.session, t), row.session.ID)
		}

		if state.WorkDay != nil && !state.LunchAvailable {
			fmt.Println("\nLunch and Break are unavailable until the current pause ends.")
		}
		return nil
	},
}

var lunchCmd = &cobra.Command{
	Use:   "lunch",
	Short: "Pause regular tasks for lunch",
}

var lunchStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start Lunch (stops running regular tasks)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return applySpecial(core.StartLunchAction{}, "Started")
	},
}

var lunchEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End Lunch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return applySpecial(core.EndLunchAction{}, "Ended")
	},
}

var breakCmd = &cobra.Command{
	Use:   "break",
	Short: "Pause regular tasks for a break",
}

var breakStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start Break (stops running regular tasks)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return applySpecial(core.StartBreakAction{}, "Started")
	},
}

var breakEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End Break",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return applySpecial(core.EndBreakAction{}, "Ended")
	},
}

func applySpecial(action core.SessionAction, verb string) error {
	if Tracker == nil {
		return errTimerNotInitialized
	}
	result, err := Tracker.Apply(action)
	if err != nil {
		return err
	}
	printResult(verb, result)
	return nil
}

func init() {
	dayCmd.AddCommand(dayStartCmd, dayStopCmd, dayStatusCmd)
	lunchCmd.AddCommand(lunchStartCmd, lunchEndCmd)
	breakCmd.AddCommand(breakStartCmd, breakEndCmd)
	rootCmd.AddCommand(dayCmd, lunchCmd, breakCmd)
}
