package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/context-timer/internal/core"
)

var startCmd = &cobra.Command{
	Use:   "start <task>",
	Short: "Start timing a task alongside any running timers",
	Long: `Start a timer for a task, given by id or name. Other running tasks keep
running. The start is logged as a context switch from the most recently
started running task.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil || Tracker == nil {
			return errTimerNotInitialized
		}
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		result, err := Tracker.Apply(core.StartTaskAction{TaskID: task.ID})
		if err != nil {
			return err
		}
		printResult("Started", result)
		return nil
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch <task>",
	Short: "Stop running tasks and start another",
	Long: `Stop every running regular task, then start the given task and log a
context switch. Work Day, Lunch, and Break are not affected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil || Tracker == nil {
			return errTimerNotInitialized
		}
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		result, err := Tracker.Apply(core.SwitchToAction{TaskID: task.ID})
		if err != nil {
			return err
		}
		printResult("Switched to", result)
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <session-id>",
	Short: "Stop a running session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tracker == nil {
			return errTimerNotInitialized
		}
		id, err := parseID("session", args[0])
		if err != nil {
			return err
		}
		result, err := Tracker.Apply(core.StopSessionAction{SessionID: id})
		if err != nil {
			return err
		}
		printResult("Stopped", result)
		return nil
	},
}

var stopAllCmd = &cobra.Command{
	Use:   "stop-all",
	Short: "Stop every running regular task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tracker == nil {
			return errTimerNotInitialized
		}
		result, err := Tracker.Apply(core.StopAllRegularAction{})
		if err != nil {
			return err
		}
		if len(result.Stopped) == 0 {
			fmt.Println("No running tasks.")
			return nil
		}
		fmt.Printf("Stopped %d session(s): %s\n", len(result.Stopped), joinIDs(result.Stopped))
		return nil
	},
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "List running sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tracker == nil {
			return errTimerNotInitialized
		}
		sessions, err := Tracker.ListActive()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No running sessions.")
			return nil
		}

		t := now()
		fmt.Printf("%-8s %-28s %-10s %s\n", "SESSION", "TASK", "STARTED", "ELAPSED")
		for _, s := range sessions {
			fmt.Printf("%-8d %-28s %-10s %s\n",
				s.ID, sessionName(s), s.StartTime.In(location()).Format("15:04:05"), core.ElapsedDisplay(s, t))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd, switchCmd, stopCmd, stopAllCmd, activeCmd)
}
