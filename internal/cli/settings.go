package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change stored preferences",
	Long: `Preferences are stored in the timer database.

Known keys:
  expected_start_time   HH:MM after which launching ctimer starts the Work Day`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Settings == nil {
			return errTimerNotInitialized
		}
		value, ok, err := Settings.GetSetting(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("setting %q: %w", args[0], models.ErrNotFound)
		}
		fmt.Println(value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Settings == nil {
			return errTimerNotInitialized
		}
		key, value := args[0], args[1]

		// Known keys go through their validating setter.
		if key == models.ExpectedStartTimeKey {
			if AutoStart == nil {
				return errTimerNotInitialized
			}
			if err := AutoStart.SetExpectedStartTime(value); err != nil {
				return err
			}
			value, _, _ = AutoStart.ExpectedStartTime()
		} else if err := Settings.SetSetting(key, value); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", key, value)
		return nil
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Settings == nil {
			return errTimerNotInitialized
		}
		settings, err := Settings.ListSettings()
		if err != nil {
			return err
		}
		if len(settings) == 0 {
			fmt.Println("No settings stored.")
			return nil
		}
		for _, s := range settings {
			fmt.Printf("%-24s %s\n", s.Key, s.Value)
		}
		return nil
	},
}

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Start the Work Day if the expected start time has passed",
	Long: `Check the expected_start_time setting and start today's Work Day when
the time has passed and no Work Day is running. ctimer also runs this check
on every launch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AutoStart == nil {
			return errTimerNotInitialized
		}
		value, ok, err := AutoStart.ExpectedStartTime()
		if err != nil {
			return err
		}
		if !ok || value == "" {
			fmt.Println("No expected start time set. Use: ctimer settings set expected_start_time HH:MM")
			return nil
		}

		started, err := AutoStart.Check(now())
		if err != nil {
			return err
		}
		if started {
			fmt.Printf("Work Day started (expected start %s).\n", value)
			return nil
		}
		fmt.Printf("Nothing to do (expected start %s).\n", value)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsListCmd)
	rootCmd.AddCommand(settingsCmd, autostartCmd)
}
