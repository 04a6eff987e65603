package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/context-timer/internal/core"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .ctimerconfig",
	Long: `Write a .ctimerconfig with default values into the ctimer home directory
(CTIMER_HOME, or ~/.local/share/context-timer). An existing file is left
untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil {
			return fmt.Errorf("configuration manager not initialized")
		}

		written, err := ConfigMgr.WriteDefaultConfig()
		if err != nil {
			return err
		}
		path := filepath.Join(BasePath, core.ConfigFileName)
		if !written {
			fmt.Printf("%s already exists, left unchanged.\n", path)
			return nil
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
