package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	taskAddColor  string
	taskListAll   bool
	taskEditName  string
	taskEditColor string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage timeable tasks",
	Long: `Create, list, edit, and delete tasks.

Work Day, Lunch, and Break are reserved names managed by the day, lunch,
and break commands. Deleting a task hides it but keeps its history.`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return errTimerNotInitialized
		}
		name := args[0]

		var color *string
		if taskAddColor != "" {
			color = &taskAddColor
		}
		id, err := Tasks.Create(name, color)
		if err != nil {
			return err
		}
		fmt.Printf("Created task %d: %s\n", id, name)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks alphabetically",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return errTimerNotInitialized
		}
		tasks, err := Tasks.List(!taskListAll)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		fmt.Printf("%-6s %-28s %-9s %s\n", "ID", "NAME", "COLOR", "STATUS")
		for _, t := range tasks {
			status := "active"
			if !t.IsActive {
				status = "deleted"
			}
			if t.IsSpecial() {
				status += " (reserved)"
			}
			fmt.Printf("%-6d %-28s %-9s %s\n", t.ID, t.Name, t.ColorOr("-"), status)
		}
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task>",
	Short: "Show a task by id or name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return errTimerNotInitialized
		}
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:       %d\n", task.ID)
		fmt.Printf("Name:     %s\n", task.Name)
		fmt.Printf("Color:    %s\n", task.ColorOr("-"))
		fmt.Printf("Created:  %s\n", task.CreatedAt.In(location()).Format("2006-01-02 15:04:05"))
		fmt.Printf("Active:   %t\n", task.IsActive)
		fmt.Printf("Reserved: %t\n", task.IsSpecial())
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Rename a task or change its color",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return errTimerNotInitialized
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}

		var name, color *string
		if cmd.Flags().Changed("name") {
			name = &taskEditName
		}
		if cmd.Flags().Changed("color") {
			color = &taskEditColor
		}
		if name == nil && color == nil {
			return fmt.Errorf("nothing to change: pass --name and/or --color")
		}

		if err := Tasks.Update(id, name, color); err != nil {
			return err
		}
		fmt.Printf("Updated task %d\n", id)
		return nil
	},
}

var taskRmCmd = &cobra.Command{
	Use:     "rm <task-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task (history is kept)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return errTimerNotInitialized
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		if err := Tasks.Delete(id); err != nil {
			return err
		}
		fmt.Printf("Deleted task %d\n", id)
		return nil
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskAddColor, "color", "", "Display color, e.g. #4a90d9")
	taskListCmd.Flags().BoolVar(&taskListAll, "all", false, "Include deleted tasks")
	taskEditCmd.Flags().StringVar(&taskEditName, "name", "", "New task name")
	taskEditCmd.Flags().StringVar(&taskEditColor, "color", "", "New display color")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskEditCmd, taskRmCmd)
	rootCmd.AddCommand(taskCmd)
}
