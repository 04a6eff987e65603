package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/context-timer/internal/core"
	"github.com/valter-silva-au/context-timer/pkg/models"
)

var errTimerNotInitialized = errors.New("timer services not initialized")

// now returns the current time in the configured location.
func now() time.Time {
	t := time.Now()
	if Clock != nil {
		t = Clock()
	}
	return t.In(location())
}

func location() *time.Location {
	if Location == nil {
		return time.Local
	}
	return Location
}

// parseID parses a positive numeric id argument.
func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, arg)
	}
	return id, nil
}

// resolveTask accepts a numeric id or an exact task name.
func resolveTask(arg string) (*models.Task, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return Tasks.Get(id)
	}
	tasks, err := Tasks.List(true)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].Name == arg {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %q: %w", arg, models.ErrNotFound)
}

// parseDay parses a YYYY-MM-DD flag in the configured location. Empty means
// today.
func parseDay(value string) (time.Time, error) {
	if value == "" {
		return now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", value, location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", value)
	}
	return day, nil
}

// printStructured prints v as JSON or YAML. It reports false for any other
// format so the caller can render text.
func printStructured(format string, v any) (bool, error) {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("formatting as JSON: %w", err)
		}
		fmt.Println(string(data))
		return true, nil
	case "yaml", "yml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("formatting as YAML: %w", err)
		}
		fmt.Print(string(data))
		return true, nil
	case "", "text":
		return false, nil
	}
	return true, fmt.Errorf("unsupported format %q (use text, json, or yaml)", format)
}

// printResult reports what a session action changed.
func printResult(verb string, result core.ActionResult) {
	if result.Session != nil {
		s := result.Session
		fmt.Printf("%s %s (session %d, %s)\n", verb, sessionName(*s), s.ID, core.ElapsedDisplay(*s, now()))
	}
	var others []int64
	for _, id := range result.Stopped {
		if result.Session == nil || id != result.Session.ID {
			others = append(others, id)
		}
	}
	if len(others) > 0 {
		fmt.Printf("  also stopped session(s) %s\n", joinIDs(others))
	}
	if result.Switch != nil {
		fmt.Printf("  context switch #%d logged\n", result.Switch.ID)
	}
}

func sessionName(s models.TimerSession) string {
	if s.TaskName == "" {
		return fmt.Sprintf("task %d", s.TaskID)
	}
	return s.TaskName
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
