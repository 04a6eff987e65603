package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

func TestTaskCmds_NilRegistry(t *testing.T) {
	orig := Tasks
	defer func() { Tasks = orig }()
	Tasks = nil

	for _, tc := range []struct {
		name string
		run  func() error
	}{
		{"add", func() error { return taskAddCmd.RunE(taskAddCmd, []string{"x"}) }},
		{"list", func() error { return taskListCmd.RunE(taskListCmd, nil) }},
		{"show", func() error { return taskShowCmd.RunE(taskShowCmd, []string{"1"}) }},
		{"edit", func() error { return taskEditCmd.RunE(taskEditCmd, []string{"1"}) }},
		{"rm", func() error { return taskRmCmd.RunE(taskRmCmd, []string{"1"}) }},
	} {
		if err := tc.run(); !errors.Is(err, errTimerNotInitialized) {
			t.Errorf("%s: err = %v, want errTimerNotInitialized", tc.name, err)
		}
	}
}

func TestTaskAddCmd(t *testing.T) {
	newTestTimer(t)
	setFlags(t, taskAddCmd, map[string]string{"color": "#ff0000"})

	out := captureStdout(t, func() {
		if err := taskAddCmd.RunE(taskAddCmd, []string{"Coding"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "Created task 1: Coding") {
		t.Errorf("unexpected output: %q", out)
	}

	task, err := Tasks.Get(1)
	if err != nil {
		t.Fatalf("getting task: %v", err)
	}
	if task.ColorOr("") != "#ff0000" {
		t.Errorf("color = %q, want #ff0000", task.ColorOr(""))
	}
}

func TestTaskAddCmd_ReservedName(t *testing.T) {
	newTestTimer(t)

	err := taskAddCmd.RunE(taskAddCmd, []string{"Work Day"})
	if err == nil || !strings.Contains(err.Error(), "reserved") {
		t.Fatalf("expected reserved-name error, got %v", err)
	}
}

func TestTaskAddCmd_Duplicate(t *testing.T) {
	tt := newTestTimer(t)
	tt.mustCreate(t, "Coding")

	err := taskAddCmd.RunE(taskAddCmd, []string{"Coding"})
	if !errors.Is(err, models.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestTaskListCmd(t *testing.T) {
	tt := newTestTimer(t)
	tt.mustCreate(t, "Writing")
	id := tt.mustCreate(t, "Coding")
	tt.mustCreate(t, "Reviews")
	if err := Tasks.Delete(id); err != nil {
		t.Fatalf("deleting: %v", err)
	}

	out := captureStdout(t, func() {
		if err := taskListCmd.RunE(taskListCmd, nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if strings.Contains(out, "Coding") {
		t.Errorf("deleted task listed without --all: %q", out)
	}
	if strings.Index(out, "Reviews") > strings.Index(out, "Writing") {
		t.Errorf("tasks not alphabetical: %q", out)
	}

	setFlags(t, taskListCmd, map[string]string{"all": "true"})
	out = captureStdout(t, func() {
		if err := taskListCmd.RunE(taskListCmd, nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "Coding") || !strings.Contains(out, "deleted") {
		t.Errorf("expected deleted task with --all: %q", out)
	}
}

func TestTaskListCmd_Empty(t *testing.T) {
	newTestTimer(t)

	out := captureStdout(t, func() {
		if err := taskListCmd.RunE(taskListCmd, nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestTaskShowCmd(t *testing.T) {
	tt := newTestTimer(t)
	tt.mustCreate(t, "Coding")

	out := captureStdout(t, func() {
		if err := taskShowCmd.RunE(taskShowCmd, []string{"Coding"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	for _, want := range []string{"Name:     Coding", "Active:   true", "Reserved: false", "Created:  2025-01-15 10:00:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestTaskEditCmd(t *testing.T) {
	tt := newTestTimer(t)
	id := tt.mustCreate(t, "Coding")

	setFlags(t, taskEditCmd, map[string]string{"name": "Programming"})
	out := captureStdout(t, func() {
		if err := taskEditCmd.RunE(taskEditCmd, []string{"1"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "Updated task 1") {
		t.Errorf("unexpected output: %q", out)
	}

	task, err := Tasks.Get(id)
	if err != nil {
		t.Fatalf("getting task: %v", err)
	}
	if task.Name != "Programming" {
		t.Errorf("name = %q, want Programming", task.Name)
	}
}

func TestTaskEditCmd_NothingToChange(t *testing.T) {
	tt := newTestTimer(t)
	tt.mustCreate(t, "Coding")

	err := taskEditCmd.RunE(taskEditCmd, []string{"1"})
	if err == nil || !strings.Contains(err.Error(), "nothing to change") {
		t.Fatalf("expected nothing-to-change error, got %v", err)
	}
}

func TestTaskEditCmd_ReservedName(t *testing.T) {
	tt := newTestTimer(t)
	tt.mustCreate(t, "Coding")

	setFlags(t, taskEditCmd, map[string]string{"name": "Lunch"})
	err := taskEditCmd.RunE(taskEditCmd, []string{"1"})
	if err == nil || !strings.Contains(err.Error(), "reserved") {
		t.Fatalf("expected reserved-name error, got %v", err)
	}
}

func TestTaskRmCmd(t *testing.T) {
	tt := newTestTimer(t)
	id := tt.mustCreate(t, "Coding")

	out := captureStdout(t, func() {
		if err := taskRmCmd.RunE(taskRmCmd, []string{"1"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "Deleted task 1") {
		t.Errorf("unexpected output: %q", out)
	}

	task, err := Tasks.Get(id)
	if err != nil {
		t.Fatalf("deleted task should still be readable: %v", err)
	}
	if task.IsActive {
		t.Error("task still active after rm")
	}
}

func TestTaskRmCmd_NotFound(t *testing.T) {
	newTestTimer(t)

	err := taskRmCmd.RunE(taskRmCmd, []string{"99"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
