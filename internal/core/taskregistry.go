package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// TaskRegistry manages the set of timeable tasks.
type TaskRegistry interface {
	// Create adds a task. Names are unique across active and deleted tasks,
	// and the reserved Work Day, Lunch and Break names are rejected.
	Create(name string, color *string) (int64, error)
	// List returns tasks alphabetically, optionally only active ones.
	List(activeOnly bool) ([]models.Task, error)
	Get(id int64) (*models.Task, error)
	// Update changes the name and/or color. Nil fields are left unchanged.
	// Reserved tasks keep their names and no task may take one.
	Update(id int64, name *string, color *string) error
	// Delete is a soft delete; sessions and switches keep their reference.
	Delete(id int64) error
	// EnsureSpecial returns the reserved task for kind, creating it with its
	// fixed color or reactivating it as needed. It is the only way to create
	// a reserved task.
	EnsureSpecial(kind models.SpecialKind) (*models.Task, error)
	IsSpecialName(name string) bool
}

type taskRegistry struct {
	store       TaskStore
	clock       Clock
	eventLogger EventLogger
}

// NewTaskRegistry creates a TaskRegistry backed by store. clock and
// eventLogger may be nil.
func NewTaskRegistry(store TaskStore, clock Clock, eventLogger EventLogger) TaskRegistry {
	return &taskRegistry{store: store, clock: clock, eventLogger: eventLogger}
}

func (r *taskRegistry) Create(name string, color *string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("creating task: %w", models.ErrInvalidName)
	}
	if r.IsSpecialName(name) {
		return 0, fmt.Errorf("creating task %q: %w", name, models.ErrReservedTask)
	}
	return r.create(name, color)
}

// create inserts a task without the reserved-name check.
func (r *taskRegistry) create(name string, color *string) (int64, error) {
	id, err := r.store.CreateTask(name, color, r.clock.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("creating task: %w", err)
	}

	emit(r.eventLogger, EventTaskCreated, map[string]any{
		"task_id": id,
		"name":    name,
	})
	return id, nil
}

func (r *taskRegistry) List(activeOnly bool) ([]models.Task, error) {
	tasks, err := r.store.ListTasks(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRegistry) Get(id int64) (*models.Task, error) {
	task, err := r.store.GetTask(id)
	if err != nil {
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return task, nil
}

func (r *taskRegistry) Update(id int64, name *string, color *string) error {
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return fmt.Errorf("updating task %d: %w", id, models.ErrInvalidName)
		}
		task, err := r.store.GetTask(id)
		if err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		if *name != task.Name && (task.IsSpecial() || r.IsSpecialName(*name)) {
			return fmt.Errorf("renaming %q to %q: %w", task.Name, *name, models.ErrReservedTask)
		}
	}
	if err := r.store.UpdateTask(id, name, color); err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	data := map[string]any{"task_id": id}
	if name != nil {
		data["name"] = *name
	}
	if color != nil {
		data["color"] = *color
	}
	emit(r.eventLogger, EventTaskUpdated, data)
	return nil
}

func (r *taskRegistry) Delete(id int64) error {
	if err := r.store.SetTaskActive(id, false); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	emit(r.eventLogger, EventTaskDeleted, map[string]any{"task_id": id})
	return nil
}

func (r *taskRegistry) EnsureSpecial(kind models.SpecialKind) (*models.Task, error) {
	name := kind.Name()
	if name == "" {
		return nil, fmt.Errorf("unknown special task %q", kind)
	}

	task, err := r.store.GetTaskByName(name)
	switch {
	case err == nil:
		if !task.IsActive {
			if err := r.store.SetTaskActive(task.ID, true); err != nil {
				return nil, fmt.Errorf("reactivating %s: %w", name, err)
			}
			task.IsActive = true
		}
		return task, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("looking up %s: %w", name, err)
	}

	color := kind.Color()
	id, err := r.create(name, &color)
	if err != nil {
		return nil, err
	}
	return r.Get(id)
}

func (r *taskRegistry) IsSpecialName(name string) bool {
	_, ok := models.SpecialKindForName(name)
	return ok
}
