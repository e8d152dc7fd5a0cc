// Package statemachine holds the pure status-transition rules for files and
// projects. Transition legality is decided here, before any persistence, so
// the rules are testable without a store.
package statemachine

import (
	"fmt"

	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
)

// InvalidTransitionError reports an illegal status transition. It names both
// the current and the requested status so callers can surface the offending
// pair directly.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition from %q to %q", e.Entity, e.From, e.To)
}

// fileTransitions is the single-file transition table. The failed status is
// terminal: no exit is defined for it.
var fileTransitions = map[models.FileStatus][]models.FileStatus{
	models.FileStatusDraft:     {models.FileStatusPending, models.FileStatusProcessed},
	models.FileStatusPending:   {models.FileStatusProcessed},
	models.FileStatusProcessed: {models.FileStatusDraft},
	models.FileStatusFailed:    {},
}

var projectTransitions = map[models.ProjectStatus][]models.ProjectStatus{
	models.ProjectStatusDraft:     {models.ProjectStatusArchived, models.ProjectStatusPublished},
	models.ProjectStatusArchived:  {models.ProjectStatusDraft},
	models.ProjectStatusPublished: {models.ProjectStatusDraft},
}

// FileTransition validates a single-file status change and returns the new
// status. The bulk file-status path deliberately does not call this.
func FileTransition(from, to models.FileStatus) (models.FileStatus, error) {
	if !models.ValidFileStatus(to) {
		return from, &InvalidTransitionError{Entity: "file", From: string(from), To: string(to)}
	}
	for _, allowed := range fileTransitions[from] {
		if allowed == to {
			return to, nil
		}
	}
	return from, &InvalidTransitionError{Entity: "file", From: string(from), To: string(to)}
}

// ProjectTransition validates a project status change and returns the new
// status.
func ProjectTransition(from, to models.ProjectStatus) (models.ProjectStatus, error) {
	if !models.ValidProjectStatus(to) {
		return from, &InvalidTransitionError{Entity: "project", From: string(from), To: string(to)}
	}
	for _, allowed := range projectTransitions[from] {
		if allowed == to {
			return to, nil
		}
	}
	return from, &InvalidTransitionError{Entity: "project", From: string(from), To: string(to)}
}

// CanAttach reports whether a file in the given status may be attached to a
// project. Attaching a pending file is the one forbidden case.
func CanAttach(status models.FileStatus) bool {
	return status != models.FileStatusPending
}
