// Package history keeps the transaction journal in BoltDB. Every executed
// plan is recorded, successful or not, so the user can audit what the tool
// changed and when.
package history

import (
	"fmt"
	"strings"
	"time"
)

// Operation represents the kind of transaction that was executed.
type Operation string

const (
	OpInstall Operation = "install"
	OpRemove  Operation = "remove"
	OpUpgrade Operation = "upgrade"
	OpSync    Operation = "sync"
)

// Entry represents one executed transaction in the journal.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation Operation `json:"operation"`

	// Installed and Removed carry "name version" strings in plan order.
	Installed []string `json:"installed,omitempty"`
	Removed   []string `json:"removed,omitempty"`
	// Marked lists packages whose install reason was flipped to explicit.
	Marked []string `json:"marked,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewEntry creates a journal entry for a transaction about to run.
func NewEntry(op Operation) *Entry {
	return &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: op,
	}
}

// MarkSuccess marks the entry as successful.
func (e *Entry) MarkSuccess() {
	e.Success = true
}

// MarkFailed marks the entry as failed with an error message.
func (e *Entry) MarkFailed(err error) {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
}

// generateID generates a unique ID for the entry.
func generateID() string {
	return time.Now().Format("20060102150405.000000")
}

// FormatTime returns a human-readable timestamp.
func (e *Entry) FormatTime() string {
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// Summary returns a one-line description of the transaction.
func (e *Entry) Summary() string {
	status := "success"
	if !e.Success {
		status = "failed"
	}

	var changes []string
	if n := len(e.Installed); n > 0 {
		changes = append(changes, fmt.Sprintf("+%d", n))
	}
	if n := len(e.Removed); n > 0 {
		changes = append(changes, fmt.Sprintf("-%d", n))
	}
	if n := len(e.Marked); n > 0 {
		changes = append(changes, fmt.Sprintf("~%d", n))
	}

	if len(changes) == 0 {
		return string(e.Operation) + " (" + status + ")"
	}
	return string(e.Operation) + " " + strings.Join(changes, " ") + " (" + status + ")"
}
