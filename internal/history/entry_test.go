package history

import (
	"strings"
	"testing"
)

func TestOperation(t *testing.T) {
	tests := []struct {
		op       Operation
		expected string
	}{
		{OpInstall, "install"},
		{OpRemove, "remove"},
		{OpUpgrade, "upgrade"},
		{OpSync, "sync"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if string(tt.op) != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, tt.op)
			}
		})
	}
}

func TestNewEntry(t *testing.T) {
	entry := NewEntry(OpInstall)

	if entry.ID == "" {
		t.Error("entry ID should not be empty")
	}
	if entry.Operation != OpInstall {
		t.Errorf("expected Operation install, got %s", entry.Operation)
	}
	if entry.Success {
		t.Error("new entry should have Success = false")
	}
	if entry.Timestamp.IsZero() {
		t.Error("entry timestamp should be set")
	}
}

func TestEntryMarkSuccess(t *testing.T) {
	entry := NewEntry(OpInstall)
	entry.MarkSuccess()

	if !entry.Success {
		t.Error("MarkSuccess() should set Success to true")
	}
}

func TestEntryMarkFailed(t *testing.T) {
	entry := NewEntry(OpInstall)

	testErr := &testError{msg: "test error"}
	entry.MarkFailed(testErr)

	if entry.Success {
		t.Error("MarkFailed() should set Success to false")
	}
	if entry.Error != "test error" {
		t.Errorf("MarkFailed() should set Error message, got '%s'", entry.Error)
	}

	// Test with nil error
	entry2 := NewEntry(OpInstall)
	entry2.MarkFailed(nil)
	if entry2.Error != "" {
		t.Error("MarkFailed(nil) should not set Error")
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestSummary(t *testing.T) {
	entry := NewEntry(OpInstall)
	entry.Installed = []string{"vim 9.1", "git 2.46"}
	entry.Removed = []string{"nano 8.0"}
	entry.MarkSuccess()

	summary := entry.Summary()
	for _, want := range []string{"install", "+2", "-1", "success"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, should contain %q", summary, want)
		}
	}

	failed := NewEntry(OpSync)
	failed.MarkFailed(&testError{msg: "mirror timeout"})
	if !strings.Contains(failed.Summary(), "failed") {
		t.Errorf("Summary() = %q, should report failure", failed.Summary())
	}
}
