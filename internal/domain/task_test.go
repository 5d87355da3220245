package domain

import (
	"errors"
	"testing"
	"time"
)

// TestNewTaskValidation verifies required fields and self-parent rejection.
func TestNewTaskValidation(t *testing.T) {
	if _, err := NewTask(TaskInput{ID: "t1", Title: " "}, testNow); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("err = %v, want ErrInvalidTitle", err)
	}
	if _, err := NewTask(TaskInput{ID: "t1", Title: "x", ParentID: "t1"}, testNow); !errors.Is(err, ErrParentCycle) {
		t.Fatalf("err = %v, want ErrParentCycle", err)
	}
	task, err := NewTask(TaskInput{ID: "t1", Title: "x"}, testNow)
	if err != nil {
		t.Fatalf("NewTask error: %v", err)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("Priority = %s, want medium default", task.Priority)
	}
}

// TestTaskSetCompleted verifies the completion stamp lifecycle.
func TestTaskSetCompleted(t *testing.T) {
	task, err := NewTask(TaskInput{ID: "t1", Title: "x"}, testNow)
	if err != nil {
		t.Fatalf("NewTask error: %v", err)
	}
	done := testNow.Add(time.Hour)
	task.SetCompleted(true, done)
	if !task.Completed || task.CompletedAt == nil || !task.CompletedAt.Equal(done) {
		t.Fatalf("completion = %t at %v, want stamped %v", task.Completed, task.CompletedAt, done)
	}
	task.SetCompleted(false, done.Add(time.Hour))
	if task.Completed || task.CompletedAt != nil {
		t.Fatal("reopen must clear the completion stamp")
	}
}

// TestTaskReparent verifies self-parenting stays rejected after creation.
func TestTaskReparent(t *testing.T) {
	task, err := NewTask(TaskInput{ID: "t1", Title: "x"}, testNow)
	if err != nil {
		t.Fatalf("NewTask error: %v", err)
	}
	if err := task.Reparent("t1", testNow); !errors.Is(err, ErrParentCycle) {
		t.Fatalf("err = %v, want ErrParentCycle", err)
	}
	if err := task.Reparent("t2", testNow); err != nil {
		t.Fatalf("Reparent error: %v", err)
	}
	if err := task.Reparent("", testNow); err != nil || task.ParentID != "" {
		t.Fatalf("clearing parent: %v, ParentID = %q", err, task.ParentID)
	}
}
