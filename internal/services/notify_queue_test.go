package services

import (
	"context"
	"testing"
	"time"
)

func TestTaskTypeNotify_Constant(t *testing.T) {
	if TaskTypeNotify != "notification:deliver" {
		t.Errorf("TaskTypeNotify = %q, expected %q", TaskTypeNotify, "notification:deliver")
	}
}

func TestNotifyTask_Structure(t *testing.T) {
	projectID := uint(7)
	deliverableID := uint(12)
	task := NotifyTask{
		Type:          "beta_ready",
		Title:         "Beta preview available",
		Body:          "A preview is ready for review",
		RecipientIDs:  []uint{3, 4},
		ProjectID:     &projectID,
		DeliverableID: &deliverableID,
	}

	if task.Type != "beta_ready" {
		t.Errorf("Type = %q, expected %q", task.Type, "beta_ready")
	}
	if task.Title != "Beta preview available" {
		t.Errorf("Title = %q, expected %q", task.Title, "Beta preview available")
	}
	if len(task.RecipientIDs) != 2 {
		t.Errorf("RecipientIDs length = %d, expected 2", len(task.RecipientIDs))
	}
	if task.ProjectID == nil || *task.ProjectID != 7 {
		t.Error("ProjectID should be 7")
	}
	if task.DeliverableID == nil || *task.DeliverableID != 12 {
		t.Error("DeliverableID should be 12")
	}
}

func TestSyncQueue_New(t *testing.T) {
	queue := NewSyncQueue()
	if queue == nil {
		t.Error("NewSyncQueue should not return nil")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	queue := NewSyncQueue()
	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_Close(t *testing.T) {
	queue := NewSyncQueue()
	if err := queue.Close(); err != nil {
		t.Errorf("SyncQueue.Close() should return nil, got %v", err)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()
	task := &NotifyTask{Type: "approved", RecipientIDs: []uint{1}}

	if err := queue.Enqueue(task); err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_EnqueueInvokesProcessor(t *testing.T) {
	queue := NewSyncQueue()
	done := make(chan *NotifyTask, 1)

	queue.SetProcessor(func(ctx context.Context, task *NotifyTask) error {
		done <- task
		return nil
	})

	want := &NotifyTask{Type: "final_delivered", RecipientIDs: []uint{9}}
	if err := queue.Enqueue(want); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	select {
	case got := <-done:
		if got.Type != "final_delivered" {
			t.Errorf("processed Type = %q, expected %q", got.Type, "final_delivered")
		}
		if len(got.RecipientIDs) != 1 || got.RecipientIDs[0] != 9 {
			t.Errorf("processed RecipientIDs = %v, expected [9]", got.RecipientIDs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}
