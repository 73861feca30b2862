//go:build !integration

// File: internal/usecase/notification_uc_test.go
package usecase_test

import (
	"context"
	"errors"
	"testing"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/usecase"
)

func TestNotificationUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("notify persists and pushes", func(t *testing.T) {
		// --- Arrange ---
		notifications := NewMockNotificationRepo()
		trainees := NewMockTraineeRepo()
		pusher := &MockPusher{}
		uc := usecase.NewNotificationUseCase(notifications, trainees, pusher, newTestLogger())

		// --- Act ---
		note, err := uc.Notify(ctx, "trainee-1", model.NotificationPaymentConfirmed,
			"Payment confirmed", "Your payment went through.", map[string]interface{}{"payment_id": "pay-1"})

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if note.ID == "" {
			t.Error("expected a generated notification id")
		}
		stored := notifications.ByUser("trainee-1")
		if len(stored) != 1 || stored[0].Kind != model.NotificationPaymentConfirmed {
			t.Fatalf("expected one persisted notification, got %+v", stored)
		}
		if got := pusher.Pushes(); len(got) != 1 || got[0].Event != "notification" {
			t.Fatalf("expected one push with event 'notification', got %+v", got)
		}
	})

	t.Run("broadcast reaches every trainee", func(t *testing.T) {
		// --- Arrange ---
		notifications := NewMockNotificationRepo()
		trainees := NewMockTraineeRepo()
		trainees.Add(&model.Trainee{ID: "t-1", Email: "a@example.com"})
		trainees.Add(&model.Trainee{ID: "t-2", Email: "b@example.com"})
		trainees.Add(&model.Trainee{ID: "t-3", Email: "c@example.com"})
		pusher := &MockPusher{}
		uc := usecase.NewNotificationUseCase(notifications, trainees, pusher, newTestLogger())

		// --- Act ---
		sent, err := uc.Broadcast(ctx, model.NotificationAnnouncement, "Cohort update", "Orientation moved to Monday.")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if sent != 3 {
			t.Errorf("expected 3 deliveries, got %d", sent)
		}
		for _, id := range []string{"t-1", "t-2", "t-3"} {
			if got := notifications.ByUser(id); len(got) != 1 {
				t.Errorf("expected one notification for %s, got %d", id, len(got))
			}
		}
		if got := pusher.Pushes(); len(got) != 3 {
			t.Errorf("expected 3 pushes, got %d", len(got))
		}
	})

	t.Run("mark read is owner-scoped", func(t *testing.T) {
		// --- Arrange ---
		notifications := NewMockNotificationRepo()
		trainees := NewMockTraineeRepo()
		pusher := &MockPusher{}
		uc := usecase.NewNotificationUseCase(notifications, trainees, pusher, newTestLogger())

		note, err := uc.Persist(ctx, "trainee-1", model.NotificationAnnouncement, "Hello", "World", nil)
		if err != nil {
			t.Fatalf("persist: %v", err)
		}

		// --- Act / Assert ---
		if err := uc.MarkRead(ctx, "intruder", note.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("foreign user must not mark read; got: %v", err)
		}
		if err := uc.MarkRead(ctx, "trainee-1", note.ID); err != nil {
			t.Fatalf("owner mark read failed: %v", err)
		}
		if cnt, _ := uc.UnreadCount(ctx, "trainee-1"); cnt != 0 {
			t.Errorf("expected unread count 0, got %d", cnt)
		}
	})
}
