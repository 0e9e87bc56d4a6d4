package services

import (
	"context"
	"fmt"
	"log"

	"github.com/yukikurage/timetrack-api/internal/mail"
	"github.com/yukikurage/timetrack-api/internal/models"
)

// NotificationService sends mail about task events. Delivery failures are
// logged and never reach the caller.
type NotificationService struct {
	sender mail.Sender
	from   string
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(sender mail.Sender, from string) *NotificationService {
	return &NotificationService{
		sender: sender,
		from:   from,
	}
}

// TaskCompleted mails the assignee that the task was completed.
// The task must carry its Project and AssignedTo relations.
func (s *NotificationService) TaskCompleted(ctx context.Context, task *models.Task) {
	if task.AssignedTo.Email == "" {
		log.Printf("skipping completion mail for task %d: assignee has no email", task.ID)
		return
	}

	msg := mail.Message{
		Subject: fmt.Sprintf("Task completed: %s", task.Title),
		Body: fmt.Sprintf("The task %q in project %q has been marked as completed.",
			task.Title, task.Project.Name),
		From: s.from,
		To:   []string{task.AssignedTo.Email},
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		log.Printf("failed to send completion mail for task %d: %v", task.ID, err)
	}
}
