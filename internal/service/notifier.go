package service

import (
	"context"
	"fmt"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"

	"golang.org/x/sync/errgroup"
)

const adminFanOutLimit = 4

type notifier struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc EmailService
}

// NewNotifier persists notifications and mirrors them to email when
// emailSvc is non-nil.
func NewNotifier(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc EmailService) NotificationCenter {
	return &notifier{noteRepo: noteRepo, userRepo: userRepo, emailSvc: emailSvc}
}

func (n *notifier) Notify(ctx context.Context, userID int32, kind domain.NotificationKind, title, body, link string) {
	if err := n.deliver(ctx, userID, kind, title, body, link); err != nil {
		logger.Warn("Notification delivery failed", "userID", userID, "kind", kind, "error", err)
	}
}

// NotifyAdmins fans the same message out to every admin concurrently.
func (n *notifier) NotifyAdmins(ctx context.Context, kind domain.NotificationKind, title, body, link string) {
	admins, err := n.userRepo.ListByRole(ctx, domain.UserRoleAdmin)
	if err != nil {
		logger.Warn("Failed to list admins for notification", "kind", kind, "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(adminFanOutLimit)
	for _, admin := range admins {
		admin := admin
		g.Go(func() error {
			if err := n.deliver(gctx, admin.ID, kind, title, body, link); err != nil {
				logger.Warn("Admin notification delivery failed", "adminID", admin.ID, "kind", kind, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (n *notifier) deliver(ctx context.Context, userID int32, kind domain.NotificationKind, title, body, link string) error {
	note := &domain.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: body,
		Link:    link,
		Attributes: map[string]string{
			"type": string(kind),
		},
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if n.emailSvc == nil {
		return nil
	}
	user, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	return n.emailSvc.Send(ctx, user.Email, user.Name, title, body)
}

func (n *notifier) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return n.noteRepo.List(ctx, userID, pageSize, offset)
}

func (n *notifier) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return n.noteRepo.MarkAsRead(ctx, notificationID, userID)
}
