package service

import (
	"context"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
)

type activityLogger struct {
	activityRepo repository.ActivityRepository
}

func NewActivityLogger(activityRepo repository.ActivityRepository) ActivityLogger {
	return &activityLogger{activityRepo: activityRepo}
}

func (l *activityLogger) LogActivity(ctx context.Context, action, subjectType string, subjectID int32, description string, properties map[string]any, userID *int32) {
	entry := &domain.ActivityLog{
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Description: description,
		Properties:  properties,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := l.activityRepo.Create(ctx, entry); err != nil {
		logger.Warn("Failed to record activity", "action", action, "subjectType", subjectType, "subjectID", subjectID, "error", err)
	}
}
