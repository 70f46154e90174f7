package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/pkg/cache"
	notifRepo "anoa.com/akademia/internal/modules/notification/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier is what the mutation services depend on: every mutation, whether
// it succeeded or failed, records exactly one notice for the actor.
type Notifier interface {
	Success(ctx context.Context, userID uuid.UUID, entityTag cache.Entity, entityID uuid.UUID, message string)
	Error(ctx context.Context, userID uuid.UUID, entityTag cache.Entity, message string)
}

type NotificationService interface {
	Notifier
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

// Channel returns the per-user pub/sub channel the websocket stream listens on.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notices:%s", userID.String())
}

func (s *notificationService) Success(ctx context.Context, userID uuid.UUID, entityTag cache.Entity, entityID uuid.UUID, message string) {
	s.record(ctx, &entity.Notification{
		UserID:     userID,
		EntityType: string(entityTag),
		EntityID:   entityID,
		Level:      entity.NoticeSuccess,
		Message:    message,
	})
}

func (s *notificationService) Error(ctx context.Context, userID uuid.UUID, entityTag cache.Entity, message string) {
	s.record(ctx, &entity.Notification{
		UserID:     userID,
		EntityType: string(entityTag),
		Level:      entity.NoticeError,
		Message:    message,
	})
}

// record persists the notice and pushes it to the live stream. A notice is
// best-effort: failing to record one never fails the mutation it describes.
func (s *notificationService) record(ctx context.Context, notification *entity.Notification) {
	if err := s.repo.Create(ctx, notification); err != nil {
		log.Printf("failed to persist notification: %v", err)
		return
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			s.redisClient.Publish(ctx, Channel(notification.UserID), payload)
		}
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.FindByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
