package services

import (
	"context"
	"strings"

	"vyruchaiBack/internal/fsm"
	"vyruchaiBack/internal/models"
)

type ReviewStore interface {
	CreateReview(ctx context.Context, review models.Review) (models.Review, error)
	HasReview(ctx context.Context, taskID, fromUserID, toUserID int) (bool, error)
	GetReviewsByUserID(ctx context.Context, toUserID int) ([]models.Review, error)
}

type RatingStore interface {
	RefreshRating(ctx context.Context, userID int) error
}

type ReviewService struct {
	ReviewRepo ReviewStore
	TaskRepo   ChatTaskStore
	UserRepo   RatingStore
}

// CreateReview lets the two participants of a completed task rate each
// other, once per direction. The target's aggregate rating is
// recomputed after the insert.
func (s *ReviewService) CreateReview(ctx context.Context, fromUserID int, review models.Review) (models.Review, error) {
	review.FromUserID = fromUserID

	if review.Rating < 1 || review.Rating > 5 {
		return models.Review{}, models.NewValidationError("rating", "Оценка должна быть от 1 до 5")
	}
	if review.Comment != nil {
		trimmed := strings.TrimSpace(*review.Comment)
		if len([]rune(trimmed)) > 1000 {
			return models.Review{}, models.NewValidationError("comment", "Комментарий не должен превышать 1000 символов")
		}
		if trimmed == "" {
			review.Comment = nil
		} else {
			review.Comment = &trimmed
		}
	}

	task, err := s.TaskRepo.GetTaskByID(ctx, review.TaskID)
	if err != nil {
		return models.Review{}, err
	}
	if task.Status != fsm.StatusCompleted {
		return models.Review{}, models.ErrTaskNotCompleted
	}
	if task.ExecutorID == nil {
		return models.Review{}, models.ErrNotTaskParticipant
	}

	// The reviewer must be one side of the task and the target the other.
	owner, executor := task.UserID, *task.ExecutorID
	switch fromUserID {
	case owner:
		review.ToUserID = executor
	case executor:
		review.ToUserID = owner
	default:
		return models.Review{}, models.ErrNotTaskParticipant
	}

	exists, err := s.ReviewRepo.HasReview(ctx, review.TaskID, review.FromUserID, review.ToUserID)
	if err != nil {
		return models.Review{}, err
	}
	if exists {
		return models.Review{}, models.ErrDuplicateReview
	}

	created, err := s.ReviewRepo.CreateReview(ctx, review)
	if err != nil {
		return models.Review{}, err
	}

	if err := s.UserRepo.RefreshRating(ctx, review.ToUserID); err != nil {
		return models.Review{}, err
	}
	return created, nil
}

func (s *ReviewService) GetReviewsByUserID(ctx context.Context, toUserID int) ([]models.Review, error) {
	return s.ReviewRepo.GetReviewsByUserID(ctx, toUserID)
}
