package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/repository"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// AccountService removes an account and everything hanging off it in one
// transaction. Deletion order follows the foreign keys from leaves to root.
type AccountService struct {
	uow    repository.UnitOfWork
	logger *zap.Logger
}

// NewAccountService constructs the service.
func NewAccountService(uow repository.UnitOfWork, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{uow: uow, logger: logger}
}

// DeleteAccount removes the user and all dependent rows atomically.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Users.GetByID(ctx, userID); err != nil {
			return notFoundOr(err, "user")
		}
		if err := tx.Notifications.DeleteByUser(ctx, userID); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.Reopens.DeleteByUser(ctx, userID); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.History.DeleteByUser(ctx, userID); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.Reassignments.DeleteByUser(ctx, userID); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.Approvals.DeleteByUser(ctx, userID); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.Comments.DeleteByUser(ctx, userID); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.PasswordResets.DeleteByUser(ctx, userID); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.Complaints.DeleteByUser(ctx, userID); err != nil {
			return apperrors.MapError(err)
		}
		return apperrors.MapError(tx.Users.Delete(ctx, userID))
	})
	if err != nil {
		return err
	}
	s.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}
