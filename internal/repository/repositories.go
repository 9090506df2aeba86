package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs both standalone and inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles all repositories bound to one DBTX.
type Repositories struct {
	Complaints     ComplaintRepository
	History        HistoryRepository
	Reassignments  ReassignmentRepository
	Reopens        ReopenRequestRepository
	Approvals      ApprovalRepository
	Comments       CommentRepository
	Notifications  NotificationRepository
	Users          UserRepository
	Categories     CategoryRepository
	Rules          RuleRepository
	PasswordResets PasswordResetRepository
}

// NewRepositories binds every repository to the given query surface.
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Complaints:     NewComplaintRepository(db),
		History:        NewHistoryRepository(db),
		Reassignments:  NewReassignmentRepository(db),
		Reopens:        NewReopenRequestRepository(db),
		Approvals:      NewApprovalRepository(db),
		Comments:       NewCommentRepository(db),
		Notifications:  NewNotificationRepository(db),
		Users:          NewUserRepository(db),
		Categories:     NewCategoryRepository(db),
		Rules:          NewRuleRepository(db),
		PasswordResets: NewPasswordResetRepository(db),
	}
}

// UnitOfWork runs a function with repositories bound to a single
// transaction. Every multi-step mutation in the engine goes through this so
// either all effects commit or none do.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

type pgxUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork builds a pgx-backed unit of work.
func NewUnitOfWork(pool *pgxpool.Pool) UnitOfWork {
	return &pgxUnitOfWork{pool: pool}
}

func (u *pgxUnitOfWork) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
