package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// AdminWorkload summarizes one admin's active load for display.
type AdminWorkload struct {
	AdminID          string
	FullName         string
	Email            string
	AdminLevel       domain.AdminLevel
	ActiveComplaints int
	TotalAssigned    int
}

// UserRepository encapsulates account persistence for users and admins.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListSuperAdmins(ctx context.Context) ([]domain.User, error)
	ListAdminsWithWorkload(ctx context.Context) ([]AdminWorkload, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository instantiates repository.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, full_name, email, phone, password_hash, role, admin_level, status, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (full_name, email, phone, password_hash, role, admin_level, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		user.FullName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.AdminLevel,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET full_name=$1, email=$2, phone=$3, password_hash=$4,
            role=$5, admin_level=$6, status=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		user.FullName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.AdminLevel,
		user.Status,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.AdminLevel,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListSuperAdmins(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + `
        FROM users WHERE role='admin' AND admin_level='super_admin' AND status='active'`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.FullName,
			&user.Email,
			&user.Phone,
			&user.PasswordHash,
			&user.Role,
			&user.AdminLevel,
			&user.Status,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) ListAdminsWithWorkload(ctx context.Context) ([]AdminWorkload, error) {
	const query = `
        SELECT u.id, u.full_name, u.email, u.admin_level,
               COUNT(c.id) FILTER (WHERE c.status NOT IN ('Closed','Resolved')) AS active_complaints,
               COUNT(c.id) AS total_assigned
        FROM users u
        LEFT JOIN complaints c ON c.assigned_to = u.id
        WHERE u.role='admin' AND u.status='active'
        GROUP BY u.id, u.full_name, u.email, u.admin_level
        ORDER BY active_complaints ASC, u.full_name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AdminWorkload
	for rows.Next() {
		var w AdminWorkload
		if err := rows.Scan(
			&w.AdminID,
			&w.FullName,
			&w.Email,
			&w.AdminLevel,
			&w.ActiveComplaints,
			&w.TotalAssigned,
		); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
