package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/repository"
)

// In-memory repositories backing the service tests. Only the behavior the
// services rely on is modeled.

type fakeComplaintRepo struct {
	items map[string]domain.Complaint
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{items: make(map[string]domain.Complaint)}
}

func (r *fakeComplaintRepo) Create(_ context.Context, c *domain.Complaint) error {
	c.ID = uuid.NewString()
	c.SubmittedAt = time.Now()
	c.UpdatedAt = c.SubmittedAt
	r.items[c.ID] = *c
	return nil
}

func (r *fakeComplaintRepo) Update(_ context.Context, c *domain.Complaint) error {
	if _, ok := r.items[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	c.UpdatedAt = time.Now()
	r.items[c.ID] = *c
	return nil
}

func (r *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := c
	return &copied, nil
}

func (r *fakeComplaintRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for _, c := range r.items {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.AssignedTo != nil && (c.AssignedTo == nil || *c.AssignedTo != *filter.AssignedTo) {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (r *fakeComplaintRepo) CountActiveByAssignee(_ context.Context, adminID string) (int, error) {
	count := 0
	for _, c := range r.items {
		if c.AssignedTo != nil && *c.AssignedTo == adminID &&
			c.Status != domain.StatusClosed && c.Status != domain.StatusResolved {
			count++
		}
	}
	return count, nil
}

func (r *fakeComplaintRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, c := range r.items {
		if c.UserID == userID {
			delete(r.items, id)
		}
	}
	return nil
}

type fakeHistoryRepo struct {
	entries []domain.ComplaintHistoryEntry
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.ComplaintHistoryEntry) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintHistoryEntry, error) {
	var result []domain.ComplaintHistoryEntry
	for _, entry := range r.entries {
		if entry.ComplaintID == complaintID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeHistoryRepo) DeleteByUser(context.Context, string) error { return nil }

type fakeReassignmentRepo struct {
	records []domain.ReassignmentRecord
}

func (r *fakeReassignmentRepo) Create(_ context.Context, record *domain.ReassignmentRecord) error {
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now()
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeReassignmentRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ReassignmentRecord, error) {
	var result []domain.ReassignmentRecord
	for _, record := range r.records {
		if record.ComplaintID == complaintID {
			result = append(result, record)
		}
	}
	return result, nil
}

func (r *fakeReassignmentRepo) DeleteByUser(context.Context, string) error { return nil }

type fakeReopenRepo struct {
	items map[string]domain.ReopenRequest
}

func newFakeReopenRepo() *fakeReopenRepo {
	return &fakeReopenRepo{items: make(map[string]domain.ReopenRequest)}
}

func (r *fakeReopenRepo) Create(_ context.Context, request *domain.ReopenRequest) error {
	request.ID = uuid.NewString()
	request.CreatedAt = time.Now()
	r.items[request.ID] = *request
	return nil
}

func (r *fakeReopenRepo) Update(_ context.Context, request *domain.ReopenRequest) error {
	if _, ok := r.items[request.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.items[request.ID] = *request
	return nil
}

func (r *fakeReopenRepo) GetByID(_ context.Context, id string) (*domain.ReopenRequest, error) {
	request, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := request
	return &copied, nil
}

func (r *fakeReopenRepo) GetPendingByComplaint(_ context.Context, complaintID string) (*domain.ReopenRequest, error) {
	for _, request := range r.items {
		if request.ComplaintID == complaintID && request.Status == domain.ReopenPending {
			copied := request
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeReopenRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ReopenRequest, error) {
	var result []domain.ReopenRequest
	for _, request := range r.items {
		if request.ComplaintID == complaintID {
			result = append(result, request)
		}
	}
	return result, nil
}

func (r *fakeReopenRepo) DeleteByUser(context.Context, string) error { return nil }

type fakeApprovalRepo struct {
	records []domain.ApprovalDecisionRecord
}

func (r *fakeApprovalRepo) Create(_ context.Context, record *domain.ApprovalDecisionRecord) error {
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now()
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeApprovalRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ApprovalDecisionRecord, error) {
	var result []domain.ApprovalDecisionRecord
	for _, record := range r.records {
		if record.ComplaintID == complaintID {
			result = append(result, record)
		}
	}
	return result, nil
}

func (r *fakeApprovalRepo) CountByAction(context.Context) (map[domain.ApprovalAction]int, error) {
	stats := make(map[domain.ApprovalAction]int)
	for _, record := range r.records {
		stats[record.Action]++
	}
	return stats, nil
}

func (r *fakeApprovalRepo) DeleteByUser(context.Context, string) error { return nil }

type fakeCommentRepo struct {
	comments []domain.ComplaintComment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.ComplaintComment) error {
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintComment, error) {
	var result []domain.ComplaintComment
	for _, comment := range r.comments {
		if comment.ComplaintID == complaintID {
			result = append(result, comment)
		}
	}
	return result, nil
}

func (r *fakeCommentRepo) DeleteByUser(context.Context, string) error { return nil }

type fakeNotificationRepo struct {
	complaints    *fakeComplaintRepo
	notifications []domain.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]domain.Notification, error) {
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, userID, notificationID string) error {
	for i, n := range r.notifications {
		if n.ID == notificationID && n.UserID == userID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i, n := range r.notifications {
		if n.UserID == userID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) DeleteByUser(_ context.Context, userID string) error {
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.UserID == userID {
			continue
		}
		if n.ComplaintID != nil && r.complaints != nil {
			if c, ok := r.complaints.items[*n.ComplaintID]; ok && c.UserID == userID {
				continue
			}
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return nil
}

type fakeUserRepo struct {
	items map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.items[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.items[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.items[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.items {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListSuperAdmins(context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.items {
		if user.IsSuperAdmin() && user.Status == domain.UserStatusActive {
			result = append(result, user)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) ListAdminsWithWorkload(context.Context) ([]repository.AdminWorkload, error) {
	var result []repository.AdminWorkload
	for _, user := range r.items {
		if user.IsAdmin() {
			result = append(result, repository.AdminWorkload{
				AdminID:    user.ID,
				FullName:   user.FullName,
				Email:      user.Email,
				AdminLevel: user.AdminLevel,
			})
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type fakeCategoryRepo struct {
	items map[string]domain.Category
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	category, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := category
	return &copied, nil
}

func (r *fakeCategoryRepo) ListActive(context.Context) ([]domain.Category, error) {
	var result []domain.Category
	for _, category := range r.items {
		if category.IsActive {
			result = append(result, category)
		}
	}
	return result, nil
}

type fakePasswordResetRepo struct {
	tokens map[string]repository.PasswordResetToken
}

func newFakePasswordResetRepo() *fakePasswordResetRepo {
	return &fakePasswordResetRepo{tokens: make(map[string]repository.PasswordResetToken)}
}

func (r *fakePasswordResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	r.tokens[token.ID] = *token
	return nil
}

func (r *fakePasswordResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	for _, token := range r.tokens {
		if token.Token == tokenStr {
			copied := token
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePasswordResetRepo) MarkUsed(_ context.Context, id string) error {
	token, ok := r.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	r.tokens[id] = token
	return nil
}

func (r *fakePasswordResetRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

// fakeUnitOfWork runs the closure against the same repositories; the tests
// assert on business semantics, not transactional isolation.
type fakeUnitOfWork struct {
	repos repository.Repositories
}

func (u *fakeUnitOfWork) WithinTx(_ context.Context, fn func(repository.Repositories) error) error {
	return fn(u.repos)
}

// testEnv bundles a full in-memory wiring of the lifecycle services.
type testEnv struct {
	repos       repository.Repositories
	uow         repository.UnitOfWork
	complaints  *ComplaintService
	approvals   *ApprovalService
	assignments *AssignmentService
	locks       *LockService
	reopens     *ReopenService
	users       *fakeUserRepo
}

func newTestEnv() *testEnv {
	users := newFakeUserRepo()
	complaints := newFakeComplaintRepo()
	repos := repository.Repositories{
		Complaints:     complaints,
		History:        &fakeHistoryRepo{},
		Reassignments:  &fakeReassignmentRepo{},
		Reopens:        newFakeReopenRepo(),
		Approvals:      &fakeApprovalRepo{},
		Comments:       &fakeCommentRepo{},
		Notifications:  &fakeNotificationRepo{complaints: complaints},
		Users:          users,
		Categories:     &fakeCategoryRepo{items: map[string]domain.Category{}},
		PasswordResets: newFakePasswordResetRepo(),
	}
	uow := &fakeUnitOfWork{repos: repos}

	return &testEnv{
		repos: repos,
		uow:   uow,
		complaints: NewComplaintService(ComplaintDependencies{
			Repos:      repos,
			UnitOfWork: uow,
			Rules:      domain.DefaultRules(),
		}),
		approvals: NewApprovalService(ApprovalDependencies{
			Repos:      repos,
			UnitOfWork: uow,
		}),
		assignments: NewAssignmentService(AssignmentDependencies{
			Repos:      repos,
			UnitOfWork: uow,
		}),
		locks: NewLockService(LockDependencies{
			Repos:      repos,
			UnitOfWork: uow,
		}),
		reopens: NewReopenService(ReopenDependencies{
			Repos:      repos,
			UnitOfWork: uow,
		}),
		users: users,
	}
}

func (e *testEnv) addUser(name string, role domain.Role, level domain.AdminLevel) *domain.User {
	user := &domain.User{
		FullName:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		AdminLevel:   level,
		Status:       domain.UserStatusActive,
	}
	_ = e.users.Create(context.Background(), user)
	return user
}

func (e *testEnv) submitComplaint(owner *domain.User) *domain.Complaint {
	complaint, err := e.complaints.Submit(context.Background(), owner.ID, SubmitInput{
		Subject:     "Broken invoice",
		Description: "The invoice total is wrong.",
		Priority:    domain.PriorityMedium,
	})
	if err != nil {
		panic(err)
	}
	return complaint
}
