package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/api/dto"
	"github.com/spec-kit/complaint-portal/internal/auth"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/service"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// AdminComplaintsHandler serves the admin side: review, assignment, status
// changes, locking and the reopen queue.
type AdminComplaintsHandler struct {
	complaints  *service.ComplaintService
	approvals   *service.ApprovalService
	assignments *service.AssignmentService
	locks       *service.LockService
	reopens     *service.ReopenService
}

// NewAdminComplaintsHandler constructs handler.
func NewAdminComplaintsHandler(
	complaints *service.ComplaintService,
	approvals *service.ApprovalService,
	assignments *service.AssignmentService,
	locks *service.LockService,
	reopens *service.ReopenService,
) *AdminComplaintsHandler {
	return &AdminComplaintsHandler{
		complaints:  complaints,
		approvals:   approvals,
		assignments: assignments,
		locks:       locks,
		reopens:     reopens,
	}
}

// List GET /admin/complaints.
func (h *AdminComplaintsHandler) List(c *fiber.Ctx) error {
	complaints, err := h.complaints.ListForAdmin(c.Context(), parseComplaintQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, dto.NewComplaintSummary(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /admin/complaints/:id.
func (h *AdminComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	complaint, err := h.complaints.GetForAdmin(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	history, err := h.complaints.History(c.Context(), complaint.ID)
	if err != nil {
		return err
	}
	decision, err := h.complaints.CanModifyQuery(c.Context(), principal.Actor(), complaint.ID)
	if err != nil {
		return err
	}
	historyItems := make([]dto.HistoryEntryResponse, 0, len(history))
	for i := range history {
		historyItems = append(historyItems, dto.NewHistoryEntry(&history[i]))
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewComplaintDetail(complaint),
		"history": historyItems,
		"can_modify": dto.ModifyDecisionResponse{
			Allowed: decision.Allowed,
			Reason:  decision.Reason,
		},
	})
}

// ChangeStatus POST /admin/complaints/:id/status.
func (h *AdminComplaintsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.complaints.ChangeStatus(c.Context(), principal.Actor(), c.Params("id"), domain.ComplaintStatus(req.Status), req.Response)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// AllowedTransitions GET /admin/complaints/:id/transitions.
func (h *AdminComplaintsHandler) AllowedTransitions(c *fiber.Ctx) error {
	edges, err := h.complaints.AllowedNextStatuses(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AllowedTransitionResponse, 0, len(edges))
	for _, edge := range edges {
		items = append(items, dto.AllowedTransitionResponse{
			Status:     string(edge.Next),
			Reversible: edge.Reversible,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Approve POST /admin/complaints/:id/approve.
func (h *AdminComplaintsHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	complaint, err := h.approvals.Approve(c.Context(), principal.Actor(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// Reject POST /admin/complaints/:id/reject.
func (h *AdminComplaintsHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.approvals.Reject(c.Context(), principal.Actor(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// RequestChanges POST /admin/complaints/:id/request-changes.
func (h *AdminComplaintsHandler) RequestChanges(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.approvals.RequestChanges(c.Context(), principal.Actor(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// Assign POST /admin/complaints/:id/assign.
func (h *AdminComplaintsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.assignments.Assign(c.Context(), principal.Actor(), c.Params("id"), req.AdminID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// Lock POST /admin/complaints/:id/lock.
func (h *AdminComplaintsHandler) Lock(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.locks.Lock(c.Context(), principal.Actor(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// Unlock POST /admin/complaints/:id/unlock.
func (h *AdminComplaintsHandler) Unlock(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.locks.Unlock(c.Context(), principal.Actor(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// AddComment POST /admin/complaints/:id/comments.
func (h *AdminComplaintsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.complaints.AddComment(c.Context(), principal.Actor(), true, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewComment(comment)})
}

// Reassignments GET /admin/complaints/:id/reassignments.
func (h *AdminComplaintsHandler) Reassignments(c *fiber.Ctx) error {
	records, err := h.assignments.ReassignmentHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ReassignmentResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.NewReassignment(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ReopenRequests GET /admin/complaints/:id/reopen-requests.
func (h *AdminComplaintsHandler) ReopenRequests(c *fiber.Ctx) error {
	requests, err := h.reopens.List(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ReopenRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewReopenRequest(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ApproveReopen POST /admin/reopen-requests/:id/approve.
func (h *AdminComplaintsHandler) ApproveReopen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ReasonRequest
	_ = c.BodyParser(&req)
	request, err := h.reopens.Approve(c.Context(), principal.Actor(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReopenRequest(request)})
}

// RejectReopen POST /admin/reopen-requests/:id/reject.
func (h *AdminComplaintsHandler) RejectReopen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.reopens.Reject(c.Context(), principal.Actor(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReopenRequest(request)})
}

// Workloads GET /admin/workloads.
func (h *AdminComplaintsHandler) Workloads(c *fiber.Ctx) error {
	workloads, err := h.assignments.AdminsWithWorkload(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.AdminWorkloadResponse, 0, len(workloads))
	for _, w := range workloads {
		items = append(items, dto.AdminWorkloadResponse{
			AdminID:          w.AdminID,
			FullName:         w.FullName,
			Email:            w.Email,
			AdminLevel:       string(w.AdminLevel),
			ActiveComplaints: w.ActiveComplaints,
			TotalAssigned:    w.TotalAssigned,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ApprovalStats GET /admin/approval-stats.
func (h *AdminComplaintsHandler) ApprovalStats(c *fiber.Ctx) error {
	stats, err := h.approvals.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
