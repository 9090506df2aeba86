package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/api/dto"
	"github.com/spec-kit/complaint-portal/internal/auth"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/service"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// ComplaintsHandler serves the end-user side of the portal.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	approvals  *service.ApprovalService
	reopens    *service.ReopenService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, approvals *service.ApprovalService, reopens *service.ReopenService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, approvals: approvals, reopens: reopens}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.complaints.Submit(c.Context(), principal.UserID, service.SubmitInput{
		CategoryID:  req.CategoryID,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    domain.ComplaintPriority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	complaints, err := h.complaints.ListForUser(c.Context(), principal.UserID, parseComplaintQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, dto.NewComplaintSummary(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.complaints.GetForUser(c.Context(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	history, err := h.complaints.History(c.Context(), complaint.ID)
	if err != nil {
		return err
	}
	comments, err := h.complaints.Comments(c.Context(), complaint.ID)
	if err != nil {
		return err
	}
	historyItems := make([]dto.HistoryEntryResponse, 0, len(history))
	for i := range history {
		historyItems = append(historyItems, dto.NewHistoryEntry(&history[i]))
	}
	commentItems := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		commentItems = append(commentItems, dto.NewComment(&comments[i]))
	}
	return c.JSON(fiber.Map{
		"data":     dto.NewComplaintDetail(complaint),
		"history":  historyItems,
		"comments": commentItems,
	})
}

// Update PUT /complaints/:id.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.complaints.Edit(c.Context(), principal.UserID, c.Params("id"), service.EditInput{
		CategoryID:  req.CategoryID,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    domain.ComplaintPriority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// Resubmit POST /complaints/:id/resubmit.
func (h *ComplaintsHandler) Resubmit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.approvals.Resubmit(c.Context(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// ConfirmResolution POST /complaints/:id/confirm-resolution.
func (h *ComplaintsHandler) ConfirmResolution(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.complaints.ConfirmResolution(c.Context(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// Rate POST /complaints/:id/rating.
func (h *ComplaintsHandler) Rate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RatingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.complaints.SubmitRating(c.Context(), principal.UserID, c.Params("id"), req.Rating, req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint)})
}

// AddComment POST /complaints/:id/comments.
func (h *ComplaintsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.complaints.AddComment(c.Context(), principal.Actor(), false, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewComment(comment)})
}

// RequestReopen POST /complaints/:id/reopen.
func (h *ComplaintsHandler) RequestReopen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.reopens.Request(c.Context(), principal.UserID, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewReopenRequest(request)})
}

// Categories GET /categories.
func (h *ComplaintsHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.complaints.Categories(c.Context())
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(categories))
	for _, category := range categories {
		items = append(items, fiber.Map{
			"id":          category.ID,
			"name":        category.Name,
			"description": category.Description,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
