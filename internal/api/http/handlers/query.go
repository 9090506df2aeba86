package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/repository"
)

func parseComplaintQuery(c *fiber.Ctx) repository.ComplaintFilter {
	filter := repository.ComplaintFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ComplaintStatus(strings.TrimSpace(part)))
		}
	}
	if approvalStr := c.Query("approval_status"); approvalStr != "" {
		for _, part := range strings.Split(approvalStr, ",") {
			filter.ApprovalStatuses = append(filter.ApprovalStatuses, domain.ApprovalStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.ComplaintPriority(strings.TrimSpace(part)))
		}
	}
	if category := c.Query("category_id"); category != "" {
		filter.CategoryID = &category
	}
	if assigned := c.Query("assigned_to"); assigned != "" {
		filter.AssignedTo = &assigned
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if lockedStr := c.Query("locked"); lockedStr != "" {
		if locked, err := strconv.ParseBool(lockedStr); err == nil {
			filter.Locked = &locked
		}
	}
	if from := parseTime(c.Query("submitted_from")); from != nil {
		filter.SubmittedFrom = from
	}
	if to := parseTime(c.Query("submitted_to")); to != nil {
		filter.SubmittedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
