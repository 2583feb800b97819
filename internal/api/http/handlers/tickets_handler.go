package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// dateLayouts are accepted for startDate and endDate, most specific first.
// Values without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTicketResponse(ticket))
}

// StartTicket PATCH /tickets/:id/start.
func (h *TicketsHandler) StartTicket(c *fiber.Ctx) error {
	ticket, err := h.service.StartTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// CompleteTicket PATCH /tickets/:id/complete.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	var req dto.CompleteTicketRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CompleteTicket(c.UserContext(), c.Params("id"), req.Resolution)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// CancelTicket PATCH /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	var req dto.CancelTicketRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CancelTicket(c.UserContext(), c.Params("id"), req.CancellationReason)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// CancelAllInProgress PATCH /tickets/cancel-all.
func (h *TicketsHandler) CancelAllInProgress(c *fiber.Ctx) error {
	var req dto.CancelTicketRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}
	count, err := h.service.CancelAllInProgress(c.UserContext(), req.CancellationReason)
	if err != nil {
		return err
	}
	return c.JSON(dto.CancelAllResponse{ModifiedCount: count})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var dates domain.DateRange
	var err error
	if dates.From, err = parseDate("startDate", c.Query("startDate")); err != nil {
		return err
	}
	if dates.To, err = parseDate("endDate", c.Query("endDate")); err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), dates)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(items)
}

// parseOptionalBody decodes a JSON body when one was sent; an empty body
// leaves out untouched.
func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func parseDate(name, val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("invalid date", map[string]any{name: val})
}
