package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-tools/ticket-triage/internal/api/dto"
	"github.com/helpdesk-tools/ticket-triage/internal/domain"
	"github.com/helpdesk-tools/ticket-triage/internal/service"
	apperrors "github.com/helpdesk-tools/ticket-triage/pkg/util/errorutil"
)

// TriageHandler serves ad-hoc predictions.
type TriageHandler struct {
	triage *service.TriageService
}

func NewTriageHandler(triageService *service.TriageService) *TriageHandler {
	return &TriageHandler{triage: triageService}
}

// Triage POST /tickets/triage. Accepts a JSON body or title/description
// query parameters.
func (h *TriageHandler) Triage(c *fiber.Ctx) error {
	var req dto.TriageRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if req.Title == "" && req.Description == "" {
		if err := c.QueryParser(&req); err != nil {
			return apperrors.NewValidationError("invalid query", nil)
		}
	}

	result := h.triage.Triage(c.UserContext(), req.Title, req.Description)
	return c.JSON(fiber.Map{"data": dto.TriageResponse{
		Title:             req.Title,
		Description:       req.Description,
		PredictedCategory: result.Category,
		PredictedPriority: domain.TicketPriority(result.Priority),
		ModelVersion:      h.triage.ModelVersion(),
	}})
}
