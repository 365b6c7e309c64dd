package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"talentforge/internal/domain"
	"talentforge/internal/dto"
	"talentforge/internal/service"
)

// AssessmentHandler handles assessment-related HTTP requests
type AssessmentHandler struct {
	service service.AssessmentService
}

func NewAssessmentHandler(service service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

// CreateAssessments handles POST /api/assessments. The request title may
// carry several comma-separated skills; each gets its own assessment.
func (h *AssessmentHandler) CreateAssessments(c *fiber.Ctx) error {
	var req dto.CreateAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.CreatedBy == "" {
		return domain.NewInvalidInputError("created_by is required")
	}
	skills := service.SplitSkills(req.Title)
	if len(skills) == 0 {
		return domain.NewInvalidInputError("title must name at least one skill")
	}

	difficulty := domain.DifficultyFromString(req.Difficulty)
	response := dto.CreateAssessmentResponse{}
	for _, skill := range skills {
		assessment, err := h.service.CreateOrReuseAssessment(c.UserContext(), req.CreatedBy, skill, difficulty, req.RelatedJobID)
		if err != nil {
			return err
		}
		response.Assessments = append(response.Assessments, dto.ToAssessmentSummary(assessment))
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// GetAssessment handles GET /api/assessments/:id. When the optional
// user_id query is present, the caller's relation status is included.
func (h *AssessmentHandler) GetAssessment(c *fiber.Ctx) error {
	id := c.Params("id")
	assessment, err := h.service.GetAssessment(c.UserContext(), id)
	if err != nil {
		return err
	}

	response := dto.ToAssessmentResponse(assessment)
	if userID := c.Query("user_id"); userID != "" {
		relations, err := h.service.ListUserAssessments(c.UserContext(), userID, nil)
		if err != nil {
			return err
		}
		for _, relation := range relations {
			if relation.AssessmentID == id {
				response.RelationStatus = string(relation.Status)
				break
			}
		}
	}
	return c.JSON(response)
}

// SubmitAssessment handles POST /api/assessments/:id/submissions.
func (h *AssessmentHandler) SubmitAssessment(c *fiber.Ctx) error {
	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.UserID == "" {
		return domain.NewInvalidInputError("user_id is required")
	}

	result, err := h.service.Submit(c.UserContext(), req.UserID, c.Params("id"), req.Answers)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToSubmitResponse(result))
}

// ListUserAssessments handles GET /api/users/:id/assessments. The
// optional status query narrows the list, e.g. ?status=PENDING,COMPLETED.
func (h *AssessmentHandler) ListUserAssessments(c *fiber.Ctx) error {
	userID := c.Params("id")
	statuses, err := parseStatusFilter(c.Query("status"))
	if err != nil {
		return err
	}

	relations, err := h.service.ListUserAssessments(c.UserContext(), userID, statuses)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToUserAssessmentsResponse(userID, relations))
}

// statusFilters enumerates the statuses accepted by the status query.
var statusFilters = func() map[domain.AssessmentStatus]struct{} {
	filters := make(map[domain.AssessmentStatus]struct{}, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		filters[status] = struct{}{}
	}
	return filters
}()

func parseStatusFilter(raw string) ([]domain.AssessmentStatus, error) {
	if raw == "" {
		return nil, nil
	}
	var statuses []domain.AssessmentStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		status := domain.AssessmentStatus(part)
		if _, ok := statusFilters[status]; !ok {
			return nil, domain.NewInvalidInputError("unknown status filter: " + part)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
