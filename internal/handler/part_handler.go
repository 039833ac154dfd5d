package handler

import (
	"strconv"

	"go-bom-graph/internal/repository"
	"go-bom-graph/internal/service"
	"go-bom-graph/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type PartHandler struct {
	service service.PartService
	log     *logger.Logger
}

func NewPartHandler(s service.PartService, log *logger.Logger) *PartHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PartHandler{service: s, log: log}
}

type createPartRequest struct {
	Name        string  `json:"name" validate:"max=255"`
	PartNumber  *string `json:"partNumber" validate:"omitempty,max=64"`
	Description *string `json:"description"`
}

type updatePartRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	PartNumber  *string `json:"partNumber" validate:"omitempty,max=64"`
	Description *string `json:"description"`
}

// SearchParts handles GET /api/v1/parts?partNumber=&name=&q=
func (h *PartHandler) SearchParts(c *fiber.Ctx) error {
	filter := repository.PartFilter{
		PartNumber: c.Query("partNumber"),
		Name:       c.Query("name"),
		Q:          c.Query("q"),
	}
	parts, err := h.service.SearchParts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(parts)
}

// CreatePart handles POST /api/v1/parts
func (h *PartHandler) CreatePart(c *fiber.Ctx) error {
	var req createPartRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	part, err := h.service.CreatePart(c.UserContext(), service.CreatePartInput{
		Name:        req.Name,
		PartNumber:  req.PartNumber,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Part created", "data": part})
}

// GetPart handles GET /api/v1/parts/:id and returns the details view.
func (h *PartHandler) GetPart(c *fiber.Ctx) error {
	details, err := h.service.GetPartDetails(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(details)
}

// UpdatePart handles PUT and PATCH /api/v1/parts/:id. Omitted fields are
// left unchanged.
func (h *PartHandler) UpdatePart(c *fiber.Ctx) error {
	var req updatePartRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	part, err := h.service.UpdatePart(c.UserContext(), c.Params("id"), service.UpdatePartInput{
		Name:        req.Name,
		Description: req.Description,
		PartNumber:  req.PartNumber,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Part updated", "data": part})
}

// GetAudit handles GET /api/v1/parts/:id/audit?limit=
func (h *PartHandler) GetAudit(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}
	entries, err := h.service.ListAudit(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(entries)
}
