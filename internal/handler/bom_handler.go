package handler

import (
	"encoding/json"
	"sort"
	"strings"

	"go-bom-graph/internal/bomgraph"
	"go-bom-graph/internal/model"
	"go-bom-graph/internal/service"
	"go-bom-graph/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type BomHandler struct {
	bom  service.BomService
	tree service.TreeService
	log  *logger.Logger
}

func NewBomHandler(bom service.BomService, tree service.TreeService, log *logger.Logger) *BomHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &BomHandler{bom: bom, tree: tree, log: log}
}

type createLinkRequest struct {
	ChildID  string       `json:"childId" validate:"notblank_trim,max=32"`
	Quantity *json.Number `json:"quantity"`
}

type updateLinkRequest struct {
	Quantity *json.Number `json:"quantity"`
}

// GetTree handles GET /api/v1/parts/:id/tree?depth=&nodeLimit=
func (h *BomHandler) GetTree(c *fiber.Ctx) error {
	limits, err := bomgraph.ParseLimits(c.Query("depth"), c.Query("nodeLimit"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	tree, err := h.tree.GetTree(c.UserContext(), c.Params("id"), limits)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(tree)
}

// GetChildren handles GET /api/v1/parts/:id/children, ordered by part number.
func (h *BomHandler) GetChildren(c *fiber.Ctx) error {
	links, err := h.bom.GetChildLinks(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	children := make([]model.LinkedPart, 0, len(links))
	for _, link := range links {
		if link.Child == nil {
			continue
		}
		children = append(children, model.LinkedPart{PartSummary: link.Child.Summary(), Quantity: link.Quantity})
	}
	return c.JSON(children)
}

// GetParents handles GET /api/v1/parts/:id/parents and returns parent ids.
func (h *BomHandler) GetParents(c *fiber.Ctx) error {
	set, err := h.bom.GetParentIDs(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return c.JSON(fiber.Map{"parentIds": ids})
}

// CreateLink handles POST /api/v1/parts/:id/children
func (h *BomHandler) CreateLink(c *fiber.Ctx) error {
	var req createLinkRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	quantity := quantityValue(req.Quantity, service.DefaultQuantity)
	link, err := h.bom.CreateLink(c.UserContext(), c.Params("id"), strings.TrimSpace(req.ChildID), quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "BOM link created", "data": link})
}

// UpdateLink handles PUT /api/v1/parts/:id/children/:childId
func (h *BomHandler) UpdateLink(c *fiber.Ctx) error {
	var req updateLinkRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	link, err := h.bom.UpdateLink(c.UserContext(), c.Params("id"), c.Params("childId"), quantityValue(req.Quantity, 0))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "BOM link updated", "data": link})
}

// RemoveLink handles DELETE /api/v1/parts/:id/children/:childId
func (h *BomHandler) RemoveLink(c *fiber.Ctx) error {
	if err := h.bom.RemoveLink(c.UserContext(), c.Params("id"), c.Params("childId")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "BOM link removed"})
}
