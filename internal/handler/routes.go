package handler

import "github.com/gofiber/fiber/v2"

type Handlers struct {
	Parts     *PartHandler
	Bom       *BomHandler
	Dashboard *DashboardHandler
}

// RegisterRoutes mounts the /api/v1 surface on router.
func RegisterRoutes(router fiber.Router, h Handlers) {
	api := router.Group("/api/v1")

	// Dashboard
	api.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	api.Get("/dashboard/activity", h.Dashboard.GetActivity)

	// Parts
	api.Get("/parts", h.Parts.SearchParts)
	api.Post("/parts", h.Parts.CreatePart)
	api.Get("/parts/:id", h.Parts.GetPart)
	api.Put("/parts/:id", h.Parts.UpdatePart)
	api.Patch("/parts/:id", h.Parts.UpdatePart)
	api.Get("/parts/:id/audit", h.Parts.GetAudit)

	// BOM structure
	api.Get("/parts/:id/tree", h.Bom.GetTree)
	api.Get("/parts/:id/children", h.Bom.GetChildren)
	api.Get("/parts/:id/parents", h.Bom.GetParents)
	api.Post("/parts/:id/children", h.Bom.CreateLink)
	api.Put("/parts/:id/children/:childId", h.Bom.UpdateLink)
	api.Delete("/parts/:id/children/:childId", h.Bom.RemoveLink)
}
