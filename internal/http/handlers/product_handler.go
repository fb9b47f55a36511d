package handlers

import (
	"github.com/gofiber/fiber/v2"

	"glowcandles/internal/log"
	"glowcandles/internal/services"
	"glowcandles/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products?q=&category=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := ""
	if raw := c.Query("q"); raw != "" {
		var valid bool
		if q, valid = validate.Q(raw); !valid {
			log.Security(c, "validation.fail", map[string]any{"field": "q"})
			return fail(c, fiber.StatusBadRequest, "Invalid search query")
		}
	}
	return h.list(c, q, c.Query("category"))
}

// GET /api/products/category/:category
func (h *ProductHandler) ByCategory(c *fiber.Ctx) error {
	cat, valid := validate.ID(c.Params("category"))
	if !valid {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return fail(c, fiber.StatusBadRequest, "Invalid category")
	}
	return h.list(c, "", cat)
}

func (h *ProductHandler) list(c *fiber.Ctx, q, category string) error {
	products, err := h.Catalog.List(c.UserContext(), q, category)
	if err != nil {
		return respondError(c, "products.list", err)
	}
	return ok(c, fiber.Map{"products": products, "count": len(products)})
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return fail(c, fiber.StatusNotFound, services.ErrProductNotFound.Error())
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, "products.get", err)
	}
	return ok(c, p)
}

// GET /api/products/:id/availability
func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return fail(c, fiber.StatusNotFound, services.ErrProductNotFound.Error())
	}
	a, err := h.Catalog.CheckAvailability(c.UserContext(), id)
	if err != nil {
		return respondError(c, "products.availability", err)
	}
	return ok(c, a)
}
