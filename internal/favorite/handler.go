package favorite

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pattarin-dev/shopsync/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/favorites", h.listFavorites)
	app.Post("/api/favorites/:productId", h.addFavorite)
	app.Delete("/api/favorites/:productId", h.removeFavorite)
}

func (h *Handler) listFavorites(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	products, err := h.service.List(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch favorites"})
	}
	return c.JSON(products)
}

func (h *Handler) addFavorite(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	products, err := h.service.Add(userID, productID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) removeFavorite(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	products, err := h.service.Remove(userID, productID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found", "code": "not_found"})
	case errors.Is(err, ErrNotFavorite):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not in favorites", "code": "not_found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
