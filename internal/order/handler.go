package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pattarin-dev/shopsync/internal/product"
	"github.com/pattarin-dev/shopsync/internal/user"
)

// Handler delegates order operations to the order service. The checkout
// body carries only shipping and payment details: the server snapshots
// cart contents and prices itself and never trusts client-sent totals.
type Handler struct {
	service        *Service
	productService product.ServiceInterface
}

func NewHandler(s *Service, ps product.ServiceInterface) *Handler {
	return &Handler{service: s, productService: ps}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/orders", h.createOrder)
	app.Get("/api/orders", h.getOrders)
	app.Get("/api/orders/:id", h.getOrder)
}

type checkoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	ord, err := h.service.Checkout(userID, payload.ShippingAddress, payload.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cart is empty", "code": "empty_cart"})
		case errors.Is(err, ErrMissingAddress):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "shipping address is required", "code": "missing_address"})
		case errors.Is(err, ErrInvalidPayment):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported payment method", "code": "invalid_payment"})
		case errors.Is(err, ErrTransactionFailed):
			// nothing was persisted; the client may retry the call as-is
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "checkout could not complete", "code": "tx_failed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(ord)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	orders, err := h.service.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch orders"})
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	ord, err := h.service.GetByID(userID, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found", "code": "not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch order"})
	}

	h.enrichLines(&ord)
	return c.JSON(ord)
}

// enrichLines fills in product names and images for the detail view. A
// lookup failure leaves the lines bare rather than failing the request.
func (h *Handler) enrichLines(ord *Order) {
	if h.productService == nil || len(ord.Lines) == 0 {
		return
	}
	ids := make([]int, 0, len(ord.Lines))
	for _, l := range ord.Lines {
		ids = append(ids, l.ProductID)
	}
	prods, err := h.productService.ListByIDs(ids)
	if err != nil {
		return
	}
	byID := make(map[int]product.Product, len(prods))
	for _, p := range prods {
		byID[p.ID] = p
	}
	for i := range ord.Lines {
		if p, ok := byID[ord.Lines[i].ProductID]; ok {
			ord.Lines[i].Name = p.Name
			ord.Lines[i].ImageURL = p.ImageURL
		}
	}
}
