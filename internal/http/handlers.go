package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/forecast"
	"github.com/electometer/smart-meter/internal/repository"
	"github.com/electometer/smart-meter/internal/service"
)

type handlers struct {
	svcs *service.Services
}

// Register mounts the consumer and admin routes under /api.
func Register(app *fiber.App, svcs *service.Services) {
	h := &handlers{svcs: svcs}
	api := app.Group("/api")

	meters := api.Group("/meters/:meterId")
	meters.Get("/live", h.live)
	meters.Get("/history", h.history)
	meters.Get("/bills", h.meterBills)
	meters.Get("/alerts", h.meterAlerts)

	admin := api.Group("/admin")
	admin.Post("/login", h.login)
	admin.Get("/stats", h.stats)
	admin.Get("/meters", h.adminMeters)
	admin.Get("/meters/:meterId", h.meterDetails)
	admin.Get("/bills", h.adminBills)
	admin.Put("/bills/:billId", h.updateBill)
	admin.Get("/alerts", h.adminAlerts)
	admin.Get("/analytics/area-wise", h.areaWise)
	admin.Get("/analytics/prediction", h.prediction)
}

// notFound maps a store miss to a 404 carrying msg.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, msg)
	}
	return err
}

// intQuery parses an optional integer query parameter.
func intQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+key)
	}
	return v, nil
}

func (h *handlers) live(c *fiber.Ctx) error {
	r, err := h.svcs.Meters.Live(c.UserContext(), c.Params("meterId"))
	if err != nil {
		return notFound(err, "No readings found for this meter")
	}
	return c.JSON(r)
}

func (h *handlers) history(c *fiber.Ctx) error {
	rs, err := h.svcs.Meters.History(c.UserContext(), c.Params("meterId"), c.Query("period", "24h"))
	if err != nil {
		return err
	}
	return c.JSON(rs)
}

func (h *handlers) meterBills(c *fiber.Ctx) error {
	bills, err := h.svcs.Meters.Bills(c.UserContext(), c.Params("meterId"))
	if err != nil {
		return err
	}
	return c.JSON(bills)
}

func (h *handlers) meterAlerts(c *fiber.Ctx) error {
	alerts, err := h.svcs.Meters.Alerts(c.UserContext(), c.Params("meterId"))
	if err != nil {
		return err
	}
	return c.JSON(alerts)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Username and password are required")
	}
	a, err := h.svcs.Admin.Login(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "admin": a})
}

func (h *handlers) stats(c *fiber.Ctx) error {
	st, err := h.svcs.Admin.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (h *handlers) adminMeters(c *fiber.Ctx) error {
	ms, err := h.svcs.Admin.ListMeters(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ms)
}

func (h *handlers) meterDetails(c *fiber.Ctx) error {
	d, err := h.svcs.Admin.MeterDetails(c.UserContext(), c.Params("meterId"))
	if err != nil {
		return notFound(err, "Meter not found")
	}
	return c.JSON(d)
}

func (h *handlers) adminBills(c *fiber.Ctx) error {
	status, err := service.ParseBillStatus(c.Query("status"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid status")
	}
	limit, err := intQuery(c, "limit", service.DefaultListLimit)
	if err != nil {
		return err
	}
	bills, err := h.svcs.Admin.ListBills(c.UserContext(), status, limit)
	if err != nil {
		return err
	}
	return c.JSON(bills)
}

type billStatusRequest struct {
	Status domain.BillStatus `json:"status"`
}

func (h *handlers) updateBill(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("billId"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid bill id")
	}
	var req billStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	b, err := h.svcs.Admin.UpdateBillStatus(c.UserContext(), id, req.Status)
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid status")
	case err != nil:
		return notFound(err, "Bill not found")
	}
	return c.JSON(b)
}

func (h *handlers) adminAlerts(c *fiber.Ctx) error {
	t, err := service.ParseAlertType(c.Query("type"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid alert type")
	}
	limit, err := intQuery(c, "limit", service.DefaultListLimit)
	if err != nil {
		return err
	}
	alerts, err := h.svcs.Admin.ListAlerts(c.UserContext(), t, limit)
	if err != nil {
		return err
	}
	return c.JSON(alerts)
}

func (h *handlers) areaWise(c *fiber.Ctx) error {
	areas, err := h.svcs.Analytics.AreaWise(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(areas)
}

func (h *handlers) prediction(c *fiber.Ctx) error {
	days, err := intQuery(c, "days", forecast.DefaultDays)
	if err != nil {
		return err
	}
	res, err := h.svcs.Analytics.Prediction(c.UserContext(), days)
	if err != nil {
		return err
	}
	return c.JSON(res)
}
