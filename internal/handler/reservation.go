package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
	"github.com/iliyamo/luggage-storage-reservation/internal/repository"
	"github.com/iliyamo/luggage-storage-reservation/internal/service"
)

// ReservationHandler exposes the reservation lifecycle over HTTP. Every
// route is scoped to the authenticated store; the handler only binds and
// maps errors, the Lifecycle service owns the rules.
type ReservationHandler struct {
	lifecycle *service.Lifecycle
}

func NewReservationHandler(lc *service.Lifecycle) *ReservationHandler {
	return &ReservationHandler{lifecycle: lc}
}

type createReservationRequest struct {
	CustomerID    string   `json:"customer_id"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"phone_number"`
	CustomerEmail string   `json:"email"`
	SizeClass     string   `json:"size_class"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	DurationHours int      `json:"duration_hours"`
	BagCount      int      `json:"bag_count"`
	TotalAmount   int64    `json:"total_amount"`
	PaymentMethod string   `json:"payment_method"`
	PhotoURLs     []string `json:"photo_urls"`
	RequestTime   string   `json:"request_time"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type checkinRequest struct {
	PhotoURLs []string `json:"photo_urls"`
}

// Create registers a new pending reservation for the store.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION_ERROR", "message": "invalid request body"})
	}
	res, err := h.lifecycle.Create(c.Request().Context(), service.CreateInput{
		StoreID:       storeID(c),
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		SizeClass:     req.SizeClass,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		DurationHours: req.DurationHours,
		BagCount:      req.BagCount,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		PhotoURLs:     req.PhotoURLs,
		RequestTime:   req.RequestTime,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": res})
}

// List returns a page of the store's reservations. Supported query params:
// status, date (YYYY-MM-DD), customer_id, page, limit.
func (h *ReservationHandler) List(c echo.Context) error {
	f := repository.ListFilter{
		Date:       c.QueryParam("date"),
		CustomerID: c.QueryParam("customer_id"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 20),
	}
	if raw := c.QueryParam("status"); raw != "" {
		status, ok := model.ParseReservationStatus(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION_ERROR", "message": "unknown status filter"})
		}
		f.Status = status
	}
	items, total, err := h.lifecycle.List(c.Request().Context(), storeID(c), f)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservations": items,
		"total":        total,
		"page":         f.Page,
		"limit":        f.Limit,
	})
}

// Get returns one reservation.
func (h *ReservationHandler) Get(c echo.Context) error {
	res, err := h.lifecycle.Get(c.Request().Context(), storeID(c), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Approve confirms a pending reservation and assigns a storage unit.
func (h *ReservationHandler) Approve(c echo.Context) error {
	res, err := h.lifecycle.Approve(c.Request().Context(), storeID(c), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Reject declines a pending reservation, refunding any captured payment.
func (h *ReservationHandler) Reject(c echo.Context) error {
	res, err := h.lifecycle.Reject(c.Request().Context(), storeID(c), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Cancel cancels a pending or confirmed reservation.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	res, err := h.lifecycle.Cancel(c.Request().Context(), storeID(c), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// CheckIn marks the bags as dropped off and attaches photos.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	var req checkinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION_ERROR", "message": "invalid request body"})
	}
	res, err := h.lifecycle.CheckIn(c.Request().Context(), storeID(c), c.Param("id"), req.PhotoURLs)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// CheckOut completes the reservation and frees the unit.
func (h *ReservationHandler) CheckOut(c echo.Context) error {
	res, err := h.lifecycle.CheckOut(c.Request().Context(), storeID(c), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// SetStatus is the administrative status override. Legacy synonyms like
// "approved" or "active" are accepted and normalized.
func (h *ReservationHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION_ERROR", "message": "status is required"})
	}
	res, err := h.lifecycle.SetStatus(c.Request().Context(), storeID(c), c.Param("id"), req.Status)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
