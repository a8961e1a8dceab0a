package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/model"
)

func (h *Handler) ListReservations(c echo.Context) error {
	date, floor, err := h.dateFloor(c)
	if err != nil {
		return httpError(err)
	}
	rs, err := h.svc.ListReservations(c.Request().Context(), date, floor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rs)
}

type reservationResponse struct {
	model.Reservation
	Error string `json:"error"`
}

func (h *Handler) CreateReservation(c echo.Context) error {
	var req model.SingleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.CreateSingle(c.Request().Context(), req)
	if err != nil {
		if res.ID != "" {
			h.log.Error("reservation saved without log", zap.String("id", res.ID), zap.Error(err))
			return c.JSON(http.StatusMultiStatus, reservationResponse{Reservation: res, Error: err.Error()})
		}
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) UpdateReservation(c echo.Context) error {
	var patch model.ReservationPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.UpdateReservation(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteReservation(c echo.Context) error {
	if err := h.svc.DeleteReservation(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type duplicateRequest struct {
	Date string `json:"date" validate:"required"`
}

func (h *Handler) DuplicateReservation(c echo.Context) error {
	var req duplicateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return httpError(err)
	}
	res, err := h.svc.Duplicate(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}
