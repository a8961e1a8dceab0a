package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/service"
)

// batchResponse carries a committed result whose log could not be written.
type batchResponse struct {
	service.BatchResult
	Error string `json:"error"`
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

func (h *Handler) CreateBatch(c echo.Context) error {
	var req model.BatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.CreateBatch(c.Request().Context(), req)
	if err != nil {
		if res.Commit.SuccessCount > 0 {
			h.log.Error("batch saved without log", zap.String("batchId", res.BatchID), zap.Error(err))
			return c.JSON(http.StatusMultiStatus, batchResponse{BatchResult: res, Error: err.Error()})
		}
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) DeleteBatch(c echo.Context) error {
	n, err := h.svc.DeleteBatch(c.Request().Context(), c.Param("batchId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, deletedResponse{Deleted: n})
}

func (h *Handler) ListLogs(c echo.Context) error {
	logs, err := h.svc.ListLogs(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *Handler) GetLog(c echo.Context) error {
	l, err := h.svc.GetLog(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) EditLog(c echo.Context) error {
	var req model.BatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.EditLog(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		h.log.Error("edit log", zap.String("id", c.Param("id")), zap.Any("result", res), zap.Error(err))
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteLog(c echo.Context) error {
	n, err := h.svc.DeleteLog(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, deletedResponse{Deleted: n})
}
