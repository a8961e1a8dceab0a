package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type courseRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color"`
}

type moveRequest struct {
	Direction int `json:"direction" validate:"required,oneof=-1 1"`
}

func (h *Handler) ListCourses(c echo.Context) error {
	cs, err := h.svc.ListCourses(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) AddCourse(c echo.Context) error {
	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	course, err := h.svc.AddCourse(c.Request().Context(), req.Name, req.Color)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, course)
}

func (h *Handler) RenameCourse(c echo.Context) error {
	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	course, err := h.svc.RenameCourse(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, course)
}

func (h *Handler) DeleteCourse(c echo.Context) error {
	if err := h.svc.DeleteCourse(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MoveCourse(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.MoveCourse(c.Request().Context(), c.Param("id"), req.Direction)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cs)
}
