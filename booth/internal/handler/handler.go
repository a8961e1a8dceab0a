package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	md "github.com/Astemirdum/booth-service/pkg/middleware"
	"github.com/Astemirdum/booth-service/pkg/validate"
)

type Handler struct {
	svc BoothService
	log *zap.Logger
}

func New(svc BoothService, log *zap.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
	e.Use(md.Metrics())

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/reservations", h.ListReservations)
	api.POST("/reservations", h.CreateReservation)
	api.PUT("/reservations/:id", h.UpdateReservation)
	api.DELETE("/reservations/:id", h.DeleteReservation)
	api.POST("/reservations/:id/duplicate", h.DuplicateReservation)

	api.POST("/batches", h.CreateBatch)
	api.DELETE("/batches/:batchId", h.DeleteBatch)

	api.GET("/logs", h.ListLogs)
	api.GET("/logs/:id", h.GetLog)
	api.PUT("/logs/:id", h.EditLog)
	api.DELETE("/logs/:id", h.DeleteLog)

	api.GET("/courses", h.ListCourses)
	api.POST("/courses", h.AddCourse)
	api.PUT("/courses/:id", h.RenameCourse)
	api.DELETE("/courses/:id", h.DeleteCourse)
	api.POST("/courses/:id/move", h.MoveCourse)

	api.GET("/preview", h.Preview)
	// the live stream is long lived; it skips the rate limiter's per-request budget
	e.GET("/api/v1/live", h.Live, middleware.RequestID())

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the error taxonomy onto status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, errs.ErrValidation):
		code, _ := errs.ValidationCode(err)
		return echo.NewHTTPError(http.StatusBadRequest, errs.ValidationErrorResponse{Message: err.Error(), Code: code})
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrUnreadable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrReconcileIncomplete):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, errs.ErrTimeout):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, errs.ErrBatchTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// dateFloor reads the date and floor query parameters; date defaults to today.
func (h *Handler) dateFloor(c echo.Context) (model.Date, model.Floor, error) {
	var date model.Date
	if v := c.QueryParam("date"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return model.Date{}, "", err
		}
		date = d
	} else {
		date = h.svc.Today()
	}
	floor, err := model.ParseFloor(c.QueryParam("floor"))
	if err != nil {
		return model.Date{}, "", err
	}
	return date, floor, nil
}
