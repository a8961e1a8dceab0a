package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/service"
)

const heartbeat = 15 * time.Second

func (h *Handler) Preview(c echo.Context) error {
	date, floor, err := h.dateFloor(c)
	if err != nil {
		return httpError(err)
	}
	p, err := h.svc.Preview(c.Request().Context(), date, floor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// Live streams snapshots of one date and floor as server-sent events. Only
// the newest pending snapshot is kept for a slow client.
func (h *Handler) Live(c echo.Context) error {
	date, floor, err := h.dateFloor(c)
	if err != nil {
		return httpError(err)
	}
	ctx := c.Request().Context()

	snaps := make(chan service.Snapshot, 1)
	feed := h.svc.NewFeed()
	defer feed.Close()
	err = feed.Switch(ctx, date, floor, func(s service.Snapshot) {
		for {
			select {
			case snaps <- s:
				return
			default:
			}
			select {
			case <-snaps:
			default:
			}
		}
	})
	if err != nil {
		return httpError(err)
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case s := <-snaps:
			b, err := json.Marshal(s)
			if err != nil {
				h.log.Error("encode snapshot", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\nid: %d\ndata: %s\n\n", s.Generation, b); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
