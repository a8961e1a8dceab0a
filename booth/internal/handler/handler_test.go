package handler_test

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/handler"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/service"
	"github.com/Astemirdum/booth-service/pkg/validate"

	service_mocks "github.com/Astemirdum/booth-service/booth/internal/handler/mocks"
)

type response struct {
	expectedCode int
	expectedBody string
}

func newEcho(t *testing.T) (*echo.Echo, *handler.Handler, *service_mocks.MockBoothService) {
	c := gomock.NewController(t)
	svc := service_mocks.NewMockBoothService(c)
	log := zap.NewExample().Named("test")
	h := handler.New(svc, log)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	return e, h, svc
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, http.NoBody)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	return w
}

const reservationJSON = `{"id":"r1","date":"2024-06-03","floor":"6F","seatNo":2,"startMin":540,"endMin":600,"name":"Ann","course":"","purposeType":"self-study","note":"","batchId":"b1","createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}`

func testReservation() model.Reservation {
	return model.Reservation{
		ID:          "r1",
		Date:        model.MustParseDate("2024-06-03"),
		Floor:       model.Floor6F,
		SeatNo:      2,
		StartMin:    540,
		EndMin:      600,
		Name:        "Ann",
		PurposeType: model.PurposeSelfStudy,
		BatchID:     "b1",
	}
}

func TestHandler_ListReservations(t *testing.T) {
	t.Parallel()
	type input struct {
		date  string
		floor string
	}
	type mockBehavior func(r *service_mocks.MockBoothService, inp input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBoothService, inp input) {
				r.EXPECT().
					ListReservations(context.Background(), model.MustParseDate(inp.date), model.Floor(inp.floor)).
					Return([]model.Reservation{testReservation()}, nil)
			},
			input: input{date: "2024-06-03", floor: "6F"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: "[" + reservationJSON + "]",
			},
		},
		{
			name: "ok. date defaults to today",
			mockBehavior: func(r *service_mocks.MockBoothService, inp input) {
				today := model.MustParseDate("2024-06-05")
				r.EXPECT().Today().Return(today)
				r.EXPECT().
					ListReservations(context.Background(), today, model.Floor7F).
					Return([]model.Reservation{}, nil)
			},
			input: input{floor: "7F"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[]`,
			},
		},
		{
			name:         "err. unknown floor",
			mockBehavior: func(r *service_mocks.MockBoothService, inp input) {},
			input:        input{date: "2024-06-03", floor: "8F"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid-floor: unknown floor \"8F\"","code":"invalid-floor"}`,
			},
		},
		{
			name:         "err. bad date",
			mockBehavior: func(r *service_mocks.MockBoothService, inp input) {},
			input:        input{date: "June", floor: "6F"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid-date: bad date \"June\", want YYYY-MM-DD","code":"invalid-date"}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockBoothService, inp input) {
				r.EXPECT().
					ListReservations(context.Background(), model.MustParseDate(inp.date), model.Floor(inp.floor)).
					Return(nil, errors.New("db internal"))
			},
			input: input{date: "2024-06-03", floor: "6F"},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, svc := newEcho(t)
			e.GET("/reservations", h.ListReservations)
			tt.mockBehavior(svc, tt.input)

			target := "/reservations?floor=" + tt.input.floor
			if tt.input.date != "" {
				target += "&date=" + tt.input.date
			}
			w := do(e, http.MethodGet, target, "")

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateReservation(t *testing.T) {
	t.Parallel()
	req := model.SingleRequest{
		Date:        model.MustParseDate("2024-06-03"),
		Floor:       model.Floor6F,
		SeatNo:      2,
		StartMin:    540,
		EndMin:      600,
		Name:        "Ann",
		PurposeType: model.PurposeSelfStudy,
	}
	body := `{"date":"2024-06-03","floor":"6F","seatNo":2,"startMin":540,"endMin":600,"name":"Ann","purposeType":"self-study"}`
	type mockBehavior func(r *service_mocks.MockBoothService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().CreateSingle(context.Background(), req).Return(testReservation(), nil)
			},
			body: body,
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: reservationJSON,
			},
		},
		{
			name: "err. conflict",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().CreateSingle(context.Background(), req).
					Return(model.Reservation{}, fmt.Errorf("6F seat 2 on 2024-06-03: %w", errs.ErrConflict))
			},
			body: body,
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"6F seat 2 on 2024-06-03: time range overlaps an existing reservation"}`,
			},
		},
		{
			name: "err. empty name",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().CreateSingle(context.Background(), gomock.Any()).
					Return(model.Reservation{}, errs.NewValidation(errs.CodeEmptyName, "name is required"))
			},
			body: `{"date":"2024-06-03","floor":"6F","seatNo":2,"startMin":540,"endMin":600}`,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"empty-name: name is required","code":"empty-name"}`,
			},
		},
		{
			name: "saved but not logged",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().CreateSingle(context.Background(), req).
					Return(testReservation(), errors.New("log write refused"))
			},
			body: body,
			response: response{
				expectedCode: http.StatusMultiStatus,
				expectedBody: strings.TrimSuffix(reservationJSON, "}") + `,"error":"log write refused"}`,
			},
		},
		{
			name: "err. stored record unreadable",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().CreateSingle(context.Background(), req).
					Return(model.Reservation{}, errors.Wrap(errs.ErrUnreadable, "r9"))
			},
			body: body,
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"r9: stored reservation is unreadable"}`,
			},
		},
		{
			name: "err. timeout",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().CreateSingle(context.Background(), req).
					Return(model.Reservation{}, errs.ErrTimeout)
			},
			body: body,
			response: response{
				expectedCode: http.StatusGatewayTimeout,
				expectedBody: `{"message":"storage operation timed out"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, svc := newEcho(t)
			e.POST("/reservations", h.CreateReservation)
			tt.mockBehavior(svc)

			w := do(e, http.MethodPost, "/reservations", tt.body)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteReservation(t *testing.T) {
	t.Parallel()
	e, h, svc := newEcho(t)
	e.DELETE("/reservations/:id", h.DeleteReservation)

	svc.EXPECT().DeleteReservation(context.Background(), "r1").Return(nil)
	w := do(e, http.MethodDelete, "/reservations/r1", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	svc.EXPECT().DeleteReservation(context.Background(), "r2").
		Return(fmt.Errorf("reservation r2: %w", errs.ErrNotFound))
	w = do(e, http.MethodDelete, "/reservations/r2", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, `{"message":"reservation r2: not found"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_DuplicateReservation(t *testing.T) {
	t.Parallel()
	e, h, svc := newEcho(t)
	e.POST("/reservations/:id/duplicate", h.DuplicateReservation)

	w := do(e, http.MethodPost, "/reservations/r1/duplicate", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	svc.EXPECT().Duplicate(context.Background(), "r1", model.MustParseDate("2024-06-03")).
		Return(model.Reservation{}, errs.NewValidation(errs.CodeSameDate, "pick a different date"))
	w = do(e, http.MethodPost, "/reservations/r1/duplicate", `{"date":"2024-06-03"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, `{"message":"same-date: pick a different date","code":"same-date"}`, strings.Trim(w.Body.String(), "\n"))

	svc.EXPECT().Duplicate(context.Background(), "r1", model.MustParseDate("2024-06-04")).
		Return(testReservation(), nil)
	w = do(e, http.MethodPost, "/reservations/r1/duplicate", `{"date":"2024-06-04"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, reservationJSON, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_CreateBatch(t *testing.T) {
	t.Parallel()
	body := `{"floor":"6F","seats":[1],"startMin":540,"endMin":600,"name":"Ann"}`
	saved := service.BatchResult{
		BatchID:  "b1",
		Type:     model.LogTypeBulk,
		Dates:    []model.Date{model.MustParseDate("2024-06-03")},
		Rejected: []service.Rejection{},
		Commit:   service.CommitResult{SuccessCount: 1},
		Summary:  model.Summary{SuccessCount: 1},
	}
	const savedJSON = `{"batchId":"b1","type":"bulk","dates":["2024-06-03"],"rejected":[],` +
		`"commit":{"successCount":1,"failCount":0,"uncertainCount":0},"summary":{"successCount":1,"failCount":0}`
	type mockBehavior func(r *service_mocks.MockBoothService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				res := saved
				res.LogID = "b1"
				r.EXPECT().CreateBatch(context.Background(), gomock.Any()).Return(res, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"batchId":"b1","logId":"b1"` + strings.TrimPrefix(savedJSON, `{"batchId":"b1"`) + `}`,
			},
		},
		{
			name: "saved but not logged",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().CreateBatch(context.Background(), gomock.Any()).
					Return(saved, errors.New("log write refused"))
			},
			response: response{
				expectedCode: http.StatusMultiStatus,
				expectedBody: savedJSON + `,"error":"log write refused"}`,
			},
		},
		{
			name: "err. nothing saved",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				res := saved
				res.Commit = service.CommitResult{}
				r.EXPECT().CreateBatch(context.Background(), gomock.Any()).
					Return(res, errs.ErrTimeout)
			},
			response: response{
				expectedCode: http.StatusGatewayTimeout,
				expectedBody: `{"message":"storage operation timed out"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, svc := newEcho(t)
			e.POST("/batches", h.CreateBatch)
			tt.mockBehavior(svc)

			w := do(e, http.MethodPost, "/batches", body)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Batches(t *testing.T) {
	t.Parallel()
	e, h, svc := newEcho(t)
	e.DELETE("/batches/:batchId", h.DeleteBatch)
	e.PUT("/logs/:id", h.EditLog)
	e.DELETE("/logs/:id", h.DeleteLog)

	svc.EXPECT().DeleteBatch(context.Background(), "b1").Return(6, nil)
	w := do(e, http.MethodDelete, "/batches/b1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"deleted":6}`, strings.Trim(w.Body.String(), "\n"))

	svc.EXPECT().EditLog(context.Background(), "b1", gomock.Any()).
		Return(service.ReconcileResult{}, fmt.Errorf("log b1: %w", errs.ErrReconcileIncomplete))
	w = do(e, http.MethodPut, "/logs/b1", `{"floor":"6F","seats":[1],"startMin":540,"endMin":600,"name":"Ann"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, `{"message":"log b1: batch edit incomplete"}`, strings.Trim(w.Body.String(), "\n"))

	svc.EXPECT().DeleteLog(context.Background(), "missing").Return(0, errs.ErrNotFound)
	w = do(e, http.MethodDelete, "/logs/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Courses(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockBoothService)
	order := 0

	var tests = []struct {
		name         string
		method       string
		target       string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "add ok",
			method: http.MethodPost,
			target: "/courses",
			body:   `{"name":"Math","color":"blue"}`,
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().AddCourse(context.Background(), "Math", "blue").
					Return(model.Course{ID: "c1", Name: "Math", Color: "#bbdefb", ColorName: "blue", Order: &order}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":"c1","name":"Math","color":"#bbdefb","colorName":"blue","order":0,"createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}`,
			},
		},
		{
			name:         "add. name required",
			method:       http.MethodPost,
			target:       "/courses",
			body:         `{"color":"blue"}`,
			mockBehavior: func(r *service_mocks.MockBoothService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'courseRequest.name' Error:Field validation for 'name' failed on the 'required' tag"}`,
			},
		},
		{
			name:         "move. bad direction",
			method:       http.MethodPost,
			target:       "/courses/c1/move",
			body:         `{"direction":2}`,
			mockBehavior: func(r *service_mocks.MockBoothService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'moveRequest.direction' Error:Field validation for 'direction' failed on the 'oneof' tag"}`,
			},
		},
		{
			name:   "move ok",
			method: http.MethodPost,
			target: "/courses/c1/move",
			body:   `{"direction":-1}`,
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().MoveCourse(context.Background(), "c1", -1).Return([]model.Course{}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[]`,
			},
		},
		{
			name:   "delete. not found",
			method: http.MethodDelete,
			target: "/courses/c9",
			mockBehavior: func(r *service_mocks.MockBoothService) {
				r.EXPECT().DeleteCourse(context.Background(), "c9").Return(fmt.Errorf("course c9: %w", errs.ErrNotFound))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"course c9: not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, svc := newEcho(t)
			e.POST("/courses", h.AddCourse)
			e.POST("/courses/:id/move", h.MoveCourse)
			e.DELETE("/courses/:id", h.DeleteCourse)
			tt.mockBehavior(svc)

			w := do(e, tt.method, tt.target, tt.body)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	_, h, _ := newEcho(t)
	e := h.NewRouter()

	w := do(e, http.MethodGet, "/manage/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}

func TestHandler_Live(t *testing.T) {
	t.Parallel()
	e, h, svc := newEcho(t)
	e.GET("/live", h.Live)

	log := zap.NewExample()
	store := docstore.NewMemory(log)
	t.Cleanup(func() { _ = store.Close() })
	svc.EXPECT().NewFeed().Return(service.NewFeed(store, log))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/live?date=2024-06-03&floor=6F", http.NoBody)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get(echo.HeaderContentType))

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() && sc.Text() != "" {
		lines = append(lines, sc.Text())
	}
	require.Equal(t, []string{
		"event: snapshot",
		"id: 1",
		`data: {"date":"2024-06-03","floor":"6F","generation":1,"reservations":[]}`,
	}, lines)
}
