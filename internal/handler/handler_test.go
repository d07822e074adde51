package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/middleware"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/internal/service"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newRouter(routes Routes) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	routes.Register(r.Group("/api/v1"))
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	switch v := body.(type) {
	case nil:
	case string:
		payload = []byte(v)
	default:
		payload, _ = json.Marshal(v)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type rosterServiceStub struct {
	parseReq dto.RosterRequest
	filename string
	content  string
	opts     dto.RosterUploadOptions
	resp     *dto.RosterResponse
	err      error
}

func (s *rosterServiceStub) Parse(_ context.Context, req dto.RosterRequest) (*dto.RosterResponse, error) {
	s.parseReq = req
	return s.resp, s.err
}

func (s *rosterServiceStub) Upload(_ context.Context, filename string, r io.Reader, opts dto.RosterUploadOptions) (*dto.RosterResponse, error) {
	data, _ := io.ReadAll(r)
	s.filename, s.content, s.opts = filename, string(data), opts
	return s.resp, s.err
}

func multipartRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestRosterHandlerParse(t *testing.T) {
	stub := &rosterServiceStub{resp: &dto.RosterResponse{Count: 1, Students: []models.Student{{ID: "2400970100108", Name: "Alice"}}}}
	r := newRouter(Routes{Roster: NewRosterHandler(stub, 1024)})

	w := doJSON(r, http.MethodPost, "/api/v1/roster/parse", dto.RosterRequest{Text: "2400970100108 Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2400970100108 Alice", stub.parseReq.Text)

	var got dto.RosterResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
	assert.Equal(t, 1, got.Count)

	w = doJSON(r, http.MethodPost, "/api/v1/roster/parse", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stub.err = appErrors.Clone(appErrors.ErrMalformedInput, "roster contains no usable rows")
	w = doJSON(r, http.MethodPost, "/api/v1/roster/parse", dto.RosterRequest{Text: "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MALFORMED_INPUT", decodeEnvelope(t, w).Error.Code)
}

func TestRosterHandlerUpload(t *testing.T) {
	stub := &rosterServiceStub{resp: &dto.RosterResponse{Count: 2}}
	r := newRouter(Routes{Roster: NewRosterHandler(stub, 64)})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/roster/upload", "cohort.csv", "id,name\n1,A\n", map[string]string{
		"nameColumn":    "2",
		"duplicates":    "merge",
		"headerPresent": "true",
	}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cohort.csv", stub.filename)
	assert.Equal(t, "id,name\n1,A\n", stub.content)
	assert.Equal(t, "2", stub.opts.NameColumn)
	assert.Equal(t, "merge", stub.opts.Duplicates)
	require.NotNil(t, stub.opts.HeaderPresent)
	assert.True(t, *stub.opts.HeaderPresent)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/roster/upload", "big.txt", string(bytes.Repeat([]byte("x"), 65)), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/roster/upload", "", "", map[string]string{"duplicates": "keep"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type seatingServiceStub struct {
	req  dto.AllocateSeatsRequest
	resp *dto.AllocateSeatsResponse
	err  error
}

func (s *seatingServiceStub) Allocate(_ context.Context, req dto.AllocateSeatsRequest) (*dto.AllocateSeatsResponse, error) {
	s.req = req
	return s.resp, s.err
}

func TestSeatingHandlerAllocate(t *testing.T) {
	stub := &seatingServiceStub{resp: &dto.AllocateSeatsResponse{
		Plan:     models.SeatingPlan{Strategy: models.StrategyBranchMix, Totals: models.PlanTotals{Students: 3, Assigned: 2, Unassigned: 1}},
		Warnings: []string{"1 of 3 students could not be seated: total capacity is 2"},
	}}
	r := newRouter(Routes{Seating: NewSeatingHandler(stub)})

	w := doJSON(r, http.MethodPost, "/api/v1/seating/allocate", map[string]interface{}{"roomsText": "A:2", "strategy": "branch-mix", "seed": 5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A:2", stub.req.RoomsText)
	require.NotNil(t, stub.req.Seed)
	assert.Equal(t, int64(5), *stub.req.Seed)

	env := decodeEnvelope(t, w)
	assert.Equal(t, []interface{}{"1 of 3 students could not be seated: total capacity is 2"}, env.Meta["warnings"])

	stub.resp = &dto.AllocateSeatsResponse{Saved: true, Warnings: []string{}}
	w = doJSON(r, http.MethodPost, "/api/v1/seating/allocate", map[string]interface{}{"save": true})
	assert.Equal(t, http.StatusCreated, w.Code)

	stub.err = appErrors.Clone(appErrors.ErrValidation, `unknown strategy "zigzag"`)
	w = doJSON(r, http.MethodPost, "/api/v1/seating/allocate", map[string]interface{}{"strategy": "zigzag"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type dutyServiceStub struct {
	resp *dto.AllocateDutiesResponse
	pdf  []byte
	err  error
}

func (s *dutyServiceStub) Allocate(context.Context, dto.AllocateDutiesRequest) (*dto.AllocateDutiesResponse, error) {
	return s.resp, s.err
}

func (s *dutyServiceStub) RenderPDF(context.Context, dto.AllocateDutiesRequest) ([]byte, error) {
	return s.pdf, s.err
}

func TestDutyHandler(t *testing.T) {
	stub := &dutyServiceStub{
		resp: &dto.AllocateDutiesResponse{Roster: models.DutyRoster{Understaffed: []string{"S2"}}, Warnings: []string{"session S2 is short by 1 invigilator(s)"}},
		pdf:  []byte("%PDF-1.3"),
	}
	r := newRouter(Routes{Duties: NewDutyHandler(stub)})

	w := doJSON(r, http.MethodPost, "/api/v1/invigilators/allocate", dto.AllocateDutiesRequest{InvigilatorsText: "Asha"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Meta, "warnings")

	w = doJSON(r, http.MethodPost, "/api/v1/invigilators/allocate/pdf", dto.AllocateDutiesRequest{InvigilatorsText: "Asha"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invigilation_duty.pdf")
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

type seatingPlanServiceStub struct {
	plan     *models.SeatingPlan
	cacheHit bool
	items    []models.SeatingPlanSummary
	query    dto.SeatingPlanQuery
	deleted  string
	err      error
}

func (s *seatingPlanServiceStub) Get(_ context.Context, id string) (*models.SeatingPlan, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	return s.plan, s.cacheHit, nil
}

func (s *seatingPlanServiceStub) List(_ context.Context, query dto.SeatingPlanQuery) ([]models.SeatingPlanSummary, *models.Pagination, error) {
	s.query = query
	return s.items, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(s.items)}, nil
}

func (s *seatingPlanServiceStub) Delete(_ context.Context, id string) error {
	s.deleted = id
	return s.err
}

func TestSeatingPlanHandler(t *testing.T) {
	stub := &seatingPlanServiceStub{
		plan:     &models.SeatingPlan{ID: "plan-1", Name: "Finals"},
		cacheHit: true,
		items:    []models.SeatingPlanSummary{{ID: "plan-1", Name: "Finals"}},
	}
	r := newRouter(Routes{SeatingPlan: NewSeatingPlanHandler(stub)})

	w := doJSON(r, http.MethodGet, "/api/v1/seating-plans/plan-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])

	w = doJSON(r, http.MethodGet, "/api/v1/seating-plans?search=fin&page=2&pageSize=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.SeatingPlanQuery{Search: "fin", Page: 2, PageSize: 5}, stub.query)
	assert.Equal(t, 1, decodeEnvelope(t, w).Pagination.TotalCount)

	w = doJSON(r, http.MethodDelete, "/api/v1/seating-plans/plan-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "plan-1", stub.deleted)

	stub.err = appErrors.Clone(appErrors.ErrNotFound, "seating plan not found")
	w = doJSON(r, http.MethodGet, "/api/v1/seating-plans/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type exportServiceStub struct {
	planID   string
	job      *dto.ExportJobResponse
	status   *dto.ExportStatusResponse
	download *service.ExportDownload
	err      error
}

func (s *exportServiceStub) Create(_ context.Context, planID string, _ dto.CreateExportRequest) (*dto.ExportJobResponse, error) {
	s.planID = planID
	return s.job, s.err
}

func (s *exportServiceStub) Status(context.Context, string) (*dto.ExportStatusResponse, error) {
	return s.status, s.err
}

func (s *exportServiceStub) Resolve(context.Context, string) (*service.ExportDownload, error) {
	return s.download, s.err
}

func TestExportHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job-1.csv")
	require.NoError(t, os.WriteFile(path, []byte("Room,Seat\nA,1\n"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)

	stub := &exportServiceStub{
		job:      &dto.ExportJobResponse{ID: "job-1", PlanID: "plan-1", Format: models.ExportFormatCSV, Status: models.ExportStatusQueued},
		status:   &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished},
		download: &service.ExportDownload{File: file, Filename: "job-1.csv", ContentType: "text/csv"},
	}
	r := newRouter(Routes{SeatingPlan: NewSeatingPlanHandler(&seatingPlanServiceStub{}), Exports: NewExportHandler(stub)})

	w := doJSON(r, http.MethodPost, "/api/v1/seating-plans/plan-1/exports", dto.CreateExportRequest{Format: models.ExportFormatCSV})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "plan-1", stub.planID)

	w = doJSON(r, http.MethodGet, "/api/v1/exports/job-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/exports/download/abc.def", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "Room,Seat\nA,1\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "job-1.csv")

	stub.err = appErrors.Clone(appErrors.ErrForbidden, "download link expired")
	w = doJSON(r, http.MethodGet, "/api/v1/exports/download/abc.def", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealthHandlerReady(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	r := newRouter(Routes{Health: NewHealthHandler(nil, map[string]Pinger{"postgres": ok, "redis": nil})})
	w := doJSON(r, http.MethodGet, "/api/v1/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)

	r = newRouter(Routes{Health: NewHealthHandler(nil, map[string]Pinger{"redis": down})})
	w = doJSON(r, http.MethodGet, "/api/v1/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	w = doJSON(r, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesSkipDisabledFeatures(t *testing.T) {
	r := newRouter(Routes{
		Health:  NewHealthHandler(nil, nil),
		Roster:  NewRosterHandler(&rosterServiceStub{}, 0),
		Seating: NewSeatingHandler(&seatingServiceStub{}),
		Duties:  NewDutyHandler(&dutyServiceStub{}),
	})

	var paths []string
	for _, route := range r.Routes() {
		paths = append(paths, route.Method+" "+route.Path)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{
		"GET /api/v1/health",
		"GET /api/v1/ready",
		"POST /api/v1/invigilators/allocate",
		"POST /api/v1/invigilators/allocate/pdf",
		"POST /api/v1/roster/parse",
		"POST /api/v1/roster/upload",
		"POST /api/v1/seating/allocate",
	}, paths)
}
