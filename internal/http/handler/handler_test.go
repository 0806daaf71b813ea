package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"camportal/internal/model"
	"camportal/internal/rtcam"
	"camportal/internal/service"
	serviceMocks "camportal/internal/service/mocks"
	"camportal/internal/stats"
)

type testServices struct {
	fleet    *serviceMocks.MockFleetService
	archives *serviceMocks.MockArchiveService
	reports  *serviceMocks.MockReportService
}

func newTestApp(t *testing.T) (*fiber.App, *testServices, sqlmock.Sqlmock) {
	t.Helper()

	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svcs := &testServices{
		fleet:    new(serviceMocks.MockFleetService),
		archives: new(serviceMocks.MockArchiveService),
		reports:  new(serviceMocks.MockReportService),
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, db, Services{
		Fleet:    svcs.fleet,
		Archives: svcs.archives,
		Reports:  svcs.reports,
	})
	return app, svcs, dbMock
}

func testDashboard() *service.Dashboard {
	return &service.Dashboard{
		Summary: &stats.Summary{Total: 12, Online: 10, Offline: 2},
		Health:  &rtcam.Health{Status: "ok"},
		Now:     1700000000,
	}
}

func TestDashboard(t *testing.T) {
	app, svcs, _ := newTestApp(t)

	t.Run("success", func(t *testing.T) {
		svcs.fleet.On("Dashboard", mock.Anything).Return(testDashboard(), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var d service.Dashboard
		json.NewDecoder(resp.Body).Decode(&d)
		assert.Equal(t, 12, d.Summary.Total)
		assert.Equal(t, "ok", d.Health.Status)
	})

	t.Run("upstream error", func(t *testing.T) {
		svcs.fleet.On("Dashboard", mock.Anything).Return(nil, errors.New("boom")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "UPSTREAM_ERROR", body.Error.Code)
	})
}

func TestStatsRefresh(t *testing.T) {
	app, svcs, _ := newTestApp(t)

	svcs.fleet.On("RefreshDashboard", mock.Anything).Return(testDashboard(), nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svcs.fleet.AssertExpectations(t)
}

func TestListCameras(t *testing.T) {
	app, svcs, _ := newTestApp(t)

	t.Run("filters forwarded", func(t *testing.T) {
		svcs.fleet.On("ListCameras", mock.Anything, service.CameraListQuery{
			Q: "yard", Status: "online", Vendor: "Hikvision", DC: "DC-West", Page: 2,
		}).Return(&service.CameraListResult{
			Cameras: []model.Camera{{UID: "cam-1"}}, Page: 2, TotalPages: 2, Total: 51,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/cameras?q=yard&status=online&vendor=Hikvision&dc=DC-West&page=2", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res service.CameraListResult
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, 51, res.Total)
	})

	t.Run("invalid page", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/cameras?page=abc", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid status", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/cameras?status=sleeping", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_STATUS", body.Error.Code)
	})
}

func TestCameraDetail(t *testing.T) {
	app, svcs, _ := newTestApp(t)

	t.Run("success", func(t *testing.T) {
		svcs.fleet.On("CameraDetail", mock.Anything, "cam-1").Return(&service.CameraDetail{
			Camera:  model.Camera{UID: "cam-1", Name: "Entrance"},
			Archive: &stats.Analysis{TotalFragments: 3},
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/cameras/cam-1", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var d service.CameraDetail
		json.NewDecoder(resp.Body).Decode(&d)
		assert.Equal(t, "Entrance", d.Camera.Name)
	})

	t.Run("not found", func(t *testing.T) {
		svcs.fleet.On("CameraDetail", mock.Anything, "nope").
			Return(nil, service.ErrCameraNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/cameras/nope", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListArchives(t *testing.T) {
	app, svcs, _ := newTestApp(t)

	svcs.archives.On("List", mock.Anything, 1, "DONE").Return(&service.ArchiveListResult{
		Archives:     []model.BakedArchive{{ID: 7, Status: model.BakedArchiveStatusDone}},
		Page:         1,
		StatusFilter: "DONE",
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/archives?status=DONE", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res service.ArchiveListResult
	json.NewDecoder(resp.Body).Decode(&res)
	require.Len(t, res.Archives, 1)
	assert.Equal(t, int64(7), res.Archives[0].ID)
}

func TestCreateReport(t *testing.T) {
	app, svcs, _ := newTestApp(t)

	t.Run("explicit period", func(t *testing.T) {
		svcs.reports.On("Create", mock.Anything, 30).
			Return(&model.Report{ID: uuid.NewString(), PeriodDays: 30, Status: model.ReportStatusPending}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/reports",
			bytes.NewBufferString(`{"period_days":30}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		var rep model.Report
		json.NewDecoder(resp.Body).Decode(&rep)
		assert.Equal(t, model.ReportStatusPending, rep.Status)
	})

	t.Run("default period on empty body", func(t *testing.T) {
		svcs.reports.On("Create", mock.Anything, service.DefaultReportPeriodDays).
			Return(&model.Report{ID: uuid.NewString(), PeriodDays: service.DefaultReportPeriodDays}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/reports", nil))
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})

	t.Run("invalid period", func(t *testing.T) {
		svcs.reports.On("Create", mock.Anything, 365).
			Return(nil, service.ErrInvalidPeriod).Once()

		req := httptest.NewRequest(http.MethodPost, "/reports",
			bytes.NewBufferString(`{"period_days":365}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListReports(t *testing.T) {
	app, svcs, _ := newTestApp(t)

	svcs.reports.On("List", mock.Anything, 10, 0).Return(&service.ReportListResult{
		Items: []model.Report{{ID: uuid.NewString(), Status: model.ReportStatusDone}},
		Total: 1,
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res service.ReportListResult
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, 1, res.Total)
}

func TestGetReport(t *testing.T) {
	app, svcs, _ := newTestApp(t)
	id := uuid.NewString()

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		svcs.reports.On("Get", mock.Anything, id).Return(nil, service.ErrReportNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/"+id, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("success", func(t *testing.T) {
		svcs.reports.On("Get", mock.Anything, id).
			Return(&model.Report{ID: id, Status: model.ReportStatusDone}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/"+id, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestDownloadReport(t *testing.T) {
	app, svcs, _ := newTestApp(t)
	id := uuid.NewString()

	t.Run("redirects to presigned url", func(t *testing.T) {
		svcs.reports.On("DownloadURL", mock.Anything, id).
			Return("https://minio.local/presigned", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/"+id+"/download", nil))
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://minio.local/presigned", resp.Header.Get("Location"))
	})

	t.Run("not ready", func(t *testing.T) {
		svcs.reports.On("DownloadURL", mock.Anything, id).
			Return("", service.ErrReportNotReady).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/"+id+"/download", nil))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_READY", body.Error.Code)
	})
}

func TestDeleteReport(t *testing.T) {
	app, svcs, _ := newTestApp(t)
	id := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		svcs.reports.On("Delete", mock.Anything, id).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/reports/"+id, nil))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		svcs.reports.On("Delete", mock.Anything, id).Return(service.ErrReportNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/reports/"+id, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealth(t *testing.T) {
	app, svcs, dbMock := newTestApp(t)

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)
		svcs.fleet.On("Dashboard", mock.Anything).Return(testDashboard(), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "ok", body["database"])
		assert.Equal(t, "ok", body["provider"])
	})

	t.Run("db down", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))
		svcs.fleet.On("Dashboard", mock.Anything).Return(testDashboard(), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "error", body["database"])
	})

	t.Run("provider down", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)
		svcs.fleet.On("Dashboard", mock.Anything).
			Return(nil, errors.New("upstream down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "error", body["provider"])
	})
}

func TestLivenessProbe(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
