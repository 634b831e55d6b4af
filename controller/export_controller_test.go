// api/controller/export_controller_test.go
package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chittoorhealth/api/controller"
	health_errors "github.com/chittoorhealth/api/errors"
	"github.com/chittoorhealth/api/export"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
	"github.com/chittoorhealth/api/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	dir, err := os.MkdirTemp("", "controller-test-logs")
	if err != nil {
		os.Exit(1)
	}
	logger.InitLogger(dir)
	code := m.Run()
	logger.Sync()
	os.RemoveAll(dir)
	os.Exit(code)
}

type mockExportService struct {
	startJobID string
	startErr   error
	progress   model.ExportProgress
	found      bool
}

func (m *mockExportService) StartExport(ctx context.Context, identity model.Identity) (string, error) {
	return m.startJobID, m.startErr
}

func (m *mockExportService) GetStatus(jobID string) (model.ExportProgress, bool) {
	return m.progress, m.found
}

func identityMiddleware(identity model.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(util.IdentityContextKey, identity)
		c.Next()
	}
}

func setupExportRouter(ec *controller.ExportController, identity *model.Identity) *gin.Engine {
	r := gin.New()
	api := r.Group("/")
	if identity != nil {
		api.Use(identityMiddleware(*identity))
	}
	ec.RegisterRoutes(api)
	return r
}

func fastStreamer(store *export.ProgressStore) *export.Streamer {
	return export.NewStreamer(store, export.StreamerConfig{
		PollInterval: time.Millisecond,
		MaxPolls:     5,
		GraceDelay:   time.Millisecond,
	})
}

func TestStartExport(t *testing.T) {
	admin := model.Identity{Role: model.RoleAdmin}

	t.Run("Accepted", func(t *testing.T) {
		svc := &mockExportService{startJobID: "job-123"}
		ec := controller.NewExportController(svc, fastStreamer(export.NewProgressStore(0, 0)))
		router := setupExportRouter(ec, &admin)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/exports", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), "job-123")
	})

	t.Run("Unauthorized", func(t *testing.T) {
		svc := &mockExportService{startJobID: "job-123"}
		ec := controller.NewExportController(svc, fastStreamer(export.NewProgressStore(0, 0)))
		router := setupExportRouter(ec, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/exports", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("MalformedAssignment", func(t *testing.T) {
		svc := &mockExportService{startErr: health_errors.ErrMalformedAssignment}
		ec := controller.NewExportController(svc, fastStreamer(export.NewProgressStore(0, 0)))
		router := setupExportRouter(ec, &admin)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/exports", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetStatus(t *testing.T) {
	admin := model.Identity{Role: model.RoleAdmin}

	t.Run("Found", func(t *testing.T) {
		svc := &mockExportService{
			progress: model.ExportProgress{JobID: "job1", Status: model.ExportStatusRunning, ProcessedRecords: 10},
			found:    true,
		}
		ec := controller.NewExportController(svc, fastStreamer(export.NewProgressStore(0, 0)))
		router := setupExportRouter(ec, &admin)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/exports/job1/status", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"running"`)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := &mockExportService{}
		ec := controller.NewExportController(svc, fastStreamer(export.NewProgressStore(0, 0)))
		router := setupExportRouter(ec, &admin)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/exports/missing/status", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStreamProgress(t *testing.T) {
	admin := model.Identity{Role: model.RoleAdmin}

	t.Run("CompletedJobStreamsAndCloses", func(t *testing.T) {
		store := export.NewProgressStore(time.Minute, time.Hour)
		_, err := store.Create("job1")
		require.NoError(t, err)
		store.Update("job1", func(p *model.ExportProgress) {
			p.Status = model.ExportStatusCompleted
			p.TotalRecords = 100
			p.ProcessedRecords = 100
		})

		ec := controller.NewExportController(&mockExportService{}, fastStreamer(store))
		router := setupExportRouter(ec, &admin)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/exports/job1/stream", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
		assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))

		body := w.Body.String()
		assert.True(t, strings.HasPrefix(body, "data: "))
		assert.Contains(t, body, `"status":"completed"`)
		// SSE framing: each message ends with a blank line.
		assert.True(t, strings.HasSuffix(body, "\n\n"))
		// A terminal snapshot is emitted exactly once.
		assert.Equal(t, 1, strings.Count(body, "data: "))
	})

	t.Run("UnknownJobEmitsInitializingUntilCeiling", func(t *testing.T) {
		store := export.NewProgressStore(time.Minute, time.Hour)
		ec := controller.NewExportController(&mockExportService{}, fastStreamer(store))
		router := setupExportRouter(ec, &admin)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/exports/ghost/stream", nil)
		router.ServeHTTP(w, req)

		body := w.Body.String()
		assert.Contains(t, body, `"status":"initializing"`)
		assert.Contains(t, body, `"status":"timed_out"`)
	})

	t.Run("UnauthorizedBeforeStreamOpens", func(t *testing.T) {
		store := export.NewProgressStore(time.Minute, time.Hour)
		ec := controller.NewExportController(&mockExportService{}, fastStreamer(store))
		router := setupExportRouter(ec, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/exports/job1/stream", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.NotContains(t, w.Body.String(), "data: ")
	})
}
