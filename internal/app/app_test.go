package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/emailbuilder/config"
	"github.com/Notifuse/emailbuilder/internal/database/schema"
	"github.com/Notifuse/emailbuilder/internal/domain/mocks"
	"github.com/Notifuse/emailbuilder/internal/http/middleware"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
	pkgmocks "github.com/Notifuse/emailbuilder/pkg/mocks"
)

var testJWTSecret = []byte("test-jwt-secret-key-32-bytes-min")

func createTestConfig(t *testing.T) *config.Config {
	return &config.Config{
		Environment: "test",
		Version:     "test",
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 0,
		},
		Database: config.DatabaseConfig{
			User:     "postgres_test",
			Password: "postgres_test",
			Host:     "localhost",
			Port:     5432,
			DBName:   "emailbuilder_test",
		},
		Storage: config.StorageConfig{
			Driver: config.StorageDriverFile,
			Dir:    t.TempDir(),
		},
		Editor: config.EditorConfig{
			HistoryLimit:   10,
			ExportCacheTTL: time.Minute,
		},
		Security: config.SecurityConfig{
			JWTSecret: testJWTSecret,
		},
	}
}

func newMockLogger(ctrl *gomock.Controller) *pkgmocks.MockLogger {
	mockLogger := pkgmocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	return mockLogger
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...AppOption) *App {
	ctrl := gomock.NewController(t)
	opts = append([]AppOption{WithLogger(newMockLogger(ctrl))}, opts...)
	return NewApp(cfg, opts...).(*App)
}

func serve(t *testing.T, app *App, method, target string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	token, err := middleware.SignToken("user1", "user@example.com", testJWTSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	app.GetMux().ServeHTTP(rec, req)
	return rec
}

func TestNewApp(t *testing.T) {
	cfg := createTestConfig(t)

	app := NewApp(cfg)
	assert.NotNil(t, app)
	assert.Equal(t, cfg, app.GetConfig())
	assert.NotNil(t, app.GetLogger())
	assert.NotNil(t, app.GetMux())
	assert.Nil(t, app.GetDB())

	ctrl := gomock.NewController(t)
	mockLogger := pkgmocks.NewMockLogger(ctrl)
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := mocks.NewMockDocumentRepository(ctrl)

	app = NewApp(cfg, WithLogger(mockLogger), WithMockDB(mockDB), WithDocumentRepository(repo))
	assert.Equal(t, mockLogger, app.GetLogger())
	assert.Equal(t, mockDB, app.GetDB())
	assert.Equal(t, repo, app.GetDocumentRepository())
}

func TestAppInitStorage(t *testing.T) {
	t.Run("file driver", func(t *testing.T) {
		app := newTestApp(t, createTestConfig(t))

		require.NoError(t, app.InitStorage())
		assert.NotNil(t, app.GetDocumentRepository())
		assert.Nil(t, app.GetDB())
	})

	t.Run("postgres driver initializes the schema", func(t *testing.T) {
		cfg := createTestConfig(t)
		cfg.Storage.Driver = config.StorageDriverPostgres

		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		for range schema.TableDefinitions {
			mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
		}

		app := newTestApp(t, cfg, WithMockDB(db))
		require.NoError(t, app.InitStorage())
		assert.NotNil(t, app.GetDocumentRepository())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("schema failure", func(t *testing.T) {
		cfg := createTestConfig(t)
		cfg.Storage.Driver = config.StorageDriverPostgres

		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectExec("CREATE").WillReturnError(errors.New("permission denied"))

		app := newTestApp(t, cfg, WithMockDB(db))
		err = app.InitStorage()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize database schema")
		assert.Nil(t, app.GetDocumentRepository())
	})

	t.Run("unsupported driver", func(t *testing.T) {
		cfg := createTestConfig(t)
		cfg.Storage.Driver = "s3"

		app := newTestApp(t, cfg)
		err := app.InitStorage()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported storage driver")
	})

	t.Run("provided repository is kept", func(t *testing.T) {
		cfg := createTestConfig(t)
		cfg.Storage.Driver = "s3"
		repo := mocks.NewMockDocumentRepository(gomock.NewController(t))

		app := newTestApp(t, cfg, WithDocumentRepository(repo))
		require.NoError(t, app.InitStorage())
		assert.Equal(t, repo, app.GetDocumentRepository())
	})
}

func TestAppInitServices_RequiresStorage(t *testing.T) {
	app := newTestApp(t, createTestConfig(t))

	err := app.InitServices()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document storage is not initialized")
}

func TestAppInitialize_EndToEnd(t *testing.T) {
	cfg := createTestConfig(t)
	app := newTestApp(t, cfg)
	require.NoError(t, app.Initialize())

	rec := serve(t, app, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, app, http.MethodPost, "/api/documents.create", map[string]interface{}{
		"id":   "newsletter",
		"name": "Newsletter",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Document struct {
			ID    string        `json:"id"`
			Email *blocks.Email `json:"email"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "newsletter", created.Document.ID)
	pageID := created.Document.Email.Content.ID
	require.NotEmpty(t, pageID)

	rec = serve(t, app, http.MethodPost, "/api/editor.addBlock", map[string]interface{}{
		"document_id": "newsletter",
		"parent_id":   pageID,
		"type":        "section",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, app.GetEditorService().OpenSessions())

	rec = serve(t, app, http.MethodPost, "/api/export.mjml", map[string]interface{}{"document_id": "newsletter"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "mj-section")

	rec = serve(t, app, http.MethodGet, "/api/blocks.types", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, app.Shutdown(context.Background()))
	assert.Equal(t, 0, app.GetEditorService().OpenSessions())

	doc, err := app.GetDocumentRepository().GetDocument(context.Background(), "newsletter")
	require.NoError(t, err)
	require.Len(t, doc.Email.Content.Children, 1)
	assert.Equal(t, blocks.TypeSection, doc.Email.Content.Children[0].Type)
}

func TestAppInitHandlers_MissingSecret(t *testing.T) {
	cfg := createTestConfig(t)
	cfg.Security.JWTSecret = nil
	app := newTestApp(t, cfg)
	require.NoError(t, app.Initialize())
	defer app.Shutdown(context.Background())

	rec := serve(t, app, http.MethodGet, "/api/documents.list", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAppShutdown_ClosesDatabase(t *testing.T) {
	cfg := createTestConfig(t)
	cfg.Storage.Driver = config.StorageDriverPostgres

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	for range schema.TableDefinitions {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectClose()

	app := newTestApp(t, cfg, WithMockDB(db))
	require.NoError(t, app.Initialize())
	require.NoError(t, app.Shutdown(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppStartAndShutdown(t *testing.T) {
	app := newTestApp(t, createTestConfig(t))
	require.NoError(t, app.Initialize())
	app.SetShutdownTimeout(5 * time.Second)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.True(t, app.WaitForServerStart(ctx))
	assert.True(t, app.IsServerCreated())

	require.NoError(t, app.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-app.GetShutdownContext().Done():
	default:
		t.Fatal("shutdown context should be cancelled")
	}
}

func TestWaitForServerStart_Timeout(t *testing.T) {
	app := newTestApp(t, createTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, app.WaitForServerStart(ctx))
	assert.False(t, app.IsServerCreated())
}

func TestGracefulShutdownMiddleware(t *testing.T) {
	app := newTestApp(t, createTestConfig(t))

	var during int64
	handler := app.gracefulShutdownMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = app.GetActiveRequestCount()
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(1), during)
	assert.Equal(t, int64(0), app.GetActiveRequestCount())

	app.shutdownCancel()

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
