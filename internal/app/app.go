package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Notifuse/emailbuilder/config"
	"github.com/Notifuse/emailbuilder/internal/database"
	"github.com/Notifuse/emailbuilder/internal/domain"
	httpHandler "github.com/Notifuse/emailbuilder/internal/http"
	"github.com/Notifuse/emailbuilder/internal/http/middleware"
	"github.com/Notifuse/emailbuilder/internal/repository"
	"github.com/Notifuse/emailbuilder/internal/service"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
	"github.com/Notifuse/emailbuilder/pkg/cache"
	"github.com/Notifuse/emailbuilder/pkg/export"
	"github.com/Notifuse/emailbuilder/pkg/logger"
	"github.com/Notifuse/emailbuilder/pkg/tracing"

	"contrib.go.opencensus.io/integrations/ocsql"
)

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetDB() *sql.DB
	GetDocumentRepository() domain.DocumentRepository
	GetEditorService() *service.EditorService

	// Server status methods
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Methods for initialization steps
	InitTracing() error
	InitStorage() error
	InitServices() error
	InitHandlers() error

	// Graceful shutdown methods
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application dependencies and configuration
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB

	documentRepo domain.DocumentRepository
	registry     *blocks.Registry
	renders      *cache.InMemoryCache[*domain.ExportResult]

	// Services
	editorService   *service.EditorService
	exportService   *service.ExportService
	documentService *service.DocumentService

	// HTTP handlers
	mux    *http.ServeMux
	server *http.Server

	// Server synchronization
	serverMu      sync.RWMutex
	serverStarted chan struct{}

	// Graceful shutdown management
	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64          // atomic counter for active HTTP requests
	requestWg       sync.WaitGroup // wait group for active requests
	shutdownTimeout time.Duration
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockDB configures the app to use a mock database
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithDocumentRepository bypasses storage initialization
func WithDocumentRepository(repo domain.DocumentRepository) AppOption {
	return func(a *App) {
		a.documentRepo = repo
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:             http.NewServeMux(),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitTracing initializes OpenCensus tracing
func (a *App) InitTracing() error {
	tracingConfig := &a.config.Tracing

	if err := tracing.InitTracing(tracingConfig); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if tracingConfig.Enabled {
		a.logger.WithField("trace_exporter", tracingConfig.TraceExporter).
			WithField("metrics_exporter", tracingConfig.MetricsExporter).
			WithField("sampling_rate", tracingConfig.SamplingProbability).
			Info("Tracing initialized successfully")
	}

	return nil
}

// InitStorage sets up the document repository for the configured driver
func (a *App) InitStorage() error {
	if a.documentRepo != nil {
		return nil
	}

	switch a.config.Storage.Driver {
	case config.StorageDriverFile:
		repo, err := repository.NewDocumentFileRepository(a.config.Storage.Dir)
		if err != nil {
			return fmt.Errorf("failed to initialize file storage: %w", err)
		}
		a.logger.WithField("dir", a.config.Storage.Dir).Info("Using file document storage")
		a.documentRepo = repo
		return nil

	case config.StorageDriverPostgres, "":
		if err := a.initDB(); err != nil {
			return err
		}
		a.documentRepo = repository.NewDocumentPostgresRepository(a.db)
		return nil

	default:
		return fmt.Errorf("unsupported storage driver: %s", a.config.Storage.Driver)
	}
}

func (a *App) initDB() error {
	if a.db == nil {
		password := a.config.Database.Password
		maskedPassword := ""
		if len(password) > 0 {
			maskedPassword = fmt.Sprintf("%c...%c", password[0], password[len(password)-1])
		}
		a.logger.Info(fmt.Sprintf("Connecting to database %s:%d, user %s, sslmode %s, password: %s, dbname: %s",
			a.config.Database.Host, a.config.Database.Port, a.config.Database.User,
			a.config.Database.SSLMode, maskedPassword, a.config.Database.DBName))

		if err := database.EnsureSystemDatabaseExists(database.GetPostgresDSN(&a.config.Database), a.config.Database.DBName); err != nil {
			a.logger.Error(err.Error())
			return fmt.Errorf("failed to ensure database exists: %w", err)
		}

		db, err := database.Connect(&a.config.Database, a.config.Tracing.Enabled)
		if err != nil {
			return err
		}
		a.db = db
	}

	if err := database.InitializeDatabase(a.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	a.logger.Info("Database schema ready")
	return nil
}

// InitServices builds the editor, export and document services
func (a *App) InitServices() error {
	if a.documentRepo == nil {
		return errors.New("document storage is not initialized")
	}

	a.registry = blocks.DefaultRegistry()

	a.editorService = service.NewEditorService(
		a.documentRepo,
		a.logger,
		service.WithHistoryLimit(a.config.Editor.HistoryLimit),
		service.WithSessionTTL(a.config.Editor.SessionTTL),
		service.WithRegistry(a.registry),
	)

	a.renders = cache.NewInMemoryCache[*domain.ExportResult](time.Minute)
	a.exportService = service.NewExportService(
		a.editorService,
		export.NewCompiler(),
		a.renders,
		a.config.Editor.ExportCacheTTL,
		a.logger,
	)

	a.documentService = service.NewDocumentService(a.documentRepo, a.editorService, a.exportService, a.logger)
	return nil
}

// InitHandlers registers every HTTP route on the mux
func (a *App) InitHandlers() error {
	getJWTSecret := func() ([]byte, error) {
		if len(a.config.Security.JWTSecret) == 0 {
			return nil, errors.New("JWT secret is not configured")
		}
		return a.config.Security.JWTSecret, nil
	}

	handlers := []interface{ RegisterRoutes(*http.ServeMux) }{
		httpHandler.NewDocumentHandler(a.documentService, getJWTSecret, a.logger),
		httpHandler.NewEditorHandler(a.editorService, getJWTSecret, a.logger),
		httpHandler.NewExportHandler(a.exportService, getJWTSecret, a.logger),
		httpHandler.NewBlocksHandler(a.registry, getJWTSecret),
		httpHandler.NewRootHandler(a.logger, a.config.Version, a.editorService),
	}
	for _, h := range handlers {
		h.RegisterRoutes(a.mux)
	}

	return nil
}

// Start runs the HTTP server until it is shut down
func (a *App) Start() error {
	var handler http.Handler = a.mux

	// Graceful shutdown middleware first (outermost)
	handler = a.gracefulShutdownMiddleware(handler)

	if a.config.Tracing.Enabled {
		handler = middleware.TracingMiddleware(handler)
		a.logger.Info("OpenCensus tracing middleware enabled")
	}

	handler = middleware.CORSMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).Info(fmt.Sprintf("Server starting on %s", addr))

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})

	a.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	close(serverStarted)

	if a.config.Server.SSL.Enabled {
		a.logger.WithField("cert_file", a.config.Server.SSL.CertFile).Info("SSL enabled")
		return a.server.ListenAndServeTLS(a.config.Server.SSL.CertFile, a.config.Server.SSL.KeyFile)
	}

	return a.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones and flushes
// every open editing session before closing storage
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	a.shutdownCancel()

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("No server to shutdown")
		return a.cleanupResources(ctx)
	}

	activeCount := a.getActiveRequestCount()
	a.logger.WithField("active_requests", activeCount).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining - time.Second // Leave 1 second buffer
			if shutdownTimeout < 0 {
				shutdownTimeout = 0
			}
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	serverShutdownDone := make(chan error, 1)
	go func() {
		a.logger.WithField("timeout", shutdownTimeout).Info("Starting HTTP server shutdown")
		serverShutdownDone <- server.Shutdown(shutdownCtx)
	}()

	requestsDone := make(chan struct{})
	go func() {
		defer close(requestsDone)

		done := make(chan struct{})
		go func() {
			a.requestWg.Wait()
			close(done)
		}()

		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				a.logger.Info("All requests completed")
				return
			case <-ticker.C:
				a.logger.WithField("active_requests", a.getActiveRequestCount()).Info("Still waiting for requests to complete...")
			case <-shutdownCtx.Done():
				a.logger.WithField("active_requests", a.getActiveRequestCount()).Warn("Shutdown timeout reached, forcing shutdown")
				return
			}
		}
	}()

	var shutdownErr error

	select {
	case err := <-serverShutdownDone:
		shutdownErr = err
		a.logger.Info("HTTP server shutdown completed")
	case <-shutdownCtx.Done():
		a.logger.Warn("Shutdown timeout reached")
		shutdownErr = fmt.Errorf("shutdown timeout exceeded")
	}

	if shutdownErr == nil {
		select {
		case <-requestsDone:
		case <-time.After(2 * time.Second):
			if activeCount := a.getActiveRequestCount(); activeCount > 0 {
				a.logger.WithField("active_requests", activeCount).Warn("Some requests still active, proceeding with shutdown")
			}
		}
	}

	if cleanupErr := a.cleanupResources(ctx); cleanupErr != nil {
		a.logger.WithField("error", cleanupErr.Error()).Error("Error during resource cleanup")
		if shutdownErr == nil {
			shutdownErr = cleanupErr
		}
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Graceful shutdown completed successfully")
	}

	return shutdownErr
}

// cleanupResources flushes editing sessions, then releases the render cache
// and the database connection
func (a *App) cleanupResources(ctx context.Context) error {
	a.logger.Info("Cleaning up resources...")

	var firstErr error

	if a.editorService != nil {
		a.logger.WithField("open_sessions", a.editorService.OpenSessions()).Info("Flushing editing sessions")
		if err := a.editorService.Shutdown(ctx); err != nil {
			a.logger.WithField("error", err.Error()).Error("Failed to flush editing sessions")
			firstErr = err
		}
	}

	if a.renders != nil {
		a.renders.Stop()
	}

	if a.db != nil {
		if a.config.Tracing.Enabled {
			if err := ocsql.RecordStats(a.db, 5*time.Second); err != nil {
				a.logger.WithField("error", err.Error()).Error("Failed to record final database stats for tracing")
			}
		}

		a.logger.Info("Closing database connection")
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Error closing database connection")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.logger.Info("Resource cleanup completed")
	return firstErr
}

// IsServerCreated safely checks if the server has been created
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created and initialized.
// Returns true if the server started, false if the context expired first.
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	if started == nil {
		a.logger.Error("serverStarted channel is nil - server initialization error")
		<-ctx.Done()
		return false
	}

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

// Initialize sets up all components of the application
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting emailbuilder")

	if err := a.InitTracing(); err != nil {
		return err
	}

	if err := a.InitStorage(); err != nil {
		return err
	}

	if err := a.InitServices(); err != nil {
		return err
	}

	if err := a.InitHandlers(); err != nil {
		return err
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

// GetConfig returns the app's configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the app's logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the app's HTTP multiplexer
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetDB returns the app's database connection, nil with the file driver
func (a *App) GetDB() *sql.DB {
	return a.db
}

func (a *App) GetDocumentRepository() domain.DocumentRepository {
	return a.documentRepo
}

func (a *App) GetEditorService() *service.EditorService {
	return a.editorService
}

func (a *App) incrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, 1)
	a.requestWg.Add(1)
}

func (a *App) decrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, -1)
	a.requestWg.Done()
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// GetActiveRequestCount returns the current number of active requests
func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

// SetShutdownTimeout sets the timeout for graceful shutdown
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
	a.logger.WithField("shutdown_timeout", timeout.String()).Info("Shutdown timeout configured")
}

// GetShutdownContext returns a context cancelled when shutdown begins
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware tracks active requests and rejects new ones once
// shutdown has started
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		a.incrementActiveRequests()
		defer a.decrementActiveRequests()

		next.ServeHTTP(w, r)
	})
}

// Ensure App implements AppInterface
var _ AppInterface = (*App)(nil)
