// Package container wires the restdb components together.
package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/adapters/database/mysql"
	"github.com/satishbabariya/restdb/internal/adapters/database/postgres"
	"github.com/satishbabariya/restdb/internal/adapters/database/sqlite"
	"github.com/satishbabariya/restdb/internal/adapters/rest"
	"github.com/satishbabariya/restdb/internal/adapters/telemetry"
	"github.com/satishbabariya/restdb/internal/config"
	"github.com/satishbabariya/restdb/internal/core/generator"
	"github.com/satishbabariya/restdb/internal/core/generator/template"
	"github.com/satishbabariya/restdb/internal/core/query/compiler"
	"github.com/satishbabariya/restdb/internal/core/query/executor"
	"github.com/satishbabariya/restdb/internal/core/query/keys"
	"github.com/satishbabariya/restdb/internal/debug"
	"github.com/satishbabariya/restdb/internal/i18n"
	"github.com/satishbabariya/restdb/internal/service"
	"github.com/satishbabariya/restdb/internal/watch"

	// Bundled generators register themselves.
	_ "github.com/satishbabariya/restdb/internal/generators/sample"
)

// Container holds all application dependencies.
type Container struct {
	config *config.Config

	// Adapters
	dbAdapter database.Adapter
	telemetry telemetry.Telemetry
	localizer *i18n.Localizer

	// Core
	registry *generator.Registry
	keyCache *keys.Cache
	executor *executor.QueryExecutor

	// Services
	tableService *service.TableService
	queryService *service.QueryService
	infoService  *service.InfoService

	templatesMu   sync.Mutex
	templateFiles []string
	fileNames     map[string][]string
	watcher       *watch.Watcher
}

// NewContainer creates the adapter for cfg and wires everything to it.
// The database is not contacted until Connect.
func NewContainer(cfg *config.Config) (*Container, error) {
	adapter, err := createDatabaseAdapter(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database adapter: %w", err)
	}
	return NewWithAdapter(cfg, adapter)
}

// NewWithAdapter wires everything to an existing adapter.
func NewWithAdapter(cfg *config.Config, adapter database.Adapter) (*Container, error) {
	c := &Container{
		config:    cfg,
		dbAdapter: adapter,
	}

	var err error
	c.telemetry, err = telemetry.NewTelemetry(&telemetry.Config{Type: cfg.Telemetry.Type})
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry: %w", err)
	}
	c.localizer, err = i18n.New(cfg.I18n.DefaultLanguage)
	if err != nil {
		return nil, err
	}

	c.registry = generator.NewRegistry(cfg.Generators.Scopes)
	c.executor = executor.NewQueryExecutor(adapter, c.telemetry)
	c.keyCache = keys.NewCache(keys.NewMetadataLookup(c.executor))

	sqlCompiler := compiler.NewSQLCompiler(c.keyCache, compiler.Options{AllowFullScan: cfg.Features.FullScan})
	c.tableService = service.NewTableService(sqlCompiler, c.executor, cfg.Database.DefaultSchema)
	c.queryService = service.NewQueryService(c.registry, c.executor)
	c.infoService = service.NewInfoService(c.executor, c.keyCache, cfg.Features.Info, cfg.Database.DefaultSchema)

	return c, nil
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Adapter returns the database adapter.
func (c *Container) Adapter() database.Adapter {
	return c.dbAdapter
}

// Registry returns the generator registry.
func (c *Container) Registry() *generator.Registry {
	return c.registry
}

// Executor returns the statement executor.
func (c *Container) Executor() *executor.QueryExecutor {
	return c.executor
}

// KeyCache returns the primary key cache.
func (c *Container) KeyCache() *keys.Cache {
	return c.keyCache
}

// TableService returns the table service.
func (c *Container) TableService() *service.TableService {
	return c.tableService
}

// QueryService returns the query service.
func (c *Container) QueryService() *service.QueryService {
	return c.queryService
}

// InfoService returns the info service.
func (c *Container) InfoService() *service.InfoService {
	return c.infoService
}

// Telemetry returns the telemetry adapter.
func (c *Container) Telemetry() telemetry.Telemetry {
	return c.telemetry
}

// Connect opens the database connection within the configured timeout.
func (c *Container) Connect(ctx context.Context) error {
	timeout := database.Config{ConnectTimeout: c.config.Database.ConnectTimeout}.Timeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := c.dbAdapter.Connect(ctx)
	c.telemetry.RecordConnection(ctx, telemetry.ConnectionInfo{
		Event:    "connect",
		Duration: time.Since(start),
		Success:  err == nil,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.config.Database.Provider, err)
	}
	debug.Info("Connected to database", "provider", c.config.Database.Provider, "dialect", c.dbAdapter.GetDialect())
	return nil
}

// LoadTemplates registers the generators of every configured template file.
func (c *Container) LoadTemplates() error {
	sets, err := template.Load(config.AppFs, c.config.Generators.Templates)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	c.templatesMu.Lock()
	defer c.templatesMu.Unlock()
	c.templateFiles = c.templateFiles[:0]
	c.fileNames = make(map[string][]string, len(sets))
	for _, set := range sets {
		names := set.Register(c.registry)
		c.templateFiles = append(c.templateFiles, set.Path)
		c.fileNames[set.Path] = names
		debug.Debug("Template generators registered", "file", set.Path, "generators", names)
	}
	return nil
}

// TemplateFiles returns the template files loaded so far.
func (c *Container) TemplateFiles() []string {
	c.templatesMu.Lock()
	defer c.templatesMu.Unlock()
	return append([]string(nil), c.templateFiles...)
}

// Reload recompiles one template file. Generators the file no longer
// declares are unregistered, and cached handles built from its old or new
// content are dropped so the next request resolves them again.
func (c *Container) Reload(path string) error {
	set, err := template.LoadFile(config.AppFs, path)
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", path, err)
	}

	c.templatesMu.Lock()
	defer c.templatesMu.Unlock()
	if c.fileNames == nil {
		c.fileNames = make(map[string][]string)
	}

	previous := c.fileNames[path]
	names := set.Register(c.registry)
	current := make(map[string]bool, len(names))
	for _, name := range names {
		current[name] = true
	}
	var stale []string
	for _, name := range previous {
		if !current[name] {
			stale = append(stale, name)
		}
	}
	c.registry.Unregister(stale...)
	dropped := c.registry.Refresh(append(append([]string(nil), names...), previous...)...)
	c.fileNames[path] = names

	debug.Info("Templates reloaded", "file", path, "generators", names, "removed", stale, "refreshed", dropped)
	return nil
}

// Watch reloads template files when they change.
func (c *Container) Watch() error {
	files := c.TemplateFiles()
	if len(files) == 0 {
		return nil
	}
	w, err := watch.NewWatcher(files, c.Reload)
	if err != nil {
		return err
	}
	w.Start()
	c.watcher = w
	debug.Info("Watching templates", "files", files)
	return nil
}

// Handler returns the HTTP handler.
func (c *Container) Handler() *rest.Handler {
	return rest.NewHandler(c.tableService, c.queryService, c.infoService, c.dbAdapter, c.localizer, c.telemetry)
}

// Router returns the gin engine serving the configured base path.
func (c *Container) Router() *gin.Engine {
	return rest.NewRouter(c.Handler(), c.config.Server.BasePath)
}

// Close cleans up resources.
func (c *Container) Close(ctx context.Context) error {
	if c.watcher != nil {
		_ = c.watcher.Stop()
	}
	if c.telemetry != nil {
		_ = c.telemetry.Close(ctx)
	}
	if c.dbAdapter != nil {
		return c.dbAdapter.Disconnect(ctx)
	}
	return nil
}

// createDatabaseAdapter creates the appropriate database adapter based on provider.
func createDatabaseAdapter(cfg config.DatabaseConfig) (database.Adapter, error) {
	dbConfig := database.Config{
		Provider:       cfg.Provider,
		URL:            cfg.URL,
		MaxConnections: cfg.MaxConnections,
		MaxIdleTime:    cfg.MaxIdleTime,
		ConnectTimeout: cfg.ConnectTimeout,
		ReturningKeys:  cfg.ReturningKeys,
	}

	var adapter database.Adapter
	var err error

	switch cfg.Provider {
	case "postgresql", "postgres":
		adapter, err = postgres.NewPostgresAdapter(dbConfig)
	case "mysql":
		adapter, err = mysql.NewMySQLAdapter(dbConfig)
	case "sqlite", "sqlite3":
		adapter, err = sqlite.NewSQLiteAdapter(dbConfig)
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create adapter: %w", err)
	}

	return adapter, nil
}
