package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"arrsync/internal/cache"
	"arrsync/internal/repositories"
	"arrsync/internal/services"
	"arrsync/internal/shared"
	"arrsync/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	plex       services.WatchlistSource
	resolver   services.MetadataResolver
	radarr     *services.RadarrService
	sonarr     *services.SonarrService
	store      *cache.Store
	engine     tasks.SyncEngine
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Plex       services.WatchlistSource
	Resolver   services.MetadataResolver
	Radarr     *services.RadarrService
	Sonarr     *services.SonarrService
	Store      *cache.Store
	Engine     tasks.SyncEngine
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Store == nil {
		opts.Store = cache.NewStore(opts.Config.Cache.Path, opts.Config.Cache.MaxAge(), opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		plex:       opts.Plex,
		resolver:   opts.Resolver,
		radarr:     opts.Radarr,
		sonarr:     opts.Sonarr,
		store:      opts.Store,
		engine:     opts.Engine,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, watchlistCommand, cacheCommand, historyCommand, checkCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// engineFor returns the configured engine, or builds one from the runner's
// services for the given mode.
func (r *Runner) engineFor(mode tasks.Mode) (tasks.SyncEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	if r.plex == nil {
		return nil, fmt.Errorf("%w: watchlist service not initialized", shared.ErrServiceUnavailable)
	}
	if r.resolver == nil {
		return nil, fmt.Errorf("%w: metadata resolver not initialized", shared.ErrServiceUnavailable)
	}
	if r.radarr == nil || r.sonarr == nil {
		return nil, fmt.Errorf("%w: backend services not initialized", shared.ErrServiceUnavailable)
	}
	return tasks.NewReconcileEngine(r.plex, r.resolver, r.radarr, r.sonarr, r.store, tasks.Options{
		Mode:   mode,
		Logger: r.logger,
	}), nil
}

// historyRepo opens the run history database when one is configured.
// Returns a nil repository when history is disabled. The caller is
// responsible for invoking the returned close function.
func (r *Runner) historyRepo() (*repositories.RunRepository, func() error, error) {
	if r.config.Database.Path == "" {
		return nil, func() error { return nil }, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	repo := repositories.NewRunRepository(db)
	if err := repo.InitSchema(); err != nil {
		db.Close()
		return nil, nil, err
	}

	return repo, db.Close, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
