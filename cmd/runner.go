package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/duesync/internal/repositories"
	"github.com/desertthunder/duesync/internal/services"
	"github.com/desertthunder/duesync/internal/shared"
	"github.com/desertthunder/duesync/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies left nil are built from the configuration file when a command needs them.
type Runner struct {
	config     *shared.Config
	configPath string
	source     services.CourseSource
	sink       services.TaskSink
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Source     services.CourseSource
	Sink       services.TaskSink
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		source:     opts.Source,
		sink:       opts.Sink,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        opts.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, coursesCommand, assignmentsCommand, tasksCommand, configCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the injected config or reads the file named by --config, then applies
// environment overrides. A missing or malformed file is an error.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		path = defaultConfigPath
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := shared.ApplyEnv(config); err != nil {
		return nil, err
	}

	r.config = config
	r.configPath = path
	r.logger.Debug("loaded config", "path", path)
	return config, nil
}

// connect builds the Canvas and Todoist clients unless they were injected.
func (r *Runner) connect(ctx context.Context, config *shared.Config) (services.CourseSource, services.TaskSink, error) {
	if r.source != nil && r.sink != nil {
		return r.source, r.sink, nil
	}

	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	if r.source == nil {
		canvas, err := services.NewCanvasService(ctx, config.Credentials.Canvas.BaseURL, config.Credentials.Canvas.APIKey, config.Timeout())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Canvas service: %w", err)
		}
		r.source = canvas
	}

	if r.sink == nil {
		todoist, err := services.NewTodoistService(ctx, config.Credentials.Todoist.BaseURL, config.Credentials.Todoist.APIKey, config.Timeout())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Todoist service: %w", err)
		}
		r.sink = todoist
	}

	return r.source, r.sink, nil
}

// journal returns the run repository, opening the configured database when none was injected.
//
// ok is false when no journal is configured. The returned closer must always be called.
func (r *Runner) journal(config *shared.Config) (repo *repositories.RunRepository, closer func(), ok bool, err error) {
	if r.db != nil {
		return repositories.NewRunRepository(r.db), func() {}, true, nil
	}
	if config.Database.Path == "" {
		return nil, func() {}, false, nil
	}

	db, err := shared.OpenJournal(config.Database)
	if err != nil {
		return nil, func() {}, false, fmt.Errorf("failed to open journal: %w", err)
	}
	return repositories.NewRunRepository(db), func() { db.Close() }, true, nil
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
	r.writePlain("%v\n", ui.Styles.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
