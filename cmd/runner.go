package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/iptvx/internal/repositories"
	"github.com/desertthunder/iptvx/internal/shared"
	"github.com/desertthunder/iptvx/internal/source"
	"github.com/desertthunder/iptvx/internal/tasks"
	"github.com/desertthunder/iptvx/internal/ui"
	"github.com/urfave/cli/v3"
)

// PickFunc runs an interactive category picker and returns the chosen categories.
type PickFunc func(ctx context.Context, p *ui.Picker) ([]string, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	errOutput  io.Writer
	input      io.Reader
	pick       PickFunc
	db         *sql.DB
	runs       *repositories.RunRepository
	engine     *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer // command results
	ErrOutput  io.Writer // progress
	Input      io.Reader
	Pick       PickFunc
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
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		errOutput:  opts.ErrOutput,
		input:      opts.Input,
		pick:       opts.Pick,
	}
	if r.pick == nil {
		r.pick = func(ctx context.Context, p *ui.Picker) ([]string, error) {
			return ui.RunPicker(ctx, p, r.input, r.output)
		}
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		searchCommand, parseCommand, pickCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	for _, c := range commands {
		c.OnUsageError = usageError
		for _, sub := range c.Commands {
			sub.OnUsageError = usageError
		}
	}
	return commands
}

// usageError tags flag parsing failures so they exit with the usage code.
func usageError(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
	return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
}

// loadConfig is the root Before hook. A missing config file means defaults.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	r.configPath = path

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// history opens the run history database on first use. It returns nil when history is disabled.
func (r *Runner) history() (*repositories.RunRepository, error) {
	if r.runs != nil {
		return r.runs, nil
	}

	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, nil
	}

	r.db = db
	r.runs = repositories.NewRunRepository(db)
	return r.runs, nil
}

// getEngine builds the engine on first use, after the config has been loaded.
func (r *Runner) getEngine() *tasks.Engine {
	if r.engine != nil {
		return r.engine
	}

	client := *r.httpClient
	if timeout := r.config.Download.Timeout(); timeout > 0 {
		client.Timeout = timeout
	}
	fetcher := source.NewFetcher(source.Options{
		Client:    &client,
		UserAgent: r.config.Download.UserAgent,
		TempDir:   r.config.Download.TempDir,
		Logger:    r.logger,
	})

	var recorder tasks.Recorder
	runs, err := r.history()
	switch {
	case err != nil:
		r.logger.Warn("run history disabled", "error", err)
	case runs != nil:
		recorder = runs
	}

	r.engine = tasks.NewEngine(fetcher, recorder, r.logger)
	return r.engine
}

// Close releases the history database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.runs, r.engine = nil, nil, nil
	return err
}

// startProgress renders engine updates on the error output until the returned func is called.
func (r *Runner) startProgress() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	bar := ui.NewProgressBar(r.errOutput, 100*time.Millisecond)

	done := make(chan struct{})
	go func() {
		bar.Consume(progressCh)
		close(done)
	}()

	return progressCh, func() {
		close(progressCh)
		<-done
	}
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
