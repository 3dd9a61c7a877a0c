package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/iptvx/internal/models"
	"github.com/desertthunder/iptvx/internal/playlist"
	"github.com/desertthunder/iptvx/internal/settings"
	"github.com/desertthunder/iptvx/internal/shared"
	"github.com/desertthunder/iptvx/internal/source"
)

// Acquirer resolves a descriptor to a readable playlist. Implemented by [source.Fetcher].
type Acquirer interface {
	Acquire(ctx context.Context, d source.Descriptor, progress source.ProgressFunc) (*source.Source, error)
}

// Recorder persists run history. Implemented by repositories.RunRepository.
type Recorder interface {
	Create(run *models.Run) error
	Update(run *models.Run) error
}

// SearchRequest describes a search-categories run.
type SearchRequest struct {
	Source       source.Descriptor
	Keywords     []string
	SettingsPath string
}

// SearchResult is the outcome of [Engine.SearchCategories].
type SearchResult struct {
	RunID        string   `json:"run_id"`
	Source       string   `json:"source"`
	Remote       bool     `json:"remote"`
	SettingsPath string   `json:"settings_path"`
	Keywords     []string `json:"keywords"`
	Categories   []string `json:"categories"`
}

// ParseRequest describes a parse run.
type ParseRequest struct {
	Source       source.Descriptor
	SettingsPath string
	OutputPath   string
}

// ParseResult is the outcome of [Engine.Parse].
type ParseResult struct {
	RunID        string   `json:"run_id"`
	Source       string   `json:"source"`
	Remote       bool     `json:"remote"`
	OutputPath   string   `json:"output_path"`
	Categories   []string `json:"categories"`
	LinesWritten int      `json:"lines_written"`
}

// PickRequest describes the listing half of a pick run. No keywords lists every category.
type PickRequest struct {
	Source       source.Descriptor
	Keywords     []string
	SettingsPath string
}

// Selection holds the categories offered to the user during a pick run.
type Selection struct {
	RunID        string
	SettingsPath string
	Available    []string // sorted
	Current      []string // categories already in the settings file that are also available

	state *runState
}

// Engine runs playlist operations against an [Acquirer] and an optional [Recorder].
type Engine struct {
	acquirer Acquirer
	recorder Recorder
	logger   *log.Logger
}

// NewEngine creates a new Engine. A nil recorder disables run history.
func NewEngine(acquirer Acquirer, recorder Recorder, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Engine{acquirer: acquirer, recorder: recorder, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SearchCategories extracts the categories matching req.Keywords and overwrites the settings file with them.
func (e *Engine) SearchCategories(ctx context.Context, req SearchRequest, progress chan<- ProgressUpdate) (*SearchResult, error) {
	if len(req.Keywords) == 0 {
		return nil, fmt.Errorf("%w: at least one keyword is required", shared.ErrMissingArgument)
	}
	if req.SettingsPath == "" {
		return nil, fmt.Errorf("%w: settings path is required", shared.ErrMissingArgument)
	}
	if err := req.Source.Validate(); err != nil {
		return nil, err
	}

	state := e.begin(models.CommandSearch, req.Source)
	state.run.SetKeywords(req.Keywords)
	state.run.SetSettingsPath(req.SettingsPath)

	found, err := e.extract(ctx, state, req.Source, req.Keywords, progress)
	if err != nil {
		return nil, e.finish(state, err)
	}

	categories := found.Sorted()
	e.sendProgress(progress, saveSettingsUpdate(req.SettingsPath, len(categories)))
	if err := settings.Save(req.SettingsPath, categories); err != nil {
		return nil, e.finish(state, err)
	}

	state.run.Succeed(len(categories), len(categories))
	state.logger.Info("saved categories", "count", len(categories), "settings", req.SettingsPath)
	e.sendProgress(progress, completeUpdate("Found %d categories", len(categories)))

	return &SearchResult{
		RunID:        state.run.ID(),
		Source:       req.Source.Redacted(),
		Remote:       req.Source.Remote(),
		SettingsPath: req.SettingsPath,
		Keywords:     req.Keywords,
		Categories:   categories,
	}, e.finish(state, nil)
}

// Parse writes every entry whose category is listed in the settings file to req.OutputPath.
//
// Settings are loaded before the source is acquired so a bad settings file never triggers a download.
func (e *Engine) Parse(ctx context.Context, req ParseRequest, progress chan<- ProgressUpdate) (*ParseResult, error) {
	if req.SettingsPath == "" {
		return nil, fmt.Errorf("%w: settings path is required", shared.ErrMissingArgument)
	}
	if req.OutputPath == "" {
		return nil, fmt.Errorf("%w: output path is required", shared.ErrMissingArgument)
	}
	if err := req.Source.Validate(); err != nil {
		return nil, err
	}

	state := e.begin(models.CommandParse, req.Source)
	state.run.SetSettingsPath(req.SettingsPath)
	state.run.SetOutputPath(req.OutputPath)

	saved, err := settings.Load(req.SettingsPath)
	if err != nil {
		return nil, e.finish(state, err)
	}
	allowed := playlist.NewCategories(saved...)
	state.logger.Debug("loaded settings", "categories", len(allowed))

	src, err := e.acquire(ctx, state, req.Source, progress)
	if err != nil {
		return nil, e.finish(state, err)
	}
	defer e.release(state, src)

	r, err := src.Open()
	if err != nil {
		return nil, e.finish(state, err)
	}
	defer r.Close()

	out, err := os.Create(req.OutputPath)
	if err != nil {
		return nil, e.finish(state, fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, err))
	}

	e.sendProgress(progress, writeOutputUpdate(req.OutputPath, len(allowed)))
	lines, err := playlist.Filter(r, allowed, out)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, closeErr)
	}
	if err != nil {
		return nil, e.finish(state, err)
	}

	state.run.Succeed(len(allowed), lines)
	state.logger.Info("wrote playlist", "output", req.OutputPath, "lines", lines)
	e.sendProgress(progress, completeUpdate("Wrote %d lines to %s", lines, req.OutputPath))

	return &ParseResult{
		RunID:        state.run.ID(),
		Source:       req.Source.Redacted(),
		Remote:       req.Source.Remote(),
		OutputPath:   req.OutputPath,
		Categories:   allowed.Sorted(),
		LinesWritten: lines,
	}, e.finish(state, nil)
}

// Categories lists the categories available for a pick run.
//
// The run stays open until [Engine.SaveSelection] or [Engine.Discard] is called with the returned [Selection].
func (e *Engine) Categories(ctx context.Context, req PickRequest, progress chan<- ProgressUpdate) (*Selection, error) {
	if req.SettingsPath == "" {
		return nil, fmt.Errorf("%w: settings path is required", shared.ErrMissingArgument)
	}
	if err := req.Source.Validate(); err != nil {
		return nil, err
	}

	state := e.begin(models.CommandPick, req.Source)
	state.run.SetKeywords(req.Keywords)
	state.run.SetSettingsPath(req.SettingsPath)

	keywords := req.Keywords
	if len(keywords) == 0 {
		// the empty string is a substring of every category
		keywords = []string{""}
	}

	found, err := e.extract(ctx, state, req.Source, keywords, progress)
	if err != nil {
		return nil, e.finish(state, err)
	}

	sel := &Selection{
		RunID:        state.run.ID(),
		SettingsPath: req.SettingsPath,
		Available:    found.Sorted(),
		state:        state,
	}

	if settings.Exists(req.SettingsPath) {
		saved, err := settings.Load(req.SettingsPath)
		if err != nil {
			state.logger.Warn("ignoring current settings", "error", err)
		}
		for _, c := range saved {
			if found.Has(c) {
				sel.Current = append(sel.Current, c)
			}
		}
	}

	e.sendProgress(progress, completeUpdate("Found %d categories", len(sel.Available)))
	return sel, nil
}

// SaveSelection overwrites the settings file with chosen, which must be a subset of sel.Available.
func (e *Engine) SaveSelection(sel *Selection, chosen []string) error {
	if sel == nil || sel.state == nil {
		return fmt.Errorf("%w: selection is not open", shared.ErrInvalidArgument)
	}

	for _, c := range chosen {
		if _, ok := slices.BinarySearch(sel.Available, c); !ok {
			return e.finish(sel.state, fmt.Errorf("%w: unknown category %q", shared.ErrInvalidArgument, c))
		}
	}

	categories := playlist.NewCategories(chosen...).Sorted()
	if err := settings.Save(sel.SettingsPath, categories); err != nil {
		return e.finish(sel.state, err)
	}

	sel.state.run.Succeed(len(categories), len(categories))
	sel.state.logger.Info("saved selection", "count", len(categories), "settings", sel.SettingsPath)
	return e.finish(sel.state, nil)
}

// Discard closes a pick run without touching the settings file.
func (e *Engine) Discard(sel *Selection, reason error) {
	if sel == nil || sel.state == nil {
		return
	}
	if reason == nil {
		reason = shared.ErrCanceled
	}
	e.finish(sel.state, reason)
}

func (e *Engine) acquire(ctx context.Context, state *runState, d source.Descriptor, progress chan<- ProgressUpdate) (*source.Source, error) {
	e.sendProgress(progress, acquireUpdate(d))
	src, err := e.acquirer.Acquire(ctx, d, func(p source.Progress) {
		e.sendProgress(progress, downloadUpdate(p))
	})
	if err != nil {
		return nil, err
	}
	state.logger.Debug("acquired playlist", "path", src.Path, "size", shared.FormatBytes(src.Size))
	return src, nil
}

func (e *Engine) release(state *runState, src *source.Source) {
	if err := src.Close(); err != nil {
		state.logger.Warn("failed to release playlist", "path", src.Path, "error", err)
	}
}

func (e *Engine) extract(ctx context.Context, state *runState, d source.Descriptor, keywords []string, progress chan<- ProgressUpdate) (playlist.Categories, error) {
	src, err := e.acquire(ctx, state, d, progress)
	if err != nil {
		return nil, err
	}
	defer e.release(state, src)

	r, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	e.sendProgress(progress, scanUpdate(src))
	found, err := playlist.Extract(r, keywords)
	if err != nil {
		return nil, err
	}
	state.logger.Debug("extracted categories", "count", len(found))
	return found, nil
}

// runState tracks the history record of one operation.
type runState struct {
	run      *models.Run
	logger   *log.Logger
	recorded bool
	done     bool
}

func (e *Engine) begin(command string, d source.Descriptor) *runState {
	run := models.NewRun(0, command, d.Redacted())
	run.SetRemote(d.Remote())

	state := &runState{run: run}
	if e.recorder != nil {
		if err := e.recorder.Create(run); err != nil {
			e.logger.Warn("failed to record run", "command", command, "error", err)
		} else {
			state.recorded = true
		}
	}
	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}

	state.logger = shared.WithLogger(e.logger, "run", run.ID())
	state.logger.Info("starting run", "command", command, "source", d.Redacted())
	return state
}

// finish records the outcome of a run and returns err unchanged.
func (e *Engine) finish(state *runState, err error) error {
	if state.done {
		return err
	}
	state.done = true

	if err != nil {
		state.run.Fail(err)
		if errors.Is(err, shared.ErrCanceled) {
			state.logger.Info("run canceled")
		} else {
			state.logger.Error("run failed", "error", err)
		}
	}

	if state.recorded {
		if uerr := e.recorder.Update(state.run); uerr != nil {
			state.logger.Warn("failed to update run history", "error", uerr)
		}
	}
	return err
}
