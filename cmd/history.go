package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/iptvx/internal/formatter"
	"github.com/desertthunder/iptvx/internal/models"
	"github.com/desertthunder/iptvx/internal/repositories"
	"github.com/desertthunder/iptvx/internal/shared"
	"github.com/desertthunder/iptvx/internal/ui"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	runs, err := r.requireHistory()
	if err != nil {
		return err
	}

	list, err := listRuns(runs, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if list == nil {
			list = []*models.Run{}
		}
		return r.writeJSON(list, true)
	}

	if len(list) == 0 {
		return r.writePlain("No runs recorded\n")
	}

	r.writePlainHeader("Run History")
	for _, run := range list {
		r.writePlain("#%-4d %s  %-17s %s\n",
			run.Sequence(), run.CreatedAt().Local().Format("2006-01-02 15:04:05"), run.Command(), statusLabel(run))
		r.writePlain("      id: %s\n", run.ID())
		r.writePlain("      source: %s\n", run.Source())
		if run.OutputPath() != "" {
			r.writePlain("      output: %s (%d lines)\n", run.OutputPath(), run.LinesWritten())
		}
		if run.SettingsPath() != "" {
			r.writePlain("      settings: %s (%d categories)\n", run.SettingsPath(), run.Categories())
		}
		if run.Error() != "" {
			r.writePlain("      error: %s\n", run.Error())
		}
	}
	return nil
}

// HistoryExport writes recorded runs to a CSV, Markdown or text file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	runs, err := r.requireHistory()
	if err != nil {
		return err
	}
	list, err := listRuns(runs, cmd)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(list, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported runs", "count", len(list), "path", path)
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("Exported %d runs to %s", len(list), path)))
}

// HistoryDelete removes one run from the history.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.String("id"))
	if id == "" {
		return fmt.Errorf("%w: --id is required", shared.ErrMissingArgument)
	}

	runs, err := r.requireHistory()
	if err != nil {
		return err
	}
	if err := runs.Delete(id); err != nil {
		return err
	}

	r.logger.Info("deleted run", "id", id)
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("Deleted run %s", id)))
}

func (r *Runner) requireHistory() (*repositories.RunRepository, error) {
	runs, err := r.history()
	if err != nil {
		return nil, err
	}
	if runs == nil {
		return nil, fmt.Errorf("%w: run history is disabled (database.path is empty)", shared.ErrInvalidConfig)
	}
	return runs, nil
}

// listRuns applies the --command and --limit filters.
func listRuns(runs *repositories.RunRepository, cmd *cli.Command) ([]*models.Run, error) {
	command := strings.TrimSpace(cmd.String("command"))
	switch command {
	case "", models.CommandSearch, models.CommandParse, models.CommandPick:
	default:
		return nil, fmt.Errorf("%w: unknown command %q", shared.ErrInvalidArgument, command)
	}
	return runs.List(map[string]any{"command": command, "limit": int(cmd.Int("limit"))})
}

func statusLabel(run *models.Run) string {
	switch run.Status() {
	case models.RunSucceeded:
		return ui.Success(string(run.Status()))
	case models.RunFailed:
		return ui.Failure(string(run.Status()))
	default:
		return ui.Warning(string(run.Status()))
	}
}
