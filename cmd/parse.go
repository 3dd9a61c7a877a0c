package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/iptvx/internal/shared"
	"github.com/desertthunder/iptvx/internal/tasks"
	"github.com/desertthunder/iptvx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Parse writes the entries whose category is saved in the settings file to the output playlist.
func (r *Runner) Parse(ctx context.Context, cmd *cli.Command) error {
	output := strings.TrimSpace(cmd.String("output_m3u_file"))
	if output == "" {
		return fmt.Errorf("%w: --output_m3u_file (-o) is required", shared.ErrMissingArgument)
	}
	settingsPath := strings.TrimSpace(cmd.String("settings"))
	if settingsPath == "" {
		return fmt.Errorf("%w: --settings (-s) is required", shared.ErrMissingArgument)
	}

	req := tasks.ParseRequest{
		Source:       descriptor(cmd),
		SettingsPath: settingsPath,
		OutputPath:   output,
	}

	progress, wait := r.startProgress()
	result, err := r.getEngine().Parse(ctx, req, progress)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("Filtered M3U file saved to %s (%d lines)", result.OutputPath, result.LinesWritten)))
}
