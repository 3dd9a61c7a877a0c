package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/iptvx/internal/source"
	"github.com/desertthunder/iptvx/internal/tasks"
	"github.com/desertthunder/iptvx/internal/ui"
	"github.com/urfave/cli/v3"
)

// SearchCategories finds categories matching keywords and overwrites the settings file with them.
func (r *Runner) SearchCategories(ctx context.Context, cmd *cli.Command) error {
	req := tasks.SearchRequest{
		Source:       descriptor(cmd),
		Keywords:     keywords(cmd),
		SettingsPath: r.settingsPath(cmd),
	}
	r.logger.Debug("search requested", "source", req.Source.Redacted(), "keywords", req.Keywords)

	progress, wait := r.startProgress()
	result, err := r.getEngine().SearchCategories(ctx, req, progress)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	for _, c := range result.Categories {
		r.writePlain("  %s\n", c)
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("Found and saved %d categories to %s", len(result.Categories), result.SettingsPath)))
}

// descriptor reads the shared -i / -u flags.
func descriptor(cmd *cli.Command) source.Descriptor {
	return source.Descriptor{
		Path: strings.TrimSpace(cmd.String("input_m3u_file")),
		URL:  strings.TrimSpace(cmd.String("url")),
	}
}

// keywords merges -k values with positional arguments. Values are kept verbatim;
// an empty keyword matches every category.
func keywords(cmd *cli.Command) []string {
	return append(cmd.StringSlice("keywords"), cmd.Args().Slice()...)
}

// settingsPath returns -s or the configured default.
func (r *Runner) settingsPath(cmd *cli.Command) string {
	if p := strings.TrimSpace(cmd.String("settings")); p != "" {
		return p
	}
	return r.config.Settings.Path
}
