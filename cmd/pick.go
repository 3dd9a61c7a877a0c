package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/iptvx/internal/tasks"
	"github.com/desertthunder/iptvx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Pick lists the playlist's categories in an interactive picker and saves the selection.
func (r *Runner) Pick(ctx context.Context, cmd *cli.Command) error {
	req := tasks.PickRequest{
		Source:       descriptor(cmd),
		Keywords:     keywords(cmd),
		SettingsPath: r.settingsPath(cmd),
	}

	engine := r.getEngine()
	progress, wait := r.startProgress()
	sel, err := engine.Categories(ctx, req, progress)
	wait()
	if err != nil {
		return err
	}

	if len(sel.Available) == 0 {
		engine.Discard(sel, nil)
		return r.writePlain("%s\n", ui.Warning("No categories found"))
	}

	picker := ui.NewPicker(fmt.Sprintf("Categories in %s", req.Source.Redacted()), sel.Available, sel.Current)
	chosen, err := r.pick(ctx, picker)
	if err != nil {
		engine.Discard(sel, err)
		return err
	}

	if err := engine.SaveSelection(sel, chosen); err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("Saved %d categories to %s", len(chosen), sel.SettingsPath)))
}
