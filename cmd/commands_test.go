package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/iptvx/internal/settings"
	"github.com/desertthunder/iptvx/internal/shared"
	tu "github.com/desertthunder/iptvx/internal/testing"
	"github.com/desertthunder/iptvx/internal/ui"
)

const playlistBody = `#EXTM3U
#EXTINF:-1 group-title="Sports",ESPN
http://example.com/espn
#EXTINF:-1 group-title="News",CNN
http://example.com/cnn
#EXTINF:-1 group-title="Sports HD",ESPN HD
http://example.com/espnhd
`

type harness struct {
	dir        string
	configPath string
	input      string
	out        *bytes.Buffer
	errOut     *bytes.Buffer
	runner     *Runner
}

// newHarness writes a config with history stored in a temp dir and a local playlist.
func newHarness(t *testing.T, pick PickFunc) *harness {
	t.Helper()
	dir := t.TempDir()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "history.db")
	config.Settings.Path = filepath.Join(dir, "config.ini")
	config.Download.TempDir = dir
	configPath := filepath.Join(dir, "config.toml")
	if err := shared.SaveConfig(configPath, config); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	h := &harness{
		dir:        dir,
		configPath: configPath,
		input:      tu.WriteFile(t, dir, "list.m3u", playlistBody),
		out:        &bytes.Buffer{},
		errOut:     &bytes.Buffer{},
	}
	h.runner = NewRunner(RunnerOpts{
		Logger:    shared.NewLogger(io.Discard),
		Output:    h.out,
		ErrOutput: h.errOut,
		Pick:      pick,
	})
	t.Cleanup(func() { h.runner.Close() })
	return h
}

func (h *harness) run(args ...string) error {
	h.out.Reset()
	return newApp(h.runner).Run(context.Background(), append([]string{"iptvx", "--config", h.configPath}, args...))
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

func TestSearchCategoriesCommand(t *testing.T) {
	t.Run("saves matching categories", func(t *testing.T) {
		h := newHarness(t, nil)
		settingsPath := h.path("search.ini")

		if err := h.run("search-categories", "-i", h.input, "-k", "sport", "-s", settingsPath); err != nil {
			t.Fatalf("search-categories error = %v", err)
		}

		if !strings.Contains(h.out.String(), "Found and saved 2 categories to "+settingsPath) {
			t.Errorf("unexpected output %q", h.out.String())
		}
		saved, err := settings.Load(settingsPath)
		if err != nil {
			t.Fatalf("settings.Load() error = %v", err)
		}
		if !slices.Equal(saved, []string{"Sports", "Sports HD"}) {
			t.Errorf("unexpected settings %v", saved)
		}
	})

	t.Run("alias with positional keywords and default settings path", func(t *testing.T) {
		h := newHarness(t, nil)

		if err := h.run("search", "-i", h.input, "news", "hd"); err != nil {
			t.Fatalf("search error = %v", err)
		}

		saved, err := settings.Load(h.path("config.ini"))
		if err != nil {
			t.Fatalf("settings.Load() error = %v", err)
		}
		if !slices.Equal(saved, []string{"News", "Sports HD"}) {
			t.Errorf("unexpected settings %v", saved)
		}
	})

	t.Run("keyword containing a comma is one keyword", func(t *testing.T) {
		h := newHarness(t, nil)
		input := tu.WriteFile(t, h.dir, "uk.m3u", "#EXTM3U\n"+
			"#EXTINF:-1 group-title=\"UK Sports\",One\nhttp://a/1\n"+
			"#EXTINF:-1 group-title=\"UK, News\",Two\nhttp://a/2\n"+
			"#EXTINF:-1 group-title=\"World News\",Three\nhttp://a/3\n")

		if err := h.run("search", "-i", input, "-k", "UK, News", "-k", "world", "--json"); err != nil {
			t.Fatalf("search error = %v", err)
		}

		var result struct {
			Categories []string `json:"categories"`
			Keywords   []string `json:"keywords"`
		}
		if err := json.Unmarshal(h.out.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode output %q: %v", h.out.String(), err)
		}
		if !slices.Equal(result.Keywords, []string{"UK, News", "world"}) {
			t.Errorf("unexpected keywords %q", result.Keywords)
		}
		if !slices.Equal(result.Categories, []string{"UK, News", "World News"}) {
			t.Errorf("unexpected categories %q", result.Categories)
		}
	})

	t.Run("empty keyword matches every category", func(t *testing.T) {
		h := newHarness(t, nil)

		if err := h.run("search", "-i", h.input, "-k", ""); err != nil {
			t.Fatalf("search error = %v", err)
		}

		saved, err := settings.Load(h.path("config.ini"))
		if err != nil {
			t.Fatalf("settings.Load() error = %v", err)
		}
		if !slices.Equal(saved, []string{"News", "Sports", "Sports HD"}) {
			t.Errorf("unexpected settings %v", saved)
		}
	})

	t.Run("downloads remote playlists", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, playlistBody)
		}))
		defer server.Close()

		h := newHarness(t, nil)
		if err := h.run("search", "-u", server.URL+"/list.m3u", "-k", "sport"); err != nil {
			t.Fatalf("search error = %v", err)
		}
		if !strings.Contains(h.out.String(), "Found and saved 2 categories") {
			t.Errorf("unexpected output %q", h.out.String())
		}
		for _, name := range tu.DirEntries(t, h.dir) {
			if strings.HasPrefix(name, "iptvx-") {
				t.Errorf("expected downloaded file to be removed, found %s", name)
			}
		}
	})

	t.Run("errors map to exit codes", func(t *testing.T) {
		h := newHarness(t, nil)
		tt := []struct {
			name string
			args []string
			want error
			code int
		}{
			{name: "no keywords", args: []string{"search", "-i", h.input}, want: shared.ErrMissingArgument, code: shared.ExitUsage},
			{name: "no source", args: []string{"search", "-k", "sport"}, want: shared.ErrMissingArgument, code: shared.ExitUsage},
			{name: "missing file", args: []string{"search", "-i", h.path("missing.m3u"), "-k", "sport"}, want: shared.ErrSourceUnavailable, code: shared.ExitSourceUnavailable},
		}
		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				err := h.run(tc.args...)
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
				if code := shared.ExitCode(err); code != tc.code {
					t.Errorf("expected exit code %d, got %d", tc.code, code)
				}
			})
		}
	})

	t.Run("http failure exits with fetch code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusGone)
		}))
		defer server.Close()

		h := newHarness(t, nil)
		err := h.run("search", "-u", server.URL, "-k", "sport")
		if shared.ExitCode(err) != shared.ExitFetchFailed {
			t.Errorf("expected fetch exit code, got %d (%v)", shared.ExitCode(err), err)
		}
	})
}

func TestParseCommand(t *testing.T) {
	t.Run("writes filtered playlist", func(t *testing.T) {
		h := newHarness(t, nil)
		settingsPath := tu.WriteFile(t, h.dir, "parse.ini", "[Categories]\ncategory0 = News\n")
		output := h.path("out.m3u")

		if err := h.run("parse", "-i", h.input, "-o", output, "-s", settingsPath); err != nil {
			t.Fatalf("parse error = %v", err)
		}

		want := "#EXTM3U\n#EXTINF:-1 group-title=\"News\",CNN\nhttp://example.com/cnn\n"
		if got := tu.MustReadFile(t, output); got != want {
			t.Errorf("unexpected output file %q", got)
		}
		if !strings.Contains(h.out.String(), "Filtered M3U file saved to "+output) {
			t.Errorf("unexpected output %q", h.out.String())
		}
	})

	t.Run("copies non UTF-8 lines unchanged", func(t *testing.T) {
		h := newHarness(t, nil)
		latin1 := "#EXTINF:-1 group-title=\"Sports\",Caf\xe9 TV\nhttp://example.com/caf\xe9\n"
		input := tu.WriteFile(t, h.dir, "latin1.m3u", "\xef\xbb\xbf#EXTM3U\n"+latin1+
			"#EXTINF:-1 group-title=\"News\",CNN\nhttp://example.com/cnn\n")
		settingsPath := tu.WriteFile(t, h.dir, "parse.ini", "[Categories]\ncategory0 = Sports\n")
		output := h.path("out.m3u")

		if err := h.run("parse", "-i", input, "-o", output, "-s", settingsPath); err != nil {
			t.Fatalf("parse error = %v", err)
		}
		if got := tu.MustReadFile(t, output); got != "#EXTM3U\n"+latin1 {
			t.Errorf("unexpected output file %q", got)
		}
	})

	t.Run("json output", func(t *testing.T) {
		h := newHarness(t, nil)
		settingsPath := tu.WriteFile(t, h.dir, "parse.ini", "[Categories]\ncategory0 = Sports\ncategory1 = Sports HD\n")

		if err := h.run("parse", "--input_m3u_file", h.input, "--output_m3u_file", h.path("out.m3u"), "--settings", settingsPath, "--json"); err != nil {
			t.Fatalf("parse error = %v", err)
		}

		var result struct {
			LinesWritten int `json:"lines_written"`
		}
		if err := json.Unmarshal(h.out.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if result.LinesWritten != 5 {
			t.Errorf("expected 5 lines, got %d", result.LinesWritten)
		}
	})

	t.Run("required flags", func(t *testing.T) {
		h := newHarness(t, nil)
		settingsPath := tu.WriteFile(t, h.dir, "parse.ini", "[Categories]\n")

		if err := h.run("parse", "-i", h.input, "-s", settingsPath); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument without -o, got %v", err)
		}
		if err := h.run("parse", "-i", h.input, "-o", h.path("out.m3u")); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument without -s, got %v", err)
		}
	})

	t.Run("invalid settings", func(t *testing.T) {
		h := newHarness(t, nil)
		settingsPath := tu.WriteFile(t, h.dir, "parse.ini", "[Other]\n")

		err := h.run("parse", "-i", h.input, "-o", h.path("out.m3u"), "-s", settingsPath)
		if shared.ExitCode(err) != shared.ExitInvalidSettings {
			t.Errorf("expected invalid settings exit code, got %d (%v)", shared.ExitCode(err), err)
		}
	})

	t.Run("unwritable output", func(t *testing.T) {
		h := newHarness(t, nil)
		settingsPath := tu.WriteFile(t, h.dir, "parse.ini", "[Categories]\ncategory0 = News\n")

		err := h.run("parse", "-i", h.input, "-o", h.path("missing/out.m3u"), "-s", settingsPath)
		if shared.ExitCode(err) != shared.ExitSinkUnavailable {
			t.Errorf("expected sink exit code, got %d (%v)", shared.ExitCode(err), err)
		}
	})
}

func TestPickCommand(t *testing.T) {
	t.Run("saves the selection", func(t *testing.T) {
		var offered []string
		h := newHarness(t, func(ctx context.Context, p *ui.Picker) ([]string, error) {
			offered = p.Selected()
			return []string{"News", "Sports"}, nil
		})
		tu.WriteFile(t, h.dir, "config.ini", "[Categories]\ncategory0 = Sports HD\n")

		if err := h.run("pick", "-i", h.input); err != nil {
			t.Fatalf("pick error = %v", err)
		}

		if !slices.Equal(offered, []string{"Sports HD"}) {
			t.Errorf("expected current settings preselected, got %v", offered)
		}
		saved, _ := settings.Load(h.path("config.ini"))
		if !slices.Equal(saved, []string{"News", "Sports"}) {
			t.Errorf("unexpected settings %v", saved)
		}
		if !strings.Contains(h.out.String(), "Saved 2 categories") {
			t.Errorf("unexpected output %q", h.out.String())
		}
	})

	t.Run("cancel keeps settings", func(t *testing.T) {
		h := newHarness(t, func(ctx context.Context, p *ui.Picker) ([]string, error) {
			return nil, shared.ErrCanceled
		})
		settingsPath := tu.WriteFile(t, h.dir, "config.ini", "[Categories]\ncategory0 = News\n")

		err := h.run("pick", "-i", h.input, "-k", "sport")
		if !errors.Is(err, shared.ErrCanceled) {
			t.Fatalf("expected ErrCanceled, got %v", err)
		}
		if shared.ExitCode(err) != shared.ExitOK {
			t.Errorf("expected cancel to exit cleanly, got %d", shared.ExitCode(err))
		}
		if got := tu.MustReadFile(t, settingsPath); got != "[Categories]\ncategory0 = News\n" {
			t.Errorf("settings changed: %q", got)
		}
	})

	t.Run("no categories skips the picker", func(t *testing.T) {
		called := false
		h := newHarness(t, func(ctx context.Context, p *ui.Picker) ([]string, error) {
			called = true
			return nil, nil
		})

		if err := h.run("pick", "-i", h.input, "-k", "movies"); err != nil {
			t.Fatalf("pick error = %v", err)
		}
		if called {
			t.Error("picker should not run without categories")
		}
		if !strings.Contains(h.out.String(), "No categories found") {
			t.Errorf("unexpected output %q", h.out.String())
		}
	})
}

func TestHistoryCommand(t *testing.T) {
	t.Run("lists runs newest first", func(t *testing.T) {
		h := newHarness(t, nil)
		if err := h.run("search", "-i", h.input, "-k", "sport"); err != nil {
			t.Fatalf("search error = %v", err)
		}
		if err := h.run("parse", "-i", h.input, "-o", h.path("out.m3u"), "-s", h.path("config.ini")); err != nil {
			t.Fatalf("parse error = %v", err)
		}
		_ = h.run("search", "-i", h.path("missing.m3u"), "-k", "sport")

		if err := h.run("history", "list"); err != nil {
			t.Fatalf("history list error = %v", err)
		}
		out := h.out.String()
		for _, want := range []string{"Run History", "#3", "failed", "succeeded", "output: " + h.path("out.m3u") + " (5 lines)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
		if strings.Index(out, "#3") > strings.Index(out, "#1") {
			t.Errorf("expected newest run first, got:\n%s", out)
		}
	})

	t.Run("json with filter and limit", func(t *testing.T) {
		h := newHarness(t, nil)
		for range 3 {
			if err := h.run("search", "-i", h.input, "-k", "sport"); err != nil {
				t.Fatalf("search error = %v", err)
			}
		}

		if err := h.run("history", "list", "--command", "search-categories", "--limit", "2", "--json"); err != nil {
			t.Fatalf("history list error = %v", err)
		}

		var runs []struct {
			Sequence int    `json:"sequence"`
			Command  string `json:"command"`
			Status   string `json:"status"`
		}
		if err := json.Unmarshal(h.out.Bytes(), &runs); err != nil {
			t.Fatalf("failed to decode %q: %v", h.out.String(), err)
		}
		if len(runs) != 2 || runs[0].Sequence != 3 || runs[1].Sequence != 2 {
			t.Errorf("unexpected runs %+v", runs)
		}

		if err := h.run("history", "list", "--command", "parse", "--json"); err != nil {
			t.Fatalf("history list error = %v", err)
		}
		if strings.TrimSpace(h.out.String()) != "[]" {
			t.Errorf("expected empty array, got %q", h.out.String())
		}
	})

	t.Run("empty history", func(t *testing.T) {
		h := newHarness(t, nil)
		if err := h.run("history", "list"); err != nil {
			t.Fatalf("history list error = %v", err)
		}
		if !strings.Contains(h.out.String(), "No runs recorded") {
			t.Errorf("unexpected output %q", h.out.String())
		}
	})

	t.Run("unknown command filter", func(t *testing.T) {
		h := newHarness(t, nil)
		if err := h.run("history", "list", "--command", "transfer"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		h := newHarness(t, nil)
		if err := h.run("search", "-i", h.input, "-k", "sport", "--json"); err != nil {
			t.Fatalf("search error = %v", err)
		}
		var result struct {
			RunID string `json:"run_id"`
		}
		if err := json.Unmarshal(h.out.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}

		if err := h.run("history", "delete", "--id", result.RunID); err != nil {
			t.Fatalf("history delete error = %v", err)
		}
		if err := h.run("history", "delete", "--id", result.RunID); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
		if err := h.run("history", "delete"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("export", func(t *testing.T) {
		h := newHarness(t, nil)
		if err := h.run("search", "-i", h.input, "-k", "sport"); err != nil {
			t.Fatalf("search error = %v", err)
		}
		output := h.path("runs.csv")

		if err := h.run("history", "export", "-f", "csv", "-o", output); err != nil {
			t.Fatalf("history export error = %v", err)
		}
		content := tu.MustReadFile(t, output)
		if !strings.HasPrefix(content, "Sequence,ID,Command") || !strings.Contains(content, "search-categories") {
			t.Errorf("unexpected export %q", content)
		}
		if !strings.Contains(h.out.String(), "Exported 1 runs to "+output) {
			t.Errorf("unexpected output %q", h.out.String())
		}

		if err := h.run("history", "export", "-f", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("disabled history", func(t *testing.T) {
		h := newHarness(t, nil)
		config := shared.DefaultConfig()
		config.Database.Path = ""
		if err := shared.SaveConfig(h.configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		if err := h.run("history", "list"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if err := h.run("search", "-i", h.input, "-k", "sport", "-s", h.path("config.ini")); err != nil {
			t.Errorf("search should work without history, got %v", err)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("existing config", func(t *testing.T) {
		h := newHarness(t, nil)
		if err := h.run("setup"); err != nil {
			t.Fatalf("setup error = %v", err)
		}
		tu.AssertFileExists(t, h.path("history.db"))
		if !strings.Contains(h.out.String(), "Database ready at "+h.path("history.db")) {
			t.Errorf("unexpected output %q", h.out.String())
		}
	})

	t.Run("creates config from template", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		out := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: out, ErrOutput: io.Discard})
		defer runner.Close()

		if err := newApp(runner).Run(context.Background(), []string{"iptvx", "setup"}); err != nil {
			t.Fatalf("setup error = %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
		tu.AssertFileExists(t, filepath.Join(dir, "iptvx.db"))
		if !strings.Contains(out.String(), "Config written to config.toml") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		h := newHarness(t, nil)
		tu.WriteFile(t, h.dir, "config.toml", "[log]\nlevel = \"loud\"\n")

		if err := h.run("setup"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("verbose flag", func(t *testing.T) {
		h := newHarness(t, nil)
		if err := h.run("--verbose", "setup"); err != nil {
			t.Fatalf("setup error = %v", err)
		}
		if h.runner.logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", h.runner.logger.GetLevel())
		}
	})
}
