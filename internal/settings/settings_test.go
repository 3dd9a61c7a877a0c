package settings

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/iptvx/internal/shared"
	tu "github.com/desertthunder/iptvx/internal/testing"
)

func TestSettings(t *testing.T) {
	t.Run("Save And Load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.ini")
		want := []string{"Sports HD", "UK | News", "News; Live #1"}

		if err := Save(path, want); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if strings.Join(got, "\x00") != strings.Join(want, "\x00") {
			t.Errorf("Load() = %q, want %q", got, want)
		}
	})

	t.Run("Save overwrites previous content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.ini")
		if err := Save(path, []string{"A", "B", "C"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := Save(path, []string{"Z"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(got) != 1 || got[0] != "Z" {
			t.Errorf("expected only Z, got %q", got)
		}
	})

	t.Run("Write format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, []string{"Sports"}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "[Categories]") {
			t.Errorf("expected section header, got %q", out)
		}
		if !strings.Contains(out, "category0 = Sports") {
			t.Errorf("expected category0 entry, got %q", out)
		}
	})

	t.Run("Save empty set", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.ini")
		if err := Save(path, nil); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no categories, got %q", got)
		}
	})

	t.Run("Read configparser output", func(t *testing.T) {
		input := "[Categories]\ncategory0 = Sports\ncategory1 = News ; Live\n\n"
		got, err := Read(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(got) != 2 || got[0] != "Sports" || got[1] != "News ; Live" {
			t.Errorf("Read() = %q", got)
		}
	})

	t.Run("Save to unwritable path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "config.ini")
		if err := Save(path, []string{"A"}); !errors.Is(err, shared.ErrSinkUnavailable) {
			t.Errorf("expected ErrSinkUnavailable writing to missing directory, got %v", err)
		}
	})

	t.Run("Write to failing writer", func(t *testing.T) {
		if err := Write(&tu.FWriter{}, []string{"A"}); !errors.Is(err, shared.ErrSinkUnavailable) {
			t.Errorf("expected ErrSinkUnavailable, got %v", err)
		}
	})
}

func TestSettingsErrors(t *testing.T) {
	tt := []struct {
		name    string
		content string
	}{
		{name: "missing section", content: "[Other]\ncategory0 = A\n"},
		{name: "unexpected key", content: "[Categories]\nfavourite = A\n"},
		{name: "non numeric suffix", content: "[Categories]\ncategoryX = A\n"},
		{name: "unparsable", content: "[Categories\ncategory0 = A\n"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			path := tu.WriteFile(t, t.TempDir(), "config.ini", tc.content)
			_, err := Load(path)
			if !errors.Is(err, shared.ErrInvalidSettings) {
				t.Errorf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
		if !errors.Is(err, shared.ErrInvalidSettings) {
			t.Errorf("expected ErrInvalidSettings, got %v", err)
		}
	})

	t.Run("read failure", func(t *testing.T) {
		_, err := Read(&tu.FReader{})
		if !errors.Is(err, shared.ErrInvalidSettings) {
			t.Errorf("expected ErrInvalidSettings, got %v", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		dir := t.TempDir()
		if Exists(filepath.Join(dir, "config.ini")) {
			t.Error("expected missing file")
		}
		path := tu.WriteFile(t, dir, "config.ini", "[Categories]\n")
		if !Exists(path) {
			t.Error("expected file to exist")
		}
	})
}
