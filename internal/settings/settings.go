// Package settings reads and writes the category settings store.
//
// The store is an INI file with a single [Categories] section whose keys are category0, category1, ...
//
//	[Categories]
//	category0 = Sports HD
//	category1 = UK News
package settings

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/iptvx/internal/shared"
	"gopkg.in/ini.v1"
)

const (
	// Section names the INI section holding the categories.
	Section = "Categories"
	// KeyPrefix prefixes every category key.
	KeyPrefix = "category"
)

var loadOptions = ini.LoadOptions{IgnoreInlineComment: true}

// Key returns the settings key for position i.
func Key(i int) string {
	return KeyPrefix + strconv.Itoa(i)
}

// Load reads every category value from the settings file at path.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidSettings, err)
	}
	defer f.Close()

	values, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// Read parses settings from r.
func Read(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidSettings, err)
	}
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidSettings, err)
	}
	return fromFile(f)
}

func fromFile(f *ini.File) ([]string, error) {
	sec, err := f.GetSection(Section)
	if err != nil {
		return nil, fmt.Errorf("%w: missing [%s] section", shared.ErrInvalidSettings, Section)
	}

	keys := sec.Keys()
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		if !validKey(k.Name()) {
			return nil, fmt.Errorf("%w: unexpected key %q in [%s]", shared.ErrInvalidSettings, k.Name(), Section)
		}
		values = append(values, k.String())
	}
	return values, nil
}

// validKey accepts category0, category1, ...; matching is case-insensitive like most INI readers.
func validKey(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, KeyPrefix) {
		return false
	}
	_, err := strconv.Atoi(lower[len(KeyPrefix):])
	return err == nil
}

// Save overwrites path with categories, assigning keys in slice order.
//
// The file is only replaced once the whole store has been encoded.
func Save(path string, categories []string) error {
	var buf bytes.Buffer
	if err := Write(&buf, categories); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: settings %s: %v", shared.ErrSinkUnavailable, path, err)
	}
	return nil
}

// Write encodes categories to w in settings format.
func Write(w io.Writer, categories []string) error {
	f, err := build(categories)
	if err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%w: settings: %v", shared.ErrSinkUnavailable, err)
	}
	return nil
}

func build(categories []string) (*ini.File, error) {
	f := ini.Empty(loadOptions)
	sec, err := f.NewSection(Section)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings section: %w", err)
	}
	for i, c := range categories {
		if _, err := sec.NewKey(Key(i), c); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", Key(i), err)
		}
	}
	return f, nil
}

// Exists reports whether a settings file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
