package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Command names recorded on a [Run].
const (
	CommandSearch = "search-categories"
	CommandParse  = "parse"
	CommandPick   = "pick"
)

// RunStatus is the lifecycle state of a [Run].
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

func (s RunStatus) valid() bool {
	switch s {
	case RunRunning, RunSucceeded, RunFailed:
		return true
	}
	return false
}

var _ Model = (*Run)(nil)

// Run records one invocation of a playlist command.
type Run struct {
	id           string
	sequence     int
	command      string
	source       string
	remote       bool
	settingsPath string
	outputPath   string
	keywords     []string
	categories   int
	linesWritten int
	status       RunStatus
	errMsg       string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewRun creates a running [Run] for command reading source.
func NewRun(sequence int, command, source string) *Run {
	now := time.Now()
	return &Run{
		sequence:  sequence,
		command:   command,
		source:    source,
		status:    RunRunning,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string                { return r.id }
func (r *Run) Sequence() int             { return r.sequence }
func (r *Run) Command() string           { return r.command }
func (r *Run) Source() string            { return r.source }
func (r *Run) Remote() bool              { return r.remote }
func (r *Run) SettingsPath() string      { return r.settingsPath }
func (r *Run) OutputPath() string        { return r.outputPath }
func (r *Run) Keywords() []string        { return r.keywords }
func (r *Run) Categories() int           { return r.categories }
func (r *Run) LinesWritten() int         { return r.linesWritten }
func (r *Run) Status() RunStatus         { return r.status }
func (r *Run) Error() string             { return r.errMsg }
func (r *Run) CreatedAt() time.Time      { return r.createdAt }
func (r *Run) UpdatedAt() time.Time      { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time     { return r.deletedAt }
func (r *Run) SetID(id string)           { r.id = id }
func (r *Run) SetSequence(seq int)       { r.sequence = seq }
func (r *Run) SetRemote(remote bool)     { r.remote = remote }
func (r *Run) SetSettingsPath(p string)  { r.settingsPath = p }
func (r *Run) SetOutputPath(p string)    { r.outputPath = p }
func (r *Run) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// SetKeywords stores keywords; they are persisted comma separated.
func (r *Run) SetKeywords(keywords []string) { r.keywords = keywords }

// KeywordList returns the keywords in their stored form.
func (r *Run) KeywordList() string { return strings.Join(r.keywords, ",") }

// SetKeywordList parses the stored form written by [Run.KeywordList].
func (r *Run) SetKeywordList(s string) {
	if s == "" {
		r.keywords = nil
		return
	}
	r.keywords = strings.Split(s, ",")
}

// SetStatus restores a stored status and error message.
func (r *Run) SetStatus(status RunStatus, errMsg string) {
	r.status = status
	r.errMsg = errMsg
}

// SetCounts records the number of categories handled and lines written.
func (r *Run) SetCounts(categories, lines int) {
	r.categories = categories
	r.linesWritten = lines
}

// Succeed marks the run as succeeded.
func (r *Run) Succeed(categories, lines int) {
	r.SetCounts(categories, lines)
	r.status = RunSucceeded
	r.errMsg = ""
}

// Fail marks the run as failed with err.
func (r *Run) Fail(err error) {
	r.status = RunFailed
	if err != nil {
		r.errMsg = err.Error()
	}
}

// Validate checks required fields.
func (r *Run) Validate() error {
	var errs []error
	if r.id == "" {
		errs = append(errs, errors.New("id is required"))
	}
	switch r.command {
	case CommandSearch, CommandParse, CommandPick:
	default:
		errs = append(errs, fmt.Errorf("unknown command %q", r.command))
	}
	if r.source == "" {
		errs = append(errs, errors.New("source is required"))
	}
	if !r.status.valid() {
		errs = append(errs, fmt.Errorf("unknown status %q", r.status))
	}
	if r.categories < 0 || r.linesWritten < 0 {
		errs = append(errs, errors.New("counts must not be negative"))
	}
	return errors.Join(errs...)
}

type runJSON struct {
	ID           string    `json:"id"`
	Sequence     int       `json:"sequence"`
	Command      string    `json:"command"`
	Source       string    `json:"source"`
	Remote       bool      `json:"remote"`
	SettingsPath string    `json:"settings_path,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	Keywords     []string  `json:"keywords,omitempty"`
	Categories   int       `json:"categories"`
	LinesWritten int       `json:"lines_written"`
	Status       RunStatus `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *Run) MarshalJSON() ([]byte, error) {
	return json.Marshal(runJSON{
		ID:           r.id,
		Sequence:     r.sequence,
		Command:      r.command,
		Source:       r.source,
		Remote:       r.remote,
		SettingsPath: r.settingsPath,
		OutputPath:   r.outputPath,
		Keywords:     r.keywords,
		Categories:   r.categories,
		LinesWritten: r.linesWritten,
		Status:       r.status,
		Error:        r.errMsg,
		CreatedAt:    r.createdAt,
		UpdatedAt:    r.updatedAt,
	})
}
