package tasks

import (
	"fmt"

	"github.com/desertthunder/iptvx/internal/shared"
	"github.com/desertthunder/iptvx/internal/source"
)

// ProgressUpdate represents a progress event during a run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase    Phase  // Operation phase
	Received int64  // Bytes received, download phase only
	Total    int64  // Bytes expected, -1 when unknown
	Message  string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	Acquire Phase = iota
	Download
	Scan
	Save
	Complete
)

func (p Phase) String() string {
	switch p {
	case Acquire:
		return "acquire"
	case Download:
		return "download"
	case Scan:
		return "scan"
	case Save:
		return "save"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func acquireUpdate(d source.Descriptor) ProgressUpdate {
	msg := fmt.Sprintf("Reading %s...", d.Redacted())
	if d.Remote() {
		msg = fmt.Sprintf("Downloading %s...", d.Redacted())
	}
	return ProgressUpdate{Phase: Acquire, Total: -1, Message: msg}
}

func downloadUpdate(p source.Progress) ProgressUpdate {
	return ProgressUpdate{Phase: Download, Received: p.Received, Total: p.Total}
}

func scanUpdate(src *source.Source) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Scan,
		Total:   -1,
		Message: fmt.Sprintf("Scanning playlist (%s)...", shared.FormatBytes(src.Size)),
	}
}

func saveSettingsUpdate(path string, n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Save,
		Total:   -1,
		Message: fmt.Sprintf("Saving %d categories to %s...", n, path),
	}
}

func writeOutputUpdate(path string, n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Save,
		Total:   -1,
		Message: fmt.Sprintf("Writing entries in %d categories to %s...", n, path),
	}
}

func completeUpdate(format string, args ...any) ProgressUpdate {
	return ProgressUpdate{Phase: Complete, Total: -1, Message: fmt.Sprintf(format, args...)}
}
