// Package export renders a fetched report result into deliverable
// artifacts: a CSV blob for download and a print-ready HTML document.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

// ErrNothingToExport is returned when no result has been generated yet.
// Export is only defined over the last fetched result set.
var ErrNothingToExport = errors.New("nothing to export: generate a report preview first")

// ErrViewerUnavailable wraps a viewer delivery failure. It is reported
// distinctly from transport errors so the caller can tell the user to fix
// the viewing context rather than retry the query.
var ErrViewerUnavailable = errors.New("report view could not be opened")

// Artifact is a rendered export ready for delivery.
type Artifact struct {
	Filename string
	MIME     string
	Content  []byte
}

// Viewer hands a printable document to the host environment. The concrete
// delivery mechanism (browser window, saved file, print service) is
// swappable per platform.
type Viewer interface {
	View(doc Artifact) error
}

// ViewerFunc adapts a function to Viewer.
type ViewerFunc func(doc Artifact) error

func (f ViewerFunc) View(doc Artifact) error { return f(doc) }

// FileViewer saves documents into a directory, the server-side stand-in for
// opening a browser window.
type FileViewer struct {
	Dir string
}

func (v FileViewer) View(doc Artifact) error {
	if v.Dir == "" {
		return fmt.Errorf("no output directory configured")
	}
	if err := os.MkdirAll(v.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(v.Dir, doc.Filename), doc.Content, 0o644)
}

// Engine renders artifacts from a result and its originating spec. Now is
// injectable for deterministic filenames and timestamps in tests.
type Engine struct {
	Now func() time.Time
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// slug lowercases a display name and replaces spaces with hyphens for use
// in filenames.
func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func (e Engine) filename(src domain.DataSource, ext string) string {
	return fmt.Sprintf("custom-report-%s-%s.%s", slug(src.DisplayName), e.now().UTC().Format("2006-01-02"), ext)
}

// labelFor falls back to the raw key when the descriptor does not declare
// the field (stale selections are possible and must still export).
func labelFor(src domain.DataSource, key string) string {
	if f, ok := src.Fields[key]; ok && f.Label != "" {
		return f.Label
	}
	return key
}

// cellText renders one result cell: nil becomes a literal empty quoted
// field, objects are JSON-stringified, booleans become Yes/No.
func cellText(v any) string {
	if v == nil {
		return `""`
	}
	return domain.CellString(v)
}
