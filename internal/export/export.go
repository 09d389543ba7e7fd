// Package export renders board snapshots to downloadable artifacts. All
// entry points are pure functions of the snapshot they receive: callers
// take the snapshot synchronously and may keep editing while an export
// runs.
package export

import (
	"fmt"

	"github.com/boardkit/boardkit/internal/board"
)

const (
	FormatRaster   = "png"
	FormatVector   = "svg"
	FormatDocument = "json"
)

// Error reports an encoding or I/O failure during export. It never affects
// the in-memory board or history.
type Error struct {
	Format string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Document encodes the board as its JSON document, identical to the
// serialization used for persistence.
func Document(b *board.Board) ([]byte, error) {
	data, err := board.Serialize(b)
	if err != nil {
		return nil, &Error{Format: FormatDocument, Err: err}
	}
	return data, nil
}

// Export dispatches on format name.
func Export(b *board.Board, format string) ([]byte, string, error) {
	switch format {
	case FormatRaster:
		data, err := Raster(b)
		return data, "image/png", err
	case FormatVector:
		data, err := Vector(b)
		return data, "image/svg+xml", err
	case FormatDocument:
		data, err := Document(b)
		return data, "application/json", err
	default:
		return nil, "", &Error{Format: format, Err: fmt.Errorf("unknown format")}
	}
}
