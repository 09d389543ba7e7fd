package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/boardkit/boardkit/internal/board"
)

// BoardProvider resolves a board id to a snapshot the export can render.
// Live sessions hand out a deep copy so concurrent edits never corrupt the
// artifact.
type BoardProvider func(ctx context.Context, boardID string) (*board.Board, error)

type Handler struct {
	provider BoardProvider
}

func NewHandler(provider BoardProvider) *Handler {
	return &Handler{provider: provider}
}

// ExportBoard handles GET /api/boards/{boardId}/export/{format} and streams
// the artifact back as an attachment.
func (h *Handler) ExportBoard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	boardID := vars["boardId"]
	format := vars["format"]

	b, err := h.provider(r.Context(), boardID)
	if err != nil {
		slog.Warn("export: board not found", "board", boardID, "error", err)
		http.Error(w, "board not found", http.StatusNotFound)
		return
	}

	data, contentType, err := Export(b, format)
	if err != nil {
		if contentType == "" {
			http.Error(w, "invalid format: must be png, svg, or json", http.StatusBadRequest)
			return
		}
		slog.Error("export failed", "board", boardID, "format", format, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, boardID, format))
	w.Write(data)

	slog.Info("export complete", "board", boardID, "format", format, "size", len(data))
}
