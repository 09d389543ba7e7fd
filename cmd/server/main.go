package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/boardkit/boardkit/internal/clipboard"
	"github.com/boardkit/boardkit/internal/config"
	"github.com/boardkit/boardkit/internal/engine"
	"github.com/boardkit/boardkit/internal/export"
	mw "github.com/boardkit/boardkit/internal/middleware"
	"github.com/boardkit/boardkit/internal/session"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.BoardDir, 0o755); err != nil {
		slog.Error("create board dir", "dir", cfg.BoardDir, "error", err)
		os.Exit(1)
	}

	// The persistence collaborator: boards live as plain JSON documents on
	// disk. The editor core only ever sees the load/save callbacks.
	boardPath := func(boardID string) string {
		return filepath.Join(cfg.BoardDir, sanitizeID(boardID)+".json")
	}

	loadBoard := func(_ context.Context, boardID string) ([]byte, error) {
		data, err := os.ReadFile(boardPath(boardID))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // new board
		}
		return data, err
	}

	saveBoard := func(boardID string, document []byte) error {
		return os.WriteFile(boardPath(boardID), document, 0o644)
	}

	manager := session.NewManager(loadBoard, saveBoard, cfg.AutosaveInterval)
	if cfg.SystemClipboard {
		manager.SetClipboardFactory(func() engine.Clipboard {
			return clipboard.NewSystem()
		})
	}
	exportHandler := export.NewHandler(manager.Snapshot)

	allowedOrigins := strings.Split(cfg.AllowedOrigins, ",")

	r := mux.NewRouter()
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/api/boards/{boardId}/export/{format}", exportHandler.ExportBoard).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws/board/{boardId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, manager, allowedOrigins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop sessions first so dirty boards reach disk.
		manager.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, manager *session.Manager, origins []string) {
	vars := mux.Vars(r)
	boardID := vars["boardId"]

	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: patterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	s, err := manager.Open(r.Context(), conn, boardID)
	if err != nil {
		slog.Warn("session open failed", "board", boardID, "error", err)
		if errors.Is(err, session.ErrBoardBusy) {
			conn.Close(websocket.StatusPolicyViolation, "board busy")
		} else {
			conn.Close(websocket.StatusInternalError, "load failed")
		}
		return
	}

	ctx := r.Context()
	go s.WritePump(ctx)
	s.ReadPump(ctx)
}

// sanitizeID keeps board ids filesystem-safe.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, id)
}
