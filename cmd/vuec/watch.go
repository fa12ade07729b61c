package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/vuec/cmd/vuec/internal/ui"
	"github.com/recera/vuec/cmd/vuec/internal/watch"
)

func newWatchCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-check templates as they change",
		Long: `Checks the source directory, then re-parses templates whenever they change
and prints their diagnostics. With --addr (or watch.addr in vuec.yaml) the
diagnostics are also pushed to websocket clients connected to /ws.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer p.Close()

			if addr == "" {
				addr = p.config.Watch.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runWatch(ctx, p, addr, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Serve diagnostics over websocket on this address")
	return cmd
}

type watchSession struct {
	project *project
	hub     *watch.Hub
	out     io.Writer
}

func runWatch(ctx context.Context, p *project, addr string, out io.Writer) error {
	dir := p.sourceDir()
	s := &watchSession{project: p, out: out}

	files, err := p.processor.FindFiles(dir)
	if err != nil {
		return err
	}
	fmt.Fprint(out, ui.RenderReport(checkFiles(p.processor, files), false))

	w, err := watch.New(dir, p.config.Debounce(), p.config.HasExtension, nil)
	if err != nil {
		return err
	}
	defer w.Close()

	if addr != "" {
		s.hub = watch.NewHub(nil)
		mux := http.NewServeMux()
		mux.Handle("/ws", s.hub)
		server := &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("⚠️  Diagnostics server failed: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
		fmt.Fprintf(out, "🔌 Diagnostics on ws://%s/ws\n", addr)
	}

	fmt.Fprintf(out, "👀 Watching %s\n", dir)
	err = w.Run(ctx, s.handleChanges)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleChanges re-parses changed templates and reports their diagnostics.
func (s *watchSession) handleChanges(changes []watch.Change) {
	for _, change := range changes {
		s.project.processor.Invalidate(change.Path)

		if change.Removed {
			fmt.Fprintf(s.out, "🗑️  %s removed\n", change.Path)
			s.broadcast(watch.Message{Type: watch.TypeRemoved, File: change.Path})
			continue
		}

		result, err := s.project.processor.ProcessFile(change.Path)
		if err != nil {
			fmt.Fprintf(s.out, "❌ %s: %v\n", change.Path, err)
			s.broadcast(watch.Message{Type: watch.TypeError, File: change.Path, Error: err.Error()})
			continue
		}

		if warnings := result.Warnings(); len(warnings) > 0 {
			fmt.Fprint(s.out, ui.RenderReport([]ui.FileReport{{Path: change.Path, Warnings: warnings}}, false))
		} else {
			fmt.Fprintf(s.out, "✅ %s\n", change.Path)
		}
		s.broadcast(watch.Message{Type: watch.TypeDiagnostics, File: change.Path, Warnings: result.Warnings()})
	}
}

func (s *watchSession) broadcast(msg watch.Message) {
	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
}
