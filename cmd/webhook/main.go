package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tixy/internal/app"
	"tixy/internal/httputil"
	"tixy/internal/workflow"
)

const maxBodySize = 1 << 20 // 1MB

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	wf := workflow.New(
		workflow.Config{
			OrganizerIndex:       deps.Config.OrganizerIndex,
			EventIndex:           deps.Config.EventIndex,
			RegisteredTemplateID: deps.Config.RegisteredTemplateID,
			DuplicateTemplateID:  deps.Config.DuplicateTemplateID,
		},
		deps.Log, deps.Store, deps.Embedder, deps.Validator, deps.Notifier, deps.Events,
	)

	r := httputil.NewRouter(deps.Log)
	r.Get("/", welcomeHandler())
	r.Post("/register-organizer", registerOrganizerHandler(deps, wf))
	r.Post("/create-event", createEventHandler(deps, wf))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf("%s:%d", deps.Config.Host, deps.Config.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("webhook service listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func welcomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"message": "Welcome to the tixy webhook service",
		})
	}
}

func registerOrganizerHandler(deps app.Deps, wf *workflow.Workflows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read request body", err, http.StatusBadRequest)
			return
		}

		var in workflow.RegisterInput
		if err := json.Unmarshal(body, &in); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		// The raw payload rides along so extra fields land in the stored metadata.
		if err := json.Unmarshal(body, &in.Payload); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}

		if err := wf.RegisterOrganizer(r.Context(), in); err != nil {
			writeWorkflowError(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"message": "Organizer registered successfully",
		})
	}
}

func createEventHandler(deps app.Deps, wf *workflow.Workflows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in workflow.EventInput
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&in); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}

		if err := wf.CreateEvent(r.Context(), in); err != nil {
			writeWorkflowError(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"message": "Event created successfully",
		})
	}
}

// writeWorkflowError maps the workflow error taxonomy onto HTTP statuses.
func writeWorkflowError(log *slog.Logger, w http.ResponseWriter, err error) {
	var verr *workflow.ValidationError
	var derr *workflow.DependencyError
	switch {
	case errors.As(err, &verr):
		httputil.FailDetails(log, w, verr.Message, nil, http.StatusBadRequest, verr.Details)
	case errors.Is(err, workflow.ErrConflict):
		httputil.Fail(log, w, workflow.ErrConflict.Error(), nil, http.StatusConflict)
	case errors.Is(err, workflow.ErrNotFound):
		httputil.Fail(log, w, "Organizer not found. Please register before creating events", nil, http.StatusNotFound)
	case errors.As(err, &derr):
		httputil.Fail(log, w, derr.Error(), derr.Unwrap(), http.StatusInternalServerError)
	default:
		httputil.Fail(log, w, err.Error(), err, http.StatusInternalServerError)
	}
}
