// Package server exposes registration, pass download, QR display and
// check-in over HTTP.
//
// # Routes
//
//	GET  /health
//	GET  /api/qr?code=<code>                       QR PNG, immutable
//	GET  /api/events                               configured events
//	GET  /api/events/{eventID}                     one event
//	POST /api/events/{eventID}/register            register, 201
//	GET  /api/registrations/{code}                 registration JSON
//	GET  /api/registrations/{code}/pass.{format}   png, pdf or svg download
//	POST /api/registrations/{code}/resend          re-deliver the pass
//	GET  /api/events/{eventID}/registrations       newest first
//	POST /api/scan                                 check in {"code": "..."}
//
// Errors are JSON objects {"error": message, "code": CODE} with the status
// given by [errors.HTTPStatus].
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/eventpass/pkg/barcode"
	"github.com/matzehuels/eventpass/pkg/buildinfo"
	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/pipeline"
	"github.com/matzehuels/eventpass/pkg/registration"
)

// QRCacheControl is sent with QR images. A code's symbol never changes.
const QRCacheControl = "public, max-age=31536000, immutable"

// Timeouts applied by ListenAndServe.
const (
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
)

// Request limits.
const (
	maxBodyBytes = 64 << 10
	maxQRPayload = 128
)

// Server serves the HTTP API.
type Server struct {
	svc    *registration.Service
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router

	events  []registration.Event
	eventID map[string]registration.Event
}

// Option configures a Server.
type Option func(*Server)

// WithEvents sets the events attendees can register for.
func WithEvents(events []registration.Event) Option {
	return func(s *Server) { s.events = events }
}

// New creates a server. runner renders QR images; it is usually the runner
// the service was built with so both share a cache.
func New(svc *registration.Service, runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{svc: svc, runner: runner, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	s.eventID = make(map[string]registration.Event, len(s.events))
	for _, e := range s.events {
		s.eventID[e.ID] = e
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/qr", s.handleQR)
		r.Post("/scan", s.handleScan)
		r.Route("/registrations/{code}", func(r chi.Router) {
			r.Get("/", s.handleLookup)
			r.Get("/pass.{format}", s.handlePass)
			r.Post("/resend", s.handleResend)
		})
		r.Get("/events", s.handleEvents)
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/", s.handleEvent)
			r.Post("/register", s.handleRegister)
			r.Get("/registrations", s.handleList)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "version", buildinfo.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	c := strings.TrimSpace(r.URL.Query().Get("code"))
	if c == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Code required", Code: errors.ErrCodeInvalidInput})
		return
	}
	if len(c) > maxQRPayload {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "code too long (max %d characters)", maxQRPayload))
		return
	}
	data, hit, err := s.runner.QR(r.Context(), c, barcode.DisplaySize, barcode.DisplayMargin)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", QRCacheControl)
	if hit {
		w.Header().Set("X-Cache", "HIT")
	}
	w.Write(data)
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	events := s.events
	if events == nil {
		events = []registration.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) event(r *http.Request) (registration.Event, error) {
	e, ok := s.eventID[chi.URLParam(r, "eventID")]
	if !ok {
		return registration.Event{}, errors.New(errors.ErrCodeNotFound, "Event not found")
	}
	return e, nil
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.event(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	e, err := s.event(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var q registration.Request
	if err := decodeJSON(w, r, &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	// The event always comes from configuration, never the client.
	q.Event = e
	reg, err := s.svc.Register(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":        true,
		"uniqueCode":     reg.Code,
		"registrationId": reg.ID,
	})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	reg, err := s.svc.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Pass(r.Context(), chi.URLParam(r, "code"), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, ok := res.Artifacts[format]
	if !ok {
		// Only packaging can drop a requested artifact.
		err := res.PackageErr
		if err == nil {
			err = errors.New(errors.ErrCodePackageFailed, "%s not produced", format)
		}
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename(format)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.Write(data)
}

func (s *Server) handleResend(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Resend(r.Context(), chi.URLParam(r, "code")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	regs, err := s.svc.List(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrations": regs, "count": len(regs)})
}

type scanRequest struct {
	Code string `json:"code"`
}

type scanResponse struct {
	Success      bool                       `json:"success"`
	FirstCheckIn bool                       `json:"firstCheckIn"`
	Registration *registration.Registration `json:"registration"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var q scanRequest
	if err := decodeJSON(w, r, &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	reg, first, err := s.svc.CheckIn(r.Context(), q.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{Success: true, FirstCheckIn: first, Registration: reg})
}
