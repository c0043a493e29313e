/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/suparena/arraywriter/config"
	"github.com/suparena/arraywriter/datastore"
	storeerrors "github.com/suparena/arraywriter/errors"
	"github.com/suparena/arraywriter/storagemodels"
)

// Deps are the collaborators of a Server. Only Store is required.
type Deps struct {
	Store datastore.DataStore[storagemodels.ValueRecord]
	// Logger defaults to a discarding logger.
	Logger *log.Logger
	// RowKey generates row keys; defaults to random UUIDs.
	RowKey func() string
	// Now defaults to time.Now.
	Now func() time.Time
	// OnWriteFailure receives every failed row write.
	OnWriteFailure func(error)
}

// Server serves the value write and read API.
type Server struct {
	store        datastore.DataStore[storagemodels.ValueRecord]
	dispatcher   *Dispatcher
	logger       *log.Logger
	rowKey       func() string
	now          func() time.Time
	disclose     bool
	maxBodyBytes int64
	readPageSize int32
	functionKey  string
}

// NewServer validates cfg and builds the router.
func NewServer(cfg *config.Config, deps Deps) (http.Handler, *Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if deps.Store == nil {
		return nil, nil, storeerrors.NewValidationError("Store", "must not be nil")
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if deps.RowKey == nil {
		deps.RowKey = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	srv := &Server{
		store:        deps.Store,
		dispatcher:   NewDispatcher(deps.Store, cfg.WriteMode, cfg.WriteTimeout, deps.Logger, deps.OnWriteFailure),
		logger:       deps.Logger,
		rowKey:       deps.RowKey,
		now:          deps.Now,
		disclose:     cfg.DiscloseResponseBody,
		maxBodyBytes: cfg.MaxBodyBytes,
		readPageSize: cfg.ReadPageSize,
		functionKey:  cfg.FunctionKey,
	}

	return srv.routes(cfg.Route), srv, nil
}

func (s *Server) routes(route string) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.health)

	r.Group(func(api chi.Router) {
		if s.functionKey != "" {
			api.Use(s.requireFunctionKey)
		}
		api.Post(route, s.writeValues)
		// Rows written without a key live in the empty partition.
		api.Get(route, s.readValues)
		api.Get(route+"/{key}", s.readValues)
	})

	return r
}

// WaitForWrites blocks until dispatched async writes finish or ctx is done.
func (s *Server) WaitForWrites(ctx context.Context) error {
	return s.dispatcher.Wait(ctx)
}

// Dispatcher exposes the write dispatcher and its counters.
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with an empty body and the status for err.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case storeerrors.IsMalformedRequest(err):
		w.WriteHeader(http.StatusBadRequest)
	case storeerrors.IsNotFound(err):
		w.WriteHeader(http.StatusNotFound)
	case storeerrors.IsStorageWrite(err):
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}
