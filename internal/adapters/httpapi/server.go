// Package httpapi serves classified DAO state as read-only JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// ProposalLister lists classified proposals for a DAO
type ProposalLister interface {
	Run(ctx context.Context, params usecase.ListProposalsParams) (*usecase.ProposalListResult, error)
}

// ProposalFinder resolves a single proposal, including ones outside the listing
type ProposalFinder interface {
	Run(ctx context.Context, params usecase.ShowProposalParams) (*usecase.ProposalEntry, bool, error)
}

// FreezeReader reads a DAO's freeze status
type FreezeReader interface {
	Run(ctx context.Context, dao *models.DAO) (*usecase.FreezeStatusResult, error)
}

// DAOLister returns the configured DAOs
type DAOLister interface {
	Run(ctx context.Context) []*models.DAO
}

// StateIndex reports which DAOs have fetched state in memory
type StateIndex interface {
	Get(key models.DAOKey) (*models.DAOState, bool)
	Keys() []models.DAOKey
}

// LoadedDAO is a DAO whose state has been fetched at least once
type LoadedDAO struct {
	Key       models.DAOKey `json:"key"`
	Name      string        `json:"name"`
	Proposals int           `json:"proposals"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Server is the status server
type Server struct {
	cfg       *config.RuntimeConfig
	daos      DAOLister
	proposals ProposalLister
	finder    ProposalFinder
	freeze    FreezeReader
	states    StateIndex
	log       *slog.Logger
	router    *mux.Router
}

// NewServer creates the server and registers its routes
func NewServer(cfg *config.RuntimeConfig, daos *usecase.ListDAOs, proposals *usecase.ListProposals, finder *usecase.ShowProposal, freeze *usecase.ShowFreezeStatus, store usecase.DAOStore, log *slog.Logger) *Server {
	return NewServerWith(cfg, daos, proposals, finder, freeze, store, log)
}

// NewServerWith creates the server from interfaces
func NewServerWith(cfg *config.RuntimeConfig, daos DAOLister, proposals ProposalLister, finder ProposalFinder, freeze FreezeReader, states StateIndex, log *slog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		daos:      daos,
		proposals: proposals,
		finder:    finder,
		freeze:    freeze,
		states:    states,
		log:       log.With("component", "httpapi"),
		router:    mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	s.router.HandleFunc("/daos", s.listDAOs).Methods(http.MethodGet)
	s.router.HandleFunc("/daos/{dao}/proposals", s.listProposals).Methods(http.MethodGet)
	s.router.HandleFunc("/daos/{dao}/proposals/{id}", s.showProposal).Methods(http.MethodGet)
	s.router.HandleFunc("/daos/{dao}/freeze", s.freezeStatus).Methods(http.MethodGet)
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("status server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down status server: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listDAOs(w http.ResponseWriter, r *http.Request) {
	loaded := []LoadedDAO{}
	for _, key := range s.states.Keys() {
		state, ok := s.states.Get(key)
		if !ok || state.DAO == nil {
			continue
		}
		loaded = append(loaded, LoadedDAO{
			Key:       key,
			Name:      state.DAO.Name,
			Proposals: len(state.Proposals),
			UpdatedAt: state.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"daos":   s.daos.Run(r.Context()),
		"loaded": loaded,
	})
}

func (s *Server) listProposals(w http.ResponseWriter, r *http.Request) {
	dao, err := s.lookupDAO(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.proposals.Run(r.Context(), usecase.ListProposalsParams{DAO: dao, Filter: filter})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) showProposal(w http.ResponseWriter, r *http.Request) {
	dao, err := s.lookupDAO(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	entry, viaRejection, err := s.finder.Run(r.Context(), usecase.ShowProposalParams{DAO: dao, ID: mux.Vars(r)["id"]})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if viaRejection {
		rejection := usecase.ProposalEntry{Proposal: entry.Proposal.Multisig.Rejection, Action: *entry.RejectionAction}
		writeJSON(w, http.StatusOK, rejection)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) freezeStatus(w http.ResponseWriter, r *http.Request) {
	dao, err := s.lookupDAO(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.freeze.Run(r.Context(), dao)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// lookupDAO matches the {dao} path variable against names and keys exactly
func (s *Server) lookupDAO(r *http.Request) (*models.DAO, error) {
	ref := mux.Vars(r)["dao"]
	for _, dao := range s.daos.Run(r.Context()) {
		if strings.EqualFold(dao.Name, ref) || string(dao.Key) == ref {
			return dao, nil
		}
	}
	return nil, fmt.Errorf("%w: DAO %s", domain.ErrNotFound, ref)
}

// parseFilter reads kind, state, actionable and all query parameters
func parseFilter(r *http.Request) (domain.ProposalFilter, error) {
	q := r.URL.Query()
	filter := domain.ProposalFilter{
		Kind:            models.ProposalKind(q.Get("kind")),
		Actionable:      q.Get("actionable") == "true",
		IncludeTerminal: q.Get("all") == "true",
	}
	for _, raw := range q["state"] {
		state, ok := models.ParseProposalState(strings.ToUpper(raw))
		if !ok {
			return filter, fmt.Errorf("unknown state %q", raw)
		}
		filter.States = append(filter.States, state)
	}
	return filter, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrNotFound) {
		status = http.StatusNotFound
	} else {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
