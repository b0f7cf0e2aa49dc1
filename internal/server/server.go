package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ivanoskov/budget_manager/internal/config"
	"github.com/ivanoskov/budget_manager/internal/repository"
	"github.com/ivanoskov/budget_manager/internal/service"
)

// trackerFactory turns a bearer token into a user-scoped tracker plus
// the authenticated user's id. Swapped out in tests.
type trackerFactory func(ctx context.Context, token string) (*service.BudgetTracker, string, error)

type Server struct {
	logger     zerolog.Logger
	newTracker trackerFactory
}

func New(cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		logger:     logger,
		newTracker: supabaseTrackerFactory(cfg),
	}
}

// supabaseTrackerFactory builds, per request, a repository whose
// PostgREST calls carry the caller's token so row-level security does
// the user scoping.
func supabaseTrackerFactory(cfg *config.Config) trackerFactory {
	return func(ctx context.Context, token string) (*service.BudgetTracker, string, error) {
		repo, err := repository.NewSupabaseRepositoryWithToken(cfg.SupabaseURL, cfg.SupabaseKey, token)
		if err != nil {
			return nil, "", err
		}
		userID, err := repo.AuthenticatedUser(ctx, token)
		if err != nil {
			return nil, "", err
		}
		return service.NewBudgetTracker(repo, cfg.Currency), userID, nil
	}
}

// Handler assembles the API surface. Everything under /api requires a
// bearer token; session-cookie transport is the frontend's concern.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/ingest", s.authed(s.handleIngest))
	mux.HandleFunc("POST /api/import", s.authed(s.handleImport))
	mux.HandleFunc("POST /api/import/preview", s.authed(s.handleImportPreview))

	mux.HandleFunc("GET /api/transactions", s.authed(s.handleListTransactions))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.authed(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transactions/update-categories", s.authed(s.handleUpdateCategories))

	mux.HandleFunc("GET /api/rules", s.authed(s.handleListRules))
	mux.HandleFunc("POST /api/rules", s.authed(s.handleCreateRule))
	mux.HandleFunc("PATCH /api/rules/{id}", s.authed(s.handleUpdateRule))
	mux.HandleFunc("DELETE /api/rules/{id}", s.authed(s.handleDeleteRule))
	mux.HandleFunc("POST /api/rules/preview", s.authed(s.handleRulesPreview))
	mux.HandleFunc("POST /api/rules/commit", s.authed(s.handleRulesCommit))

	mux.HandleFunc("GET /api/summary", s.authed(s.handleSummary))

	return s.logRequests(withCORS(mux))
}

// handlerFunc is an authenticated handler: it receives the
// user-scoped tracker and the owner id on top of the usual pair.
type handlerFunc func(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, userID string)

func (s *Server) authed(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := parseBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tracker, userID, err := s.newTracker(r.Context(), token)
		if err != nil {
			s.logger.Warn().Err(err).Msg("token rejected")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		fn(w, r, tracker, userID)
	}
}
