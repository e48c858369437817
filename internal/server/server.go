package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rondoninha/leitura/internal/cache"
	"github.com/rondoninha/leitura/internal/handler"
	"github.com/rondoninha/leitura/internal/importer"
	"github.com/rondoninha/leitura/internal/middleware"
	"github.com/rondoninha/leitura/internal/plan"
	"github.com/rondoninha/leitura/internal/store"
	ws "github.com/rondoninha/leitura/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	readingH     *handler.ReadingHandler
	dashboardH   *handler.DashboardHandler
	awardsH      *handler.AwardsHandler
	questionH    *handler.QuestionHandler
	planH        *handler.PlanHandler
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	readingStore *store.ReadingStore
	planCache    *cache.PlanCache
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, loc *time.Location, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	bookStore := store.NewBookStore(db)
	planStore := store.NewPlanStore(db)
	readingStore := store.NewReadingStore(db)
	completionStore := store.NewCompletionStore(db)
	questionStore := store.NewQuestionStore(db)
	sessionStore := store.NewSessionStore(db)

	planCache := cache.NewPlanCache(func() (map[string]*plan.Plan, error) {
		rows, err := planStore.ListEntryRows()
		if err != nil {
			return nil, err
		}
		return plan.BuildPlans(rows), nil
	})
	questionCache := cache.NewQuestionCache(questionStore.ListWithAnswers)

	planImporter := importer.New(planStore, logger.With("component", "importer"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		readingH:     handler.NewReadingHandler(planStore, bookStore, readingStore, planCache, hub, loc, logger.With("component", "reading")),
		dashboardH:   handler.NewDashboardHandler(readingStore, planCache, loc, logger.With("component", "dashboard")),
		awardsH:      handler.NewAwardsHandler(completionStore, readingStore, userStore, logger.With("component", "awards")),
		questionH:    handler.NewQuestionHandler(questionStore, questionCache, hub, logger.With("component", "question")),
		planH:        handler.NewPlanHandler(planImporter, planCache, hub, logger.With("component", "plan")),
		userStore:    userStore,
		sessionStore: sessionStore,
		readingStore: readingStore,
		planCache:    planCache,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// ReadingStore returns the reading store for the completion backfill job.
func (s *Server) ReadingStore() *store.ReadingStore {
	return s.readingStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /api/users", s.authH.ListUsers)
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("POST /api/me/pin", s.authH.SetPIN)
	mux.HandleFunc("DELETE /api/me/pin", s.authH.ClearPIN)

	// Reading flow
	mux.HandleFunc("GET /api/plans", s.readingH.ListPlans)
	mux.HandleFunc("GET /api/me/plan", s.readingH.LastActivePlan)
	mux.HandleFunc("GET /api/plans/{name}/next-date", s.readingH.NextUnreadDate)
	mux.HandleFunc("GET /api/plans/{name}/day", s.readingH.Day)
	mux.HandleFunc("POST /api/readings", s.readingH.Record)

	// Congregation views
	mux.HandleFunc("GET /api/dashboard", s.dashboardH.Show)
	mux.HandleFunc("GET /api/awards", s.awardsH.List)

	// Question box
	mux.HandleFunc("GET /api/questions", s.questionH.List)
	mux.HandleFunc("POST /api/questions", s.rateLimitedHandler(s.questionH.Ask))
	mux.HandleFunc("POST /api/questions/{id}/answers", s.questionH.Answer)

	// Plan administration
	mux.HandleFunc("POST /api/plans/import", s.planH.Import)

	// WebSocket for live updates
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
