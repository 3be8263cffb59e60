package api

import (
	"net/http"

	"github.com/ashureev/studyguide/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Routes bundles the handlers mounted by NewRouter.
type Routes struct {
	Ask         *AskHandler
	Progress    *ProgressHandler
	Status      *StatusHandler
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(rt Routes) http.Handler {
	logger := rt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := rt.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(origins))

	if rt.Status != nil {
		rt.Status.RegisterRoutes(r)
	}
	if rt.Progress != nil {
		rt.Progress.RegisterRoutes(r)
	}
	if rt.Ask != nil {
		rt.Ask.RegisterRoutes(r)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
