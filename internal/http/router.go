package http

import (
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/config"
	"github.com/maxaizer/club-portal/internal/http/handlers"
	"github.com/maxaizer/club-portal/internal/http/middleware"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/metrics"
	"github.com/maxaizer/club-portal/internal/security"
	"github.com/maxaizer/club-portal/internal/services"
	"net/http"
	"time"
)

// multipartOverhead covers form boundaries and headers around an upload.
const multipartOverhead = 1 << 20

type RouterDependencies struct {
	Cycles       *handlers.CycleHandler
	Applications *handlers.ApplicationHandler
	Phases       *handlers.PhaseHandler
	Slots        *handlers.SlotHandler
	Settings     *handlers.SettingsHandler
	Events       *handlers.EventHandler
	Files        *handlers.FileHandler
	System       *handlers.SystemHandler
	Verifier     *security.SessionVerifier
	Gate         *services.MaintenanceGate
	Limiter      middleware.Limiter
	ClientIPs    *middleware.ClientIPs
	Config       config.Config
}

type routes struct {
	mux       *http.ServeMux
	bodyLimit int64
}

func (rt routes) handle(pattern string, h http.Handler, middlewares ...middleware.Middleware) {
	tagged := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.SetRoute(r, pattern)
		h.ServeHTTP(w, r)
	})
	rt.mux.Handle(pattern, middleware.Chain(tagged, append([]middleware.Middleware{middleware.BodyLimit(rt.bodyLimit)},
		middlewares...)...))
}

func NewRouter(deps RouterDependencies) http.Handler {
	cfg := deps.Config
	mux := http.NewServeMux()
	api := routes{mux: mux, bodyLimit: cfg.HTTP.MaxBodyBytes}
	uploads := routes{mux: mux, bodyLimit: cfg.Uploads.MaxBytes + multipartOverhead}

	auth := middleware.RequireAuth
	admin := middleware.RequireAdmin
	applyLimit := middleware.RateLimit(deps.Limiter, deps.ClientIPs, "apply", cfg.RateLimit.ApplicationsPerMinute, time.Minute)
	bookLimit := middleware.RateLimit(deps.Limiter, deps.ClientIPs, "book", cfg.RateLimit.ApplicationsPerMinute, time.Minute)

	api.handle("GET /health", http.HandlerFunc(deps.System.Health))
	api.handle("GET /metrics", metrics.Handler())
	api.handle("GET "+cfg.Maintenance.RedirectPath, http.HandlerFunc(deps.Settings.MaintenancePage))

	api.handle("GET /api/recruitment/status", http.HandlerFunc(deps.Cycles.Status))
	api.handle("GET /api/cycles/active", http.HandlerFunc(deps.Cycles.Active))
	api.handle("GET /api/cycles/upcoming", http.HandlerFunc(deps.Cycles.Upcoming))
	api.handle("GET /api/cycles/{id}/questions", http.HandlerFunc(deps.Cycles.Questions))
	api.handle("GET /api/content/{key}", http.HandlerFunc(deps.Settings.GetContent))
	api.handle("GET /api/events", http.HandlerFunc(deps.Events.ListPublished))
	api.handle("GET /api/events/{id}", http.HandlerFunc(deps.Events.Get))
	api.handle("GET /api/files/{name}", http.HandlerFunc(deps.Files.Get))

	api.handle("POST /api/applications", http.HandlerFunc(deps.Applications.Submit), auth, applyLimit)
	api.handle("GET /api/applications/me", http.HandlerFunc(deps.Applications.ListMine), auth)
	api.handle("GET /api/cycles/{id}/slots", http.HandlerFunc(deps.Slots.List), auth)
	api.handle("POST /api/slots/{id}/bookings", http.HandlerFunc(deps.Slots.Book), auth, bookLimit)
	api.handle("GET /api/bookings/me", http.HandlerFunc(deps.Slots.ListMine), auth)
	api.handle("DELETE /api/bookings/{id}", http.HandlerFunc(deps.Slots.Cancel), auth)
	api.handle("POST /api/scores", http.HandlerFunc(deps.Phases.SubmitScore), auth)
	api.handle("GET /api/events/me", http.HandlerFunc(deps.Events.ListMine), auth)
	api.handle("POST /api/events/{id}/rsvp", http.HandlerFunc(deps.Events.RSVP), auth)
	api.handle("DELETE /api/events/{id}/rsvp", http.HandlerFunc(deps.Events.CancelRSVP), auth)
	uploads.handle("POST /api/files", http.HandlerFunc(deps.Files.Upload), auth)

	api.handle("GET /api/admin/cycles", http.HandlerFunc(deps.Cycles.List), admin)
	api.handle("POST /api/admin/cycles", http.HandlerFunc(deps.Cycles.Create), admin)
	api.handle("GET /api/admin/cycles/{id}", http.HandlerFunc(deps.Cycles.Get), admin)
	api.handle("PUT /api/admin/cycles/{id}", http.HandlerFunc(deps.Cycles.Update), admin)
	api.handle("DELETE /api/admin/cycles/{id}", http.HandlerFunc(deps.Cycles.Delete), admin)
	api.handle("POST /api/admin/cycles/{id}/activate", http.HandlerFunc(deps.Cycles.Activate), admin)
	api.handle("POST /api/admin/cycles/{id}/close", http.HandlerFunc(deps.Cycles.Close), admin)
	api.handle("GET /api/admin/cycles/{id}/questions", http.HandlerFunc(deps.Cycles.ListQuestions), admin)
	api.handle("PUT /api/admin/cycles/{id}/questions/{track}", http.HandlerFunc(deps.Cycles.PutQuestions), admin)
	api.handle("DELETE /api/admin/cycles/{id}/questions/{track}", http.HandlerFunc(deps.Cycles.DeleteQuestions), admin)
	api.handle("GET /api/admin/cycles/{id}/phase-configs", http.HandlerFunc(deps.Phases.ListConfigs), admin)
	api.handle("GET /api/admin/cycles/{id}/decisions", http.HandlerFunc(deps.Phases.ListDecisions), admin)
	api.handle("GET /api/admin/cycles/{id}/slots", http.HandlerFunc(deps.Slots.AdminList), admin)
	api.handle("POST /api/admin/cycles/{id}/slots", http.HandlerFunc(deps.Slots.Seed), admin)

	api.handle("GET /api/admin/applications", http.HandlerFunc(deps.Applications.List), admin)
	api.handle("GET /api/admin/applications/{id}", http.HandlerFunc(deps.Applications.Get), admin)
	api.handle("POST /api/admin/applications/{id}/stage", http.HandlerFunc(deps.Applications.Transition), admin)
	api.handle("DELETE /api/admin/applications/{id}", http.HandlerFunc(deps.Applications.Delete), admin)

	api.handle("POST /api/admin/phase-configs", http.HandlerFunc(deps.Phases.CreateConfig), admin)
	api.handle("GET /api/admin/phase-configs/{id}", http.HandlerFunc(deps.Phases.GetConfig), admin)
	api.handle("PUT /api/admin/phase-configs/{id}", http.HandlerFunc(deps.Phases.UpdateConfig), admin)
	api.handle("DELETE /api/admin/phase-configs/{id}", http.HandlerFunc(deps.Phases.DeleteConfig), admin)
	api.handle("POST /api/admin/rankings/recompute", http.HandlerFunc(deps.Phases.Recompute), admin)
	api.handle("GET /api/admin/rankings", http.HandlerFunc(deps.Phases.GetRanking), admin)
	api.handle("POST /api/admin/decisions", http.HandlerFunc(deps.Phases.ApplyDecision), admin)

	api.handle("PUT /api/admin/slots/{id}", http.HandlerFunc(deps.Slots.Update), admin)
	api.handle("DELETE /api/admin/slots/{id}", http.HandlerFunc(deps.Slots.Delete), admin)
	api.handle("GET /api/admin/slots/{id}/bookings", http.HandlerFunc(deps.Slots.ListBookings), admin)

	api.handle("GET /api/admin/settings", http.HandlerFunc(deps.Settings.List), admin)
	api.handle("GET /api/admin/settings/{key}", http.HandlerFunc(deps.Settings.Get), admin)
	api.handle("PUT /api/admin/settings/{key}", http.HandlerFunc(deps.Settings.Put), admin)
	api.handle("GET /api/admin/content", http.HandlerFunc(deps.Settings.ListContent), admin)
	api.handle("PUT /api/admin/content/{key}", http.HandlerFunc(deps.Settings.PutContent), admin)
	api.handle("DELETE /api/admin/content/{key}", http.HandlerFunc(deps.Settings.DeleteContent), admin)

	api.handle("GET /api/admin/events", http.HandlerFunc(deps.Events.ListAll), admin)
	api.handle("POST /api/admin/events", http.HandlerFunc(deps.Events.Create), admin)
	api.handle("PUT /api/admin/events/{id}", http.HandlerFunc(deps.Events.Update), admin)
	api.handle("DELETE /api/admin/events/{id}", http.HandlerFunc(deps.Events.Delete), admin)
	api.handle("GET /api/admin/events/{id}/attendance", http.HandlerFunc(deps.Events.Attendance), admin)
	api.handle("POST /api/admin/events/{id}/check-in", http.HandlerFunc(deps.Events.CheckIn), admin)

	api.handle("GET /api/admin/audit", http.HandlerFunc(deps.System.Audit), admin)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apperr.New(apperr.CodeNotFound, "route not found"))
	})

	return middleware.Chain(mux,
		middleware.Recover,
		middleware.Logging,
		middleware.Metrics,
		middleware.CORS(cfg.HTTP.AllowedOrigins),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
		middleware.Principal(deps.Verifier),
		middleware.Maintenance(deps.Gate, cfg.Maintenance.Prefixes(), cfg.Maintenance.RedirectPath),
	)
}
