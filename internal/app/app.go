package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/club-portal/internal/config"
	httpapi "github.com/maxaizer/club-portal/internal/http"
	"github.com/maxaizer/club-portal/internal/http/handlers"
	"github.com/maxaizer/club-portal/internal/http/middleware"
	"github.com/maxaizer/club-portal/internal/repositories"
	"github.com/maxaizer/club-portal/internal/security"
	"github.com/maxaizer/club-portal/internal/services"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"net/http"
)

// App holds the wired portal: the HTTP handler plus the background parts that need stopping.
type App struct {
	Handler  http.Handler
	Bus      EventBus.Bus
	Sweeper  *services.CycleSweeper
	Recorder *services.AuditRecorder
	redis    *redis.Client
}

func New(cfg *config.Config, dbCtx *repositories.DbContext) (*App, error) {
	clientIPs, err := middleware.NewClientIPs(cfg.HTTP.TrustedProxies)
	if err != nil {
		return nil, err
	}

	bus := EventBus.New()

	cycleRepo := repositories.NewCyclesRepository(dbCtx.DB)
	applicationRepo := repositories.NewApplicationsRepository(dbCtx.DB)
	questionRepo := repositories.NewQuestionsRepository(dbCtx.DB)
	phaseRepo := repositories.NewPhasesRepository(dbCtx.DB)
	slotRepo := repositories.NewSlotsRepository(dbCtx.DB)
	settingsRepo := repositories.NewSettingsRepository(dbCtx.DB)
	settingsCache := repositories.NewCachedSettings(settingsRepo, cfg.Maintenance.CacheTTL)

	cycles := services.NewCycleService(bus, cycleRepo)
	questions := services.NewQuestionService(bus, questionRepo, cycleRepo)
	applications := services.NewApplicationService(bus, applicationRepo, cycles, questions)
	phases := services.NewPhaseService(bus, phaseRepo, applicationRepo, cycleRepo)
	slots := services.NewSlotService(bus, slotRepo, applicationRepo, cycleRepo)
	content := services.NewContentService(bus, repositories.NewContentRepository(dbCtx.DB))
	eventsService := services.NewEventService(bus, repositories.NewEventsRepository(dbCtx.DB))
	gate := services.NewMaintenanceGate(settingsCache)

	settings, err := services.NewSettingsService(bus, settingsRepo, settingsCache)
	if err != nil {
		return nil, err
	}

	files, err := services.NewFileStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		return nil, err
	}

	recorder := services.NewAuditRecorder(bus, repositories.NewAuditRepository(dbCtx.DB))
	if err = recorder.Start(); err != nil {
		return nil, err
	}

	sweeper, err := services.NewCycleSweeper(cycles, cfg.Scheduler.CycleSweepSpec)
	if err != nil {
		return nil, err
	}

	a := &App{Bus: bus, Sweeper: sweeper, Recorder: recorder}

	var limiter middleware.Limiter = middleware.NewLocalLimiter()
	if cfg.RateLimit.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		limiter = middleware.NewRedisLimiter(a.redis)
		log.Infof("using redis rate limiter at %s", cfg.RateLimit.RedisAddr)
	}

	a.Handler = httpapi.NewRouter(httpapi.RouterDependencies{
		Cycles:       handlers.NewCycleHandler(cycles, questions),
		Applications: handlers.NewApplicationHandler(applications),
		Phases:       handlers.NewPhaseHandler(phases),
		Slots:        handlers.NewSlotHandler(slots),
		Settings:     handlers.NewSettingsHandler(settings, content, gate),
		Events:       handlers.NewEventHandler(eventsService),
		Files:        handlers.NewFileHandler(files),
		System:       handlers.NewSystemHandler(dbCtx, recorder),
		Verifier:     security.NewSessionVerifier(cfg.Auth),
		Gate:         gate,
		Limiter:      limiter,
		ClientIPs:    clientIPs,
		Config:       *cfg,
	})
	return a, nil
}

// Stop halts background work. The database is closed by its owner.
func (a *App) Stop() {
	a.Sweeper.Stop()
	a.Recorder.Stop()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warnf("failed to close redis client: %v", err)
		}
	}
}
