package connection

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"tenor/config"
	"tenor/controller/ai"
	authctl "tenor/controller/auth"
	"tenor/controller/backlog"
	eegctl "tenor/controller/eeg"
	"tenor/controller/file"
	"tenor/controller/kanban"
	"tenor/controller/performance"
	"tenor/controller/project"
	"tenor/controller/requirement"
	"tenor/controller/retrospective"
	"tenor/controller/settings"
	"tenor/controller/sprint"
	"tenor/controller/task"
	"tenor/controller/user"
	"tenor/eeg"
	"tenor/middleware"
	"tenor/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the shared clients the routes are built from.
type Deps struct {
	Firebase *Firebase
	AI       *services.AIClient
	Captcha  *services.CaptchaVerifier
	HTTP     *http.Client
	Hub      *eeg.Hub
	Quality  *eeg.QualityInferer
	Logger   *slog.Logger
}

// corsConfig allows every origin unless CORS_ORIGINS narrows it.
func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AddAllowHeaders("Authorization")
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// NewRouter wires every controller onto a fresh engine.
func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Logger), cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	fb := d.Firebase.Firestore
	roles := services.NewRoleResolver(fb)

	authctl.SignInController(router, fb, d.Firebase.Auth)
	authctl.SessionController(router, fb, d.Firebase.Auth)
	authctl.CaptchaController(router, d.Captcha)

	user.UserController(router, fb, d.Firebase.Auth, d.Firebase.Store, roles)
	project.ProjectController(router, &services.ProjectServices{FB: fb, Store: d.Firebase.Store, HTTP: d.HTTP}, roles)
	settings.SettingsController(router, fb, d.HTTP, roles)
	requirement.RequirementController(router, fb, d.AI, roles)
	backlog.BacklogController(router, fb, d.AI, roles)
	task.TaskController(router, fb, d.AI, roles)
	sprint.SprintController(router, fb, roles)
	kanban.KanbanController(router, fb, roles)
	performance.PerformanceController(router, fb, roles)
	retrospective.RetrospectiveController(router, fb, d.AI, roles)

	ai.AIController(router, d.AI)
	file.FileController(router, fb, d.Firebase.Store, d.HTTP)
	eegctl.MuseController(router, fb, d.Hub, d.Quality)

	return router
}

// StartServer serves until ctx is cancelled, then drains open requests.
func StartServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	gin.SetMode(cfg.GinMode)

	fb, err := FBConnection(ctx, cfg)
	if err != nil {
		return err
	}
	defer fb.Close()

	captcha, err := services.NewCaptchaVerifier(ctx, cfg)
	if err != nil {
		return err
	}
	if captcha == nil {
		logger.Warn("reCAPTCHA not configured, /auth/captcha is disabled")
	} else {
		defer captcha.Close()
	}

	hub := eeg.NewHub(64)
	router := NewRouter(cfg, Deps{
		Firebase: fb,
		AI:       services.NewAIClient(services.NewProvider(cfg), cfg.AIRatePerMinute),
		Captcha:  captcha,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Hub:      hub,
		Quality:  eeg.NewQualityInferer(),
		Logger:   logger,
	})

	srv := newHTTPServer(":"+cfg.Port, router, hub)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHTTPServer builds the API server. Shutdown cancels request contexts and
// closes the muse hub so open event streams end instead of holding the
// shutdown until its timeout.
func newHTTPServer(addr string, handler http.Handler, hub *eeg.Hub) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	srv.RegisterOnShutdown(hub.Close)
	return srv
}
