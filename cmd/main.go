package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	_ "time/tzdata"

	"github.com/geoform/intake-service/internal/app"
	"github.com/geoform/intake-service/internal/config"
	"github.com/geoform/intake-service/internal/controllers"
	"github.com/geoform/intake-service/internal/middleware"
	"github.com/geoform/intake-service/internal/routes"
	"github.com/geoform/intake-service/internal/services"
	"github.com/geoform/intake-service/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	utils.InitLogger(config.AppName)

	// 1) Config
	cfg := config.LoadConfig()

	// 2) Core application (database client, storage gateway)
	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.Close()

	// 3) Services & controllers
	submissionSvc := services.NewSubmissionService(application.Records)

	healthCtrl := controllers.NewHealthController(application.Records)
	submissionCtrl := controllers.NewSubmissionController(submissionSvc, cfg.IsDevelopment())
	envCtrl := controllers.NewEnvironmentController(cfg.Env)
	debugCtrl := controllers.NewDebugController(cfg, application.Records)

	// 4) Router
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger)

	router.HandleFunc(routes.Health, healthCtrl.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.SubmitForm, submissionCtrl.SubmitForm).Methods(http.MethodPost)
	router.HandleFunc(routes.Users, submissionCtrl.ListUsers).Methods(http.MethodGet)
	router.HandleFunc(routes.Environment, envCtrl.GetEnvironment).Methods(http.MethodGet)

	if cfg.LDFlag_DebugRoutes {
		utils.Logger.Info("Debug routes enabled")
		router.HandleFunc(routes.Debug, debugCtrl.Snapshot).Methods(http.MethodGet)
	}
	if cfg.LDFlag_DashboardRedirect {
		router.HandleFunc(routes.Dashboard, debugCtrl.DashboardRedirect).Methods(http.MethodGet)
	}

	router.PathPrefix(routes.APIPrefix).HandlerFunc(controllers.APINotFound)
	router.PathPrefix("/").Handler(controllers.StaticHandler(cfg.StaticDir))

	// 5) CORS
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", utils.HeaderRequestID},
		ExposedHeaders: []string{utils.HeaderRequestID},
	})

	// 6) Serve until SIGINT/SIGTERM
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	utils.Logger.Infof("Starting %s on :%s (%s)", cfg.AppName, cfg.AppPort, cfg.EnvironmentName())
	if err := serve(ctx, srv); err != nil {
		// Fatal skips deferred calls.
		stop()
		application.Close()
		utils.Logger.WithError(err).Fatal("Server error")
	}
}

// serve runs srv until ctx is done, then drains it. It returns the listener
// error when the server could not start or stopped on its own.
func serve(ctx context.Context, srv *http.Server) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		utils.Logger.Info("Shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Error("Graceful shutdown failed")
	}
	return nil
}
