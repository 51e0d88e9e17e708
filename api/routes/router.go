package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/youscore/youscore-backend/api/controllers"
	"github.com/youscore/youscore-backend/api/middleware"
	authsvc "github.com/youscore/youscore-backend/internal/auth"
	"github.com/youscore/youscore-backend/internal/notifications"
	"github.com/youscore/youscore-backend/internal/predictions"
	"github.com/youscore/youscore-backend/internal/settings"
	"github.com/youscore/youscore-backend/internal/users"
	"github.com/youscore/youscore-backend/pkg/auth/session"
	"github.com/youscore/youscore-backend/pkg/config"
	"github.com/youscore/youscore-backend/pkg/db"
	"github.com/youscore/youscore-backend/pkg/enums"
	"github.com/youscore/youscore-backend/pkg/logger"
	"github.com/youscore/youscore-backend/pkg/metrics"
	"github.com/youscore/youscore-backend/pkg/redis"
)

// Deps gathers everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Sessions      session.AccessSessionChecker
	HTTPMetrics   *metrics.HTTPMetrics
	MetricsHandle http.Handler

	Auth          authsvc.Service
	Users         users.Service
	Predictions   predictions.Service
	Notifications notifications.Service
	Settings      settings.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger
	adminRole := string(enums.RoleAdmin)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.MetricsHandle == nil {
		d.MetricsHandle = promhttp.Handler()
	}
	r.Handle("/metrics", d.MetricsHandle)

	r.Route("/api/v1/auth", func(r chi.Router) {
		throttle := cfg.AuthThrottle
		r.With(middleware.Throttle("login", throttle.LoginLimit, throttle.Window, d.Redis, logg)).
			Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(middleware.Throttle("register", throttle.RegisterLimit, throttle.Window, d.Redis, logg)).
			Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Route("/users", func(r chi.Router) {
			r.With(middleware.RequireRole(adminRole, logg)).Get("/", controllers.UsersList(d.Users, logg))
			r.Get("/{id}", controllers.UserGet(d.Users, logg))
			r.With(middleware.RequireRole(adminRole, logg)).Patch("/{id}", controllers.UserUpdate(d.Users, logg))
			r.With(middleware.RequireRole(adminRole, logg)).Delete("/{id}", controllers.UserDelete(d.Users, logg))

			r.Post("/{id}/subscription/request", controllers.SubscriptionRequest(d.Users, logg))
			r.With(middleware.RequireRole(adminRole, logg)).Post("/{id}/subscription/approve", controllers.SubscriptionApprove(d.Users, logg))
			r.With(middleware.RequireRole(adminRole, logg)).Post("/{id}/subscription/reset", controllers.SubscriptionReset(d.Users, logg))

			r.Post("/{id}/password", controllers.UserChangePassword(d.Users, logg))
			r.Post("/{id}/email", controllers.UserChangeEmail(d.Users, logg))
		})

		r.Route("/predictions", func(r chi.Router) {
			r.Get("/", controllers.PredictionsList(d.Predictions, d.Users, logg))
			r.With(middleware.RequireRole(adminRole, logg)).Post("/", controllers.PredictionsCreate(d.Predictions, logg))
			r.With(middleware.RequireRole(adminRole, logg)).Post("/import", controllers.PredictionsImport(logg))
			r.With(middleware.RequireRole(adminRole, logg)).Patch("/{id}/result", controllers.PredictionUpdateResult(d.Predictions, logg))
			r.With(middleware.RequireRole(adminRole, logg)).Delete("/{id}", controllers.PredictionDelete(d.Predictions, logg))
		})

		r.Get("/stats/weekly", controllers.StatsWeekly(d.Predictions, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsGet(d.Settings, logg))
			r.With(middleware.RequireRole(adminRole, logg)).Put("/", controllers.SettingsReplace(d.Settings, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.Notifications, d.Users, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(d.Notifications, logg))
			r.Post("/mark-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))
		})
	})

	return r
}
