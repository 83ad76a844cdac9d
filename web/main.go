package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
	"github.com/localchefbazaar/bazaar/internal/pkg/logger"
	"github.com/localchefbazaar/bazaar/web/internal/config"
	"github.com/localchefbazaar/bazaar/web/internal/handlers"
	"github.com/localchefbazaar/bazaar/web/internal/middleware"
	"github.com/localchefbazaar/bazaar/web/internal/render"
	"github.com/localchefbazaar/bazaar/web/internal/session"
)

// setupWebLogging configures the global logger for the web service
func setupWebLogging(logLevel, logFormat string) error {
	cfg := logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogToStderr: true, // web service always logs to stderr
		Format:      logFormat,
	}

	globalLogger, err := logger.Setup(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err = setupWebLogging(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	log := slog.Default().With("component", "web")
	log.Info("starting bazaar web service")

	templates, err := render.LoadTemplates(cfg.Templates.Path)
	if err != nil {
		log.Error("failed to load templates", slog.Any("error", err))
		os.Exit(1)
	}

	sessionSecret := resolveSessionSecret(cfg, log)
	sessionMgr := session.NewManager(sessionSecret)

	idp := identity.NewClient(cfg.Identity.Endpoint, cfg.Identity.APIKey,
		identity.WithLogger(log))

	authMw := middleware.NewAuthMiddleware(sessionMgr, cfg.Backend.BaseURL, log)

	h := handlers.New(cfg.Backend.BaseURL, idp, sessionMgr, templates, log)

	router := createRouter(h, authMw)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("listening", slog.String("address", addr))

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Error("failed to start server", slog.Any("error", err))
		os.Exit(1)
	}
}

// resolveSessionSecret picks the cookie secret: env var, then config file,
// then a random one (dev mode; sessions will not survive a restart).
func resolveSessionSecret(cfg *config.WebConfig, log *slog.Logger) []byte {
	if envSecret := os.Getenv("SESSION_SECRET"); envSecret != "" {
		secret, err := base64.StdEncoding.DecodeString(envSecret)
		if err == nil {
			log.Info("using session secret from environment")
			return secret
		}
		log.Warn("failed to decode SESSION_SECRET env var, trying config", slog.Any("error", err))
	}

	if cfg.Session.Secret != "" {
		secret, err := base64.StdEncoding.DecodeString(cfg.Session.Secret)
		if err == nil {
			log.Info("using session secret from config file")
			return secret
		}
		log.Warn("failed to decode session secret from config", slog.Any("error", err))
	}

	log.Warn("no session secret configured, generating random one (sessions won't persist)")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Error("failed to generate session secret", slog.Any("error", err))
		os.Exit(1)
	}
	return secret
}

// createRouter sets up the HTTP router with all routes and middleware
func createRouter(h *handlers.Handler, authMw *middleware.AuthMiddleware) http.Handler {
	router := mux.NewRouter()

	// Static assets with long-lived caching
	staticDir := http.Dir("web/static")
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/",
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			http.FileServer(staticDir).ServeHTTP(w, r)
		})))

	router.HandleFunc("/health", h.Health).Methods("GET")

	// Public routes
	router.HandleFunc("/", h.Home).Methods("GET")
	router.HandleFunc("/meals", h.Meals).Methods("GET")
	router.HandleFunc("/login", h.LoginPage).Methods("GET")
	router.HandleFunc("/login", h.Login).Methods("POST")
	router.HandleFunc("/register", h.RegisterPage).Methods("GET")
	router.HandleFunc("/register", h.Register).Methods("POST")
	router.HandleFunc("/logout", h.Logout).Methods("GET", "POST")
	router.HandleFunc("/payment-success", h.PaymentSuccess).Methods("GET")

	// Authenticated routes, any role
	auth := authMw.Require()
	router.Handle("/meals/{id}", auth(http.HandlerFunc(h.MealDetail))).Methods("GET")
	router.Handle("/meals/{id}/{slug}", auth(http.HandlerFunc(h.MealDetail))).Methods("GET")
	router.Handle("/meals/{id}/favorite", auth(http.HandlerFunc(h.AddFavorite))).Methods("POST")
	router.Handle("/meals/{id}/reviews", auth(http.HandlerFunc(h.PostReview))).Methods("POST")
	router.Handle("/order/{id}", auth(http.HandlerFunc(h.OrderPage))).Methods("GET")
	router.Handle("/order/{id}", auth(http.HandlerFunc(h.PlaceOrder))).Methods("POST")

	router.Handle("/dashboard", auth(http.HandlerFunc(h.Dashboard))).Methods("GET")
	router.Handle("/dashboard/profile", auth(http.HandlerFunc(h.UpdateProfile))).Methods("POST")
	router.Handle("/dashboard/request-role", auth(http.HandlerFunc(h.RequestRole))).Methods("POST")
	router.Handle("/dashboard/my-orders", auth(http.HandlerFunc(h.MyOrders))).Methods("GET")
	router.Handle("/dashboard/my-orders/{id}/cancel", auth(http.HandlerFunc(h.CancelOrder))).Methods("POST")
	router.Handle("/dashboard/my-orders/{id}/pay", auth(http.HandlerFunc(h.PayOrder))).Methods("POST")
	router.Handle("/dashboard/my-reviews", auth(http.HandlerFunc(h.MyReviews))).Methods("GET")
	router.Handle("/dashboard/my-reviews/{id}", auth(http.HandlerFunc(h.UpdateReview))).Methods("POST")
	router.Handle("/dashboard/my-reviews/{id}/delete", auth(http.HandlerFunc(h.DeleteReview))).Methods("POST")
	router.Handle("/dashboard/favorites", auth(http.HandlerFunc(h.Favorites))).Methods("GET")
	router.Handle("/dashboard/favorites/{id}/delete", auth(http.HandlerFunc(h.RemoveFavorite))).Methods("POST")

	// Chef routes
	chef := authMw.Require(api.RoleChef)
	router.Handle("/dashboard/create-meal", chef(http.HandlerFunc(h.CreateMealPage))).Methods("GET")
	router.Handle("/dashboard/create-meal", chef(http.HandlerFunc(h.CreateMeal))).Methods("POST")
	router.Handle("/dashboard/my-meals", chef(http.HandlerFunc(h.MyMeals))).Methods("GET")
	router.Handle("/dashboard/my-meals/{id}/edit", chef(http.HandlerFunc(h.EditMealPage))).Methods("GET")
	router.Handle("/dashboard/my-meals/{id}", chef(http.HandlerFunc(h.UpdateMeal))).Methods("POST")
	router.Handle("/dashboard/my-meals/{id}/delete", chef(http.HandlerFunc(h.DeleteMeal))).Methods("POST")
	router.Handle("/dashboard/order-requests", chef(http.HandlerFunc(h.OrderRequests))).Methods("GET")
	router.Handle("/dashboard/order-requests/{id}/accept", chef(http.HandlerFunc(h.AcceptOrder))).Methods("POST")
	router.Handle("/dashboard/order-requests/{id}/deliver", chef(http.HandlerFunc(h.DeliverOrder))).Methods("POST")

	// Admin routes
	admin := authMw.Require(api.RoleAdmin)
	router.Handle("/dashboard/manage-users", admin(http.HandlerFunc(h.ManageUsers))).Methods("GET")
	router.Handle("/dashboard/manage-users/{id}/fraud", admin(http.HandlerFunc(h.MarkFraud))).Methods("POST")
	router.Handle("/dashboard/manage-requests", admin(http.HandlerFunc(h.ManageRequests))).Methods("GET")
	router.Handle("/dashboard/manage-requests/{id}/approve", admin(http.HandlerFunc(h.ApproveRequest))).Methods("POST")
	router.Handle("/dashboard/manage-requests/{id}/reject", admin(http.HandlerFunc(h.RejectRequest))).Methods("POST")
	router.Handle("/dashboard/statistics", admin(http.HandlerFunc(h.StatisticsPage))).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(h.NotFound)

	return middleware.RequestID(middleware.LogRequest(router))
}
