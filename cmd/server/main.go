package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/ledger"
	"fintrack/internal/middleware"
	"fintrack/internal/positions"
	"fintrack/internal/repository"
)

// App holds the application dependencies.
type App struct {
	config              *config.Config
	db                  *database.DB
	router              *chi.Mux
	authMiddleware      *middleware.AuthMiddleware
	authHandler         *handlers.AuthHandler
	userHandler         *handlers.UserHandler
	accountHandler      *handlers.AccountHandler
	categoryHandler     *handlers.CategoryHandler
	transactionHandler  *handlers.TransactionHandler
	subscriptionHandler *handlers.SubscriptionHandler
	investmentHandler   *handlers.InvestmentHandler
	exportHandler       *handlers.ExportHandler
}

func main() {
	cfg := config.New()

	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	saleRepo := repository.NewInvestmentSaleRepository(db)
	profileRepo := repository.NewInvestmentProfileRepository(db)

	// Engines
	ledgerEngine := ledger.NewEngine(db)
	positionEngine := positions.NewEngine(db)

	// Auth
	sessionManager := auth.NewSessionManager(db)
	authService := auth.NewService(userRepo, sessionManager)
	authMiddleware := middleware.NewAuthMiddleware(sessionManager, userRepo)

	// Periodically drop expired sessions
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := sessionManager.CleanExpired(); err != nil {
				log.Printf("Cleaning expired sessions: %v", err)
			} else if n > 0 {
				log.Printf("Removed %d expired sessions", n)
			}
		}
	}()

	app := &App{
		config:              cfg,
		db:                  db,
		authMiddleware:      authMiddleware,
		authHandler:         handlers.NewAuthHandler(authService, cfg.SessionMaxAge),
		userHandler:         handlers.NewUserHandler(userRepo),
		accountHandler:      handlers.NewAccountHandler(accountRepo, subscriptionRepo),
		categoryHandler:     handlers.NewCategoryHandler(categoryRepo),
		transactionHandler:  handlers.NewTransactionHandler(ledgerEngine, transactionRepo),
		subscriptionHandler: handlers.NewSubscriptionHandler(subscriptionRepo, ledgerEngine),
		investmentHandler:   handlers.NewInvestmentHandler(positionEngine, investmentRepo, saleRepo, profileRepo),
		exportHandler:       handlers.NewExportHandler(accountRepo, transactionRepo, categoryRepo, investmentRepo, saleRepo),
	}
	app.setupRouter()

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      app.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://%s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func (app *App) setupRouter() {
	r := chi.NewRouter()

	// Chi middleware (aliased as chimw to avoid conflict with our middleware package)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Compress(5))

	r.Use(middleware.SecurityHeaders)
	r.Use(app.authMiddleware.LoadUser)

	// Health check
	r.Get("/health", app.handleHealth)

	// Auth endpoints, rate limited against brute force
	r.Group(func(r chi.Router) {
		r.Use(middleware.LimitAuth)
		r.Post("/api/auth/register", app.authHandler.Register)
		r.Post("/api/auth/login", app.authHandler.Login)
	})
	r.Post("/api/auth/logout", app.authHandler.Logout)

	// Protected API
	r.Group(func(r chi.Router) {
		r.Use(app.authMiddleware.RequireAuth)
		r.Use(middleware.LimitAPI)

		// Current user
		r.Get("/api/me", app.userHandler.Me)
		r.Put("/api/me/settings", app.userHandler.UpdateSettings)
		r.Post("/api/auth/change-password", app.authHandler.ChangePassword)

		// Accounts
		r.Get("/api/accounts", app.accountHandler.List)
		r.Post("/api/accounts", app.accountHandler.Create)
		r.Get("/api/accounts/{id}", app.accountHandler.Get)
		r.Put("/api/accounts/{id}", app.accountHandler.Update)
		r.Delete("/api/accounts/{id}", app.accountHandler.Delete)

		// Categories
		r.Get("/api/categories", app.categoryHandler.List)
		r.Post("/api/categories", app.categoryHandler.Create)
		r.Put("/api/categories/{id}", app.categoryHandler.Update)
		r.Delete("/api/categories/{id}", app.categoryHandler.Delete)

		// Transactions
		r.Get("/api/transactions", app.transactionHandler.List)
		r.Post("/api/transactions", app.transactionHandler.Create)
		r.Get("/api/transactions/{id}", app.transactionHandler.Get)
		r.Put("/api/transactions/{id}", app.transactionHandler.Update)
		r.Delete("/api/transactions/{id}", app.transactionHandler.Delete)

		// Subscriptions
		r.Get("/api/subscriptions", app.subscriptionHandler.List)
		r.Post("/api/subscriptions", app.subscriptionHandler.Create)
		r.Put("/api/subscriptions/{id}", app.subscriptionHandler.Update)
		r.Delete("/api/subscriptions/{id}", app.subscriptionHandler.Delete)
		r.Post("/api/subscriptions/{id}/toggle", app.subscriptionHandler.Toggle)
		r.Post("/api/subscriptions/{id}/duplicate", app.subscriptionHandler.Duplicate)
		r.Post("/api/subscriptions/{id}/pay", app.subscriptionHandler.Pay)
		r.Get("/api/subscriptions/{id}/payments", app.subscriptionHandler.Payments)

		// Investments
		r.Get("/api/investments", app.investmentHandler.List)
		r.Post("/api/investments", app.investmentHandler.Create)
		r.Put("/api/investments/{id}", app.investmentHandler.Update)
		r.Delete("/api/investments/{id}", app.investmentHandler.Delete)
		r.Post("/api/investments/{id}/sell", app.investmentHandler.Sell)
		r.Get("/api/investments/sales", app.investmentHandler.Sales)

		// Investment profiles
		r.Get("/api/profiles", app.investmentHandler.Profiles)
		r.Post("/api/profiles", app.investmentHandler.CreateProfile)
		r.Post("/api/profiles/{id}/default", app.investmentHandler.SetDefaultProfile)
		r.Delete("/api/profiles/{id}", app.investmentHandler.DeleteProfile)

		// Export
		r.Get("/api/export/transactions", app.exportHandler.Transactions)
		r.Get("/api/export/all", app.exportHandler.All)
	})

	app.router = r
}

// handleHealth returns the server health status.
func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}
