package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gopay-wallet-api/internal/application/rewards"
	"github.com/gopay-wallet-api/internal/application/transaction"
	"github.com/gopay-wallet-api/internal/application/user"
	"github.com/gopay-wallet-api/internal/config"
	"github.com/gopay-wallet-api/internal/domain"
	"github.com/gopay-wallet-api/internal/recovery"
	"github.com/gopay-wallet-api/internal/transport/http/handler"
	appmiddleware "github.com/gopay-wallet-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		JWTProvider: deps.JWTProvider,
	})
	txSvc := transaction.NewService(transaction.ServiceDeps{
		TransactionRepo: deps.TransactionRepo,
		ReceiptStore:    deps.ReceiptStore,
	})
	rewardsSvc := rewards.NewService(rewards.ServiceDeps{
		TransactionRepo: deps.TransactionRepo,
	})
	recoverySvc := recovery.NewService(recovery.ServiceDeps{
		Accounts: deps.UserRepo,
		Otps:     deps.OtpStore,
		Tokens:   deps.ResetTokenStore,
		Notifier: recovery.NewNotifier(deps.Mailer, deps.SMSSender, cfg.OTPTTL),
		Writer:   userSvc,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(userSvc)
	userH := handler.NewUserHandler(userSvc)
	txH := handler.NewTransactionHandler(txSvc)
	rewardsH := handler.NewRewardsHandler(rewardsSvc)
	pwH := handler.NewPasswordRecoveryHandler(recoverySvc, userSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/forgot-password", pwH.ForgotPassword)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", pwH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/auth/reset-password", pwH.ResetPassword)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/auth/change-password", pwH.ChangePassword)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)

			r.Post("/transactions", txH.Create)
			r.Get("/transactions", txH.List)
			r.Get("/transactions/{id}", txH.Get)
			r.Post("/transactions/{id}/receipt", txH.AttachReceipt)
			r.Get("/transactions/{id}/receipt", txH.ReceiptURL)

			r.Get("/rewards", rewardsH.Get)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)
			})
		})
	})

	return r
}
