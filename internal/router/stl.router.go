package router

import (
	"net/http"
	"time"

	"settlement-service/internal/handler/rest"
	"settlement-service/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func SetupRoutes(
	paymentHandler *rest.PaymentHandler,
	merchants repository.MerchantRepository,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/api/v1/payments/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes; everything below requires merchant Basic auth
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(rest.MerchantAuth(merchants, logger))

		r.Post("/deposit", paymentHandler.Deposit)
		r.Post("/withdrawal", paymentHandler.Withdraw)

		r.Route("/topup/transaction", func(r chi.Router) {
			r.Get("/list", paymentHandler.ListTopUps)
			r.Get("/{transactionID}/details", paymentHandler.TopUpByID)
		})

		r.Route("/payout/transaction", func(r chi.Router) {
			r.Get("/list", paymentHandler.ListPayOuts)
			r.Get("/{transactionID}/details", paymentHandler.PayOutByID)
		})

		r.Get("/transaction/{transactionID}/status", paymentHandler.TransactionStatus)
	})

	return r
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr))
		})
	}
}
