package ledger_http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"ledger/internal/app/ledger"
)

func RegisterRoutes(r chi.Router, s ledger.LedgerService, l *zap.Logger) error {
	handler, err := NewLedgerHandler(s, l.With(zap.String("component", "LedgerHTTPHandler")))
	if err != nil {
		return err
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Ledger service is healthy!"))
	})

	r.Get("/", handler.HomePage)
	r.Get("/about", handler.AboutPage)
	r.Get("/check_budget", handler.CheckBudgetPage)
	r.Get("/generate_report", handler.GenerateReportPage)
	for path, page := range map[string]http.HandlerFunc{
		"/admin":           handler.AdminPage,
		"/create_account":  handler.CreateAccountPage,
		"/deposit":         handler.DepositPage,
		"/withdraw":        handler.WithdrawPage,
		"/balance":         handler.BalancePage,
		"/set_budget":      handler.SetBudgetPage,
		"/add_transaction": handler.AddTransactionPage,
	} {
		r.Get(path, page)
		r.Post(path, page)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", handler.CreateAccountHandler)
			r.Get("/", handler.ListAccountsHandler)
			r.Get("/{id}", handler.GetAccountHandler)
			r.Post("/{id}/deposit", handler.DepositHandler)
			r.Post("/{id}/withdraw", handler.WithdrawHandler)
		})
		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", handler.CheckBudgetHandler)
			r.Put("/{category}", handler.SetBudgetHandler)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", handler.AddTransactionHandler)
			r.Get("/", handler.ListTransactionsHandler)
		})
		r.Get("/report", handler.ReportHandler)
	})

	r.NotFound(handler.NotFoundPage)
	return nil
}

// NewRouter builds the full HTTP stack: middleware, CORS and all ledger routes.
func NewRouter(s ledger.LedgerService, allowedOrigins []string, l *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if err := RegisterRoutes(r, s, l); err != nil {
		return nil, err
	}
	return r, nil
}
