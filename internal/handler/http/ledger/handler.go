package ledger_http

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"ledger/internal/app/ledger"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageNames = []string{
	"index", "about", "admin", "create_account", "deposit", "withdraw",
	"balance", "set_budget", "check_budget", "add_transaction", "generate_report", "404",
}

type LedgerHandler struct {
	service ledger.LedgerService
	pages   map[string]*template.Template
	logger  *zap.Logger
}

func NewLedgerHandler(s ledger.LedgerService, l *zap.Logger) (*LedgerHandler, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &LedgerHandler{service: s, pages: pages, logger: l}, nil
}

type pageData struct {
	Title        string
	Message      string
	Info         string
	Lines        []string
	Budgets      []budgetRow
	Transactions []transactionRow
	Report       *reportView
}

type budgetRow struct {
	Category  string
	Spent     string
	Budget    string
	Remaining string
}

type transactionRow struct {
	ID       int64
	Date     string
	Type     string
	Category string
	Amount   string
	Notes    string
}

type reportView struct {
	TotalIncome    string
	TotalExpenses  string
	CurrentBalance string
}

// render executes the page into a buffer first so a template failure never
// leaves a half-written 200 response.
func (h *LedgerHandler) render(w http.ResponseWriter, status int, page string, data pageData) {
	tmpl, ok := h.pages[page]
	if !ok {
		h.logger.Error("Unknown page template", zap.String("page", page))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("Failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("Failed to write page", zap.String("page", page), zap.Error(err))
	}
}

func (h *LedgerHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to send JSON response", zap.Error(err))
	}
}
