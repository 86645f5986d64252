package ledger_http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledger/internal/app/ledger"
	"ledger/internal/infrastructure/database/dbtest"
	accounts_memory "ledger/internal/repository/accounts_repo/memory"
	budgets_memory "ledger/internal/repository/budgets_repo/memory"
	"ledger/internal/repository/inbox_repo"
	"ledger/internal/repository/outbox_repo"
	"ledger/internal/repository/transactions_repo"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := ledger.NewLedgerService(
		dbtest.NewSQLite(t),
		accounts_memory.NewAccountRepository(),
		budgets_memory.NewBudgetRepository(),
		transactions_repo.NewTransactionRepository(),
		outbox_repo.NewOutboxRepository(),
		inbox_repo.NewInboxRepository(),
		"ledger_transactions",
		zap.NewNop(),
	)
	router, err := NewRouter(svc, []string{"http://localhost:5173"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// noRedirectClient surfaces redirects instead of following them.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, srv *httptest.Server, path string, values url.Values) (int, string) {
	t.Helper()
	resp, err := noRedirectClient().PostForm(srv.URL+path, values)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, readBody(t, resp)
}

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, readBody(t, resp)
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func assertContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("response does not contain %q\n%s", want, body)
	}
}

func TestFormPagesRender(t *testing.T) {
	srv := newTestServer(t)

	pages := []struct {
		path string
		want string
	}{
		{"/", "Welcome to the Banking System."},
		{"/about", "This Banking System allows you to create accounts"},
		{"/admin", "Show all users"},
		{"/create_account", `name="initial_balance"`},
		{"/deposit", `action="/deposit"`},
		{"/withdraw", `action="/withdraw"`},
		{"/balance", `action="/balance"`},
		{"/set_budget", `action="/set_budget"`},
		{"/check_budget", "No budgets set."},
		{"/add_transaction", `name="notes"`},
		{"/generate_report", "Current balance"},
	}
	for _, tc := range pages {
		t.Run(tc.path, func(t *testing.T) {
			status, body := get(t, srv, tc.path)
			if status != http.StatusOK {
				t.Fatalf("status = %d, want 200", status)
			}
			assertContains(t, body, tc.want)
		})
	}
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	srv := newTestServer(t)
	status, body := get(t, srv, "/no/such/page")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	assertContains(t, body, "does not exist")
}

func TestAccountFormFlow(t *testing.T) {
	srv := newTestServer(t)

	_, body := postForm(t, srv, "/create_account", url.Values{"name": {"Alice"}, "initial_balance": {"100"}})
	assertContains(t, body, "Account created for Alice with ID 1. Initial balance: $100.00")

	_, body = postForm(t, srv, "/deposit", url.Values{"user_id": {"1"}, "amount": {"50.5"}})
	assertContains(t, body, "$50.50 deposited to Alice")
	assertContains(t, body, "New balance: $150.50")

	_, body = postForm(t, srv, "/withdraw", url.Values{"user_id": {"1"}, "amount": {"200"}})
	assertContains(t, body, "Insufficient balance.")

	_, body = postForm(t, srv, "/withdraw", url.Values{"user_id": {"1"}, "amount": {"0.50"}})
	assertContains(t, body, "$0.50 withdrawn from Alice")
	assertContains(t, body, "New balance: $150.00")

	_, body = postForm(t, srv, "/balance", url.Values{"user_id": {"1"}})
	assertContains(t, body, "User Alice has a balance of $150.00")

	_, body = postForm(t, srv, "/admin", url.Values{})
	assertContains(t, body, "ID: 1, Name: Alice, Balance: $150.00")
	assertContains(t, body, "Withdrawal")

	_, body = get(t, srv, "/generate_report")
	assertContains(t, body, "$50.50")
	assertContains(t, body, "$50.00")
}

func TestFormValidationMessages(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		path   string
		values url.Values
		want   string
	}{
		{"/create_account", url.Values{"name": {"Bob"}, "initial_balance": {"lots"}}, "Invalid initial balance. Please enter a numeric value."},
		{"/create_account", url.Values{"name": {"Bob"}, "initial_balance": {"NaN"}}, "Invalid initial balance. Please enter a numeric value."},
		{"/deposit", url.Values{"user_id": {"one"}, "amount": {"5"}}, "Invalid input. Please ensure user ID and amount are numeric."},
		{"/withdraw", url.Values{"user_id": {"1"}, "amount": {"five"}}, "Invalid input. Please ensure user ID and amount are numeric."},
		{"/balance", url.Values{"user_id": {"x"}}, "Invalid user ID. Please enter a numeric value."},
		{"/set_budget", url.Values{"category": {"Food"}, "amount": {"abc"}}, "Invalid budget amount. Please enter a numeric value."},
		{"/add_transaction", url.Values{"type": {"transfer"}, "category": {"Food"}, "amount": {"1"}}, "Invalid transaction type."},
		{"/deposit", url.Values{"user_id": {"99"}, "amount": {"5"}}, "User not found."},
		{"/withdraw", url.Values{"user_id": {"99"}, "amount": {"5"}}, "User not found."},
		{"/balance", url.Values{"user_id": {"99"}}, "User not found."},
		{"/admin", url.Values{}, "No users available."},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			status, body := postForm(t, srv, tc.path, tc.values)
			if status != http.StatusOK {
				t.Fatalf("status = %d, want 200", status)
			}
			assertContains(t, body, tc.want)
		})
	}
}

func TestSetBudgetRedirectsHome(t *testing.T) {
	srv := newTestServer(t)

	resp, err := noRedirectClient().PostForm(srv.URL+"/set_budget", url.Values{"category": {"Groceries"}, "amount": {"300"}})
	if err != nil {
		t.Fatalf("POST /set_budget: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("Location = %q, want /", loc)
	}

	postForm(t, srv, "/add_transaction", url.Values{"type": {"expense"}, "category": {"Groceries"}, "amount": {"120"}, "notes": {"weekly shop"}})

	_, body := get(t, srv, "/check_budget")
	assertContains(t, body, "Groceries")
	assertContains(t, body, "$120.00")
	assertContains(t, body, "$180.00")
}

func TestAccountAPI(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/accounts", `{"name":"Carol","initial_balance":"10.25"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created AccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID != 1 || !created.Balance.Equal(decimal.RequireFromString("10.25")) {
		t.Fatalf("unexpected account: %+v", created)
	}

	resp = doJSON(t, srv, http.MethodPost, "/api/accounts/1/deposit", `{"amount":5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deposit status = %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, srv, http.MethodPost, "/api/accounts/1/withdraw", `{"amount":"100"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("withdraw status = %d, want 409", resp.StatusCode)
	}

	resp = doJSON(t, srv, http.MethodGet, "/api/accounts/1", "")
	var got AccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("15.25")) {
		t.Fatalf("balance = %s, want 15.25", got.Balance)
	}

	statusCases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/accounts/42", "", http.StatusNotFound},
		{http.MethodGet, "/api/accounts/abc", "", http.StatusBadRequest},
		{http.MethodPost, "/api/accounts/42/deposit", `{"amount":1}`, http.StatusNotFound},
		{http.MethodPost, "/api/accounts/1/deposit", `{"amount":"NaN"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/accounts", `{"name":""}`, http.StatusBadRequest},
	}
	for _, tc := range statusCases {
		resp := doJSON(t, srv, tc.method, tc.path, tc.body)
		if resp.StatusCode != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, resp.StatusCode, tc.want)
		}
	}
}

func TestBudgetTransactionAndReportAPI(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPut, "/api/budgets/Travel", `{"limit":"500"}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("set budget status = %d, want 204", resp.StatusCode)
	}

	for _, body := range []string{
		`{"type":"income","category":"Salary","amount":"1000"}`,
		`{"type":"expense","category":"Travel","amount":"120.5","notes":"train"}`,
	} {
		resp := doJSON(t, srv, http.MethodPost, "/api/transactions", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("add transaction status = %d, want 201", resp.StatusCode)
		}
	}
	resp = doJSON(t, srv, http.MethodPost, "/api/transactions", `{"type":"gift","category":"x","amount":"1"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid type status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, srv, http.MethodGet, "/api/budgets", "")
	var budgets []BudgetStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&budgets); err != nil {
		t.Fatalf("decode budgets: %v", err)
	}
	if len(budgets) != 1 || !budgets[0].Remaining.Equal(decimal.RequireFromString("379.5")) {
		t.Fatalf("unexpected budgets: %+v", budgets)
	}

	resp = doJSON(t, srv, http.MethodGet, "/api/transactions?limit=1", "")
	var txs []TransactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&txs); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Category != "Travel" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}

	resp = doJSON(t, srv, http.MethodGet, "/api/transactions?limit=zero", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid limit status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, srv, http.MethodGet, "/api/report", "")
	var report ReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.CurrentBalance.Equal(decimal.RequireFromString("879.5")) {
		t.Fatalf("current balance = %s, want 879.5", report.CurrentBalance)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	status, body := get(t, srv, "/health")
	if status != http.StatusOK || body != "Ledger service is healthy!" {
		t.Fatalf("health = %d %q", status, body)
	}
}
