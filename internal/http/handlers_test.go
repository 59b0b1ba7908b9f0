package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"budgetledger/internal/backend"
	"budgetledger/internal/identity"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry, err := identity.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { registry.Close() })

	s := NewServer("127.0.0.1:0", registry, backend.NewFactory(nil), backend.Config{
		Type: backend.MemoryBackend,
	})
	t.Cleanup(func() { s.limiter.Shutdown() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func register(t *testing.T, s *Server, username string) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[sessionResponse](t, rec)
	if resp.Token == "" {
		t.Fatal("register returned empty token")
	}
	return resp.Token
}

func addTransaction(t *testing.T, s *Server, token, date, category, subcategory, amount string) int64 {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, map[string]string{
		"date":        date,
		"category":    category,
		"subcategory": subcategory,
		"amount":      amount,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add transaction status %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[transactionCreatedResponse](t, rec).TransactionID
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	register(t, s, "alice")

	t.Run("duplicate username", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
			"username": "alice",
			"password": "hunter2hunter2",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status %d, want 409", rec.Code)
		}
	})

	t.Run("login", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
			"username": "alice",
			"password": "hunter2hunter2",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
		}
		if decodeBody[sessionResponse](t, rec).Username != "alice" {
			t.Fatal("wrong username in login response")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
			"username": "alice",
			"password": "wrong",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status %d, want 401", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
			"username": "nobody",
			"password": "hunter2hunter2",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status %d, want 401", rec.Code)
		}
	})
}

func TestRequiresSession(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/table"},
		{http.MethodGet, "/api/plot"},
		{http.MethodPost, "/api/transactions"},
		{http.MethodDelete, "/api/transactions/1"},
		{http.MethodPut, "/api/table/filter"},
	} {
		rec := doJSON(t, s, tc.method, tc.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "bob")

	cases := []struct {
		name string
		body map[string]string
	}{
		{"bad date", map[string]string{"date": "01-02-2024", "category": "Food", "subcategory": "Groceries", "amount": "-20.00"}},
		{"zero amount", map[string]string{"date": "2024/01/02", "category": "Food", "subcategory": "Groceries", "amount": "0"}},
		{"malformed amount", map[string]string{"date": "2024/01/02", "category": "Food", "subcategory": "Groceries", "amount": "abc"}},
		{"empty category", map[string]string{"date": "2024/01/02", "category": "", "subcategory": "Groceries", "amount": "-20.00"}},
		{"empty subcategory", map[string]string{"date": "2024/01/02", "category": "Food", "subcategory": "", "amount": "-20.00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status %d, want 422: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTableView(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "carol")

	addTransaction(t, s, token, "2024/01/01", "Food", "Groceries", "-20.00")
	addTransaction(t, s, token, "2024/01/05", "Pay", "Salary", "2000.00")

	rec := doJSON(t, s, http.MethodGet, "/api/table", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	table := decodeBody[tableResponse](t, rec)

	if table.Title != "All Transactions" {
		t.Fatalf("title %q", table.Title)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows", len(table.Rows))
	}
	if table.Rows[0].BalanceCents != -2000 || table.Rows[1].BalanceCents != 198000 {
		t.Fatalf("balances %d, %d", table.Rows[0].BalanceCents, table.Rows[1].BalanceCents)
	}
	if table.Rows[0].Date != "2024/01/01" {
		t.Fatalf("date %q", table.Rows[0].Date)
	}
}

func TestTableFilterLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "dave")

	addTransaction(t, s, token, "2024/01/01", "Food", "Groceries", "-20.00")
	addTransaction(t, s, token, "2024/01/02", "Food", "Dining", "-15.00")
	addTransaction(t, s, token, "2024/01/05", "Pay", "Salary", "2000.00")

	t.Run("category filter", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPut, "/api/table/filter", token, map[string]string{"category": "Food"})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
		}

		table := decodeBody[tableResponse](t, doJSON(t, s, http.MethodGet, "/api/table", token, nil))
		if table.Title != "Food Transactions" {
			t.Fatalf("title %q", table.Title)
		}
		if len(table.Rows) != 2 {
			t.Fatalf("got %d rows", len(table.Rows))
		}
		// Balance restarts within the filtered view.
		if table.Rows[1].BalanceCents != -3500 {
			t.Fatalf("filtered balance %d", table.Rows[1].BalanceCents)
		}
	})

	t.Run("subcategory narrows", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPut, "/api/table/filter", token,
			map[string]string{"category": "Food", "subcategory": "Dining"})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status %d", rec.Code)
		}

		table := decodeBody[tableResponse](t, doJSON(t, s, http.MethodGet, "/api/table", token, nil))
		if table.Title != "Food - Dining Transactions" {
			t.Fatalf("title %q", table.Title)
		}
		if len(table.Rows) != 1 || table.Rows[0].Subcategory != "Dining" {
			t.Fatalf("rows %+v", table.Rows)
		}
	})

	t.Run("empty category rejected", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPut, "/api/table/filter", token,
			map[string]string{"subcategory": "Dining"})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status %d, want 422", rec.Code)
		}
	})

	t.Run("clear", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodDelete, "/api/table/filter", token, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status %d", rec.Code)
		}

		table := decodeBody[tableResponse](t, doJSON(t, s, http.MethodGet, "/api/table", token, nil))
		if table.Title != "All Transactions" || len(table.Rows) != 3 {
			t.Fatalf("title %q, %d rows", table.Title, len(table.Rows))
		}
	})
}

func TestPlotView(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "erin")

	addTransaction(t, s, token, "2024/01/01", "Food", "Groceries", "-20.00")
	addTransaction(t, s, token, "2024/01/05", "Pay", "Salary", "2000.00")

	rec := doJSON(t, s, http.MethodGet, "/api/plot", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	plot := decodeBody[plotResponse](t, rec)

	if plot.Empty {
		t.Fatal("plot should not be empty")
	}
	if len(plot.Points) != 2 {
		t.Fatalf("got %d points", len(plot.Points))
	}
	if plot.AmountRange == nil || plot.AmountRange.Start != -222 || plot.AmountRange.End != 2202 {
		t.Fatalf("amount range %+v", plot.AmountRange)
	}
	if plot.DateRange == nil || plot.DateRange.Start >= plot.DateRange.End {
		t.Fatalf("date range %+v", plot.DateRange)
	}
}

func TestPlotViewEmptyFilter(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "frank")

	addTransaction(t, s, token, "2024/01/01", "Food", "Groceries", "-20.00")

	rec := doJSON(t, s, http.MethodPut, "/api/plot/filter", token, map[string]string{"category": "Rent"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}

	plot := decodeBody[plotResponse](t, doJSON(t, s, http.MethodGet, "/api/plot", token, nil))
	if !plot.Empty {
		t.Fatal("expected empty plot")
	}
	if plot.Title != "Rent Transactions" {
		t.Fatalf("title %q", plot.Title)
	}
	if plot.Points != nil || plot.DateRange != nil || plot.AmountRange != nil {
		t.Fatal("empty plot must carry no points or ranges")
	}

	// The table filter stays untouched.
	table := decodeBody[tableResponse](t, doJSON(t, s, http.MethodGet, "/api/table", token, nil))
	if table.Title != "All Transactions" || len(table.Rows) != 1 {
		t.Fatalf("table leaked plot filter: title %q, %d rows", table.Title, len(table.Rows))
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "grace")

	id := addTransaction(t, s, token, "2024/01/01", "Food", "Groceries", "-20.00")

	rec := doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", id), token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	t.Run("gone from views", func(t *testing.T) {
		table := decodeBody[tableResponse](t, doJSON(t, s, http.MethodGet, "/api/table", token, nil))
		if len(table.Rows) != 0 {
			t.Fatalf("got %d rows after delete", len(table.Rows))
		}
	})

	t.Run("missing id", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodDelete, "/api/transactions/9999", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status %d, want 404", rec.Code)
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodDelete, "/api/transactions/abc", token, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := doJSON(t, s, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz status %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "heidi")

	if rec := doJSON(t, s, http.MethodPost, "/api/logout", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout status %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/api/table", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d after logout, want 401", rec.Code)
	}
}
