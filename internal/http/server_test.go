package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"monetra/internal/core"
	"monetra/internal/ledger"
	"monetra/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	l, err := ledger.New(context.Background(), memory.New(), nil, nil)
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	return NewServer(":0", l, nil, 5)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func createEntry(t *testing.T, srv *Server, section, name, amount string) core.SubEntry {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"amount":%q}`, name, amount)
	rr := doJSON(t, srv, http.MethodPost, "/api/sections/"+section+"/entries", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create entry status=%d body=%s", rr.Code, rr.Body.String())
	}
	var entry core.SubEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode created entry: %v", err)
	}
	return entry
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateEntryAndSectionView(t *testing.T) {
	srv := newTestServer(t)
	entry := createEntry(t, srv, "cash", "Wallet", "50.00")
	if entry.ID == "" || entry.Name != "Wallet" || entry.Amount.Cents != 5000 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/sections/cash", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("section view status=%d", rr.Code)
	}
	var view sectionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode section view: %v", err)
	}
	if view.Label != "Cash" || view.TotalCents != 5000 || len(view.Entries) != 1 {
		t.Fatalf("unexpected section view: %+v", view)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	srv := newTestServer(t)

	// Unknown section in the path
	rr := doJSON(t, srv, http.MethodPost, "/api/sections/crypto/entries", `{"name":"X"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown section: expected 404, got %d", rr.Code)
	}

	// Empty name
	rr = doJSON(t, srv, http.MethodPost, "/api/sections/cash/entries", `{"name":"  "}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty name: expected 422, got %d", rr.Code)
	}

	// Malformed body
	rr = doJSON(t, srv, http.MethodPost, "/api/sections/cash/entries", `{`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad body: expected 400, got %d", rr.Code)
	}
}

func TestEditEntryUnknownIDIsNoOp(t *testing.T) {
	srv := newTestServer(t)
	createEntry(t, srv, "bank", "Checking", "10.00")

	rr := doJSON(t, srv, http.MethodPut, "/api/sections/bank/entries/does-not-exist", `{"name":"New","amount":"1.00"}`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("edit unknown id: expected 204, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/sections/bank", "")
	var view sectionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Entries[0].Name != "Checking" || view.TotalCents != 1000 {
		t.Fatalf("no-op edit changed state: %+v", view)
	}
}

func TestDeleteEntry(t *testing.T) {
	srv := newTestServer(t)
	entry := createEntry(t, srv, "mobile", "bKash", "25.00")

	rr := doJSON(t, srv, http.MethodDelete, "/api/sections/mobile/entries/"+entry.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/sections/mobile", "")
	var view sectionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Entries) != 0 || view.TotalCents != 0 {
		t.Fatalf("entry not deleted: %+v", view)
	}
}

func TestAddSpendAndDashboard(t *testing.T) {
	srv := newTestServer(t)
	entry := createEntry(t, srv, "cash", "Wallet", "")

	body := fmt.Sprintf(`{"section":"cash","subEntryId":%q,"amount":"100.00","purpose":"Salary"}`, entry.ID)
	rr := doJSON(t, srv, http.MethodPost, "/api/add", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	body = fmt.Sprintf(`{"section":"cash","subEntryId":%q,"amount":"30.00","purpose":"Groceries"}`, entry.ID)
	rr = doJSON(t, srv, http.MethodPost, "/api/spend", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("spend: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	var dash dashboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.TotalCents != 7000 || dash.AvailableCents != 7000 {
		t.Errorf("totals = %d/%d, want 7000/7000", dash.TotalCents, dash.AvailableCents)
	}
	if dash.EarnedCents != 10000 || dash.SpentCents != 3000 {
		t.Errorf("earned/spent = %d/%d, want 10000/3000", dash.EarnedCents, dash.SpentCents)
	}
	if len(dash.Recent) != 2 {
		t.Errorf("recent = %d transactions, want 2", len(dash.Recent))
	}
}

func TestSpendInsufficientBalance(t *testing.T) {
	srv := newTestServer(t)
	entry := createEntry(t, srv, "cash", "Wallet", "10.00")

	body := fmt.Sprintf(`{"section":"cash","subEntryId":%q,"amount":"10.01","purpose":"Too much"}`, entry.ID)
	rr := doJSON(t, srv, http.MethodPost, "/api/spend", body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraw: expected 422, got %d", rr.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error != "insufficient balance" {
		t.Errorf("error = %q", resp.Error)
	}

	// Balance untouched and nothing recorded.
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions", "")
	var txs transactionsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if txs.Count != 0 {
		t.Errorf("rejected spend recorded a transaction: %+v", txs)
	}
}

func TestTransfer(t *testing.T) {
	srv := newTestServer(t)
	from := createEntry(t, srv, "bank", "Checking", "100.00")
	to := createEntry(t, srv, "lend", "To Rahim", "")

	body := fmt.Sprintf(`{"fromSection":"bank","fromSubEntry":%q,"toSection":"lend","toSubEntry":%q,"amount":"40.00"}`, from.ID, to.ID)
	rr := doJSON(t, srv, http.MethodPost, "/api/transfer", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("transfer: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var dash dashboardResponse
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	// Lend is excluded from available money.
	if dash.TotalCents != 10000 || dash.AvailableCents != 6000 {
		t.Errorf("totals = %d/%d, want 10000/6000", dash.TotalCents, dash.AvailableCents)
	}
}

func TestTransferSameEntryRejected(t *testing.T) {
	srv := newTestServer(t)
	entry := createEntry(t, srv, "cash", "Wallet", "50.00")

	body := fmt.Sprintf(`{"fromSection":"cash","fromSubEntry":%q,"toSection":"cash","toSubEntry":%q,"amount":"10.00"}`, entry.ID, entry.ID)
	rr := doJSON(t, srv, http.MethodPost, "/api/transfer", body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("same-entry transfer: expected 422, got %d", rr.Code)
	}
}

func TestTransactionsFilters(t *testing.T) {
	srv := newTestServer(t)
	cash := createEntry(t, srv, "cash", "Wallet", "")
	bank := createEntry(t, srv, "bank", "Checking", "")

	add := func(section, id, amount string) {
		t.Helper()
		body := fmt.Sprintf(`{"section":%q,"subEntryId":%q,"amount":%q,"purpose":"x"}`, section, id, amount)
		if rr := doJSON(t, srv, http.MethodPost, "/api/add", body); rr.Code != http.StatusOK {
			t.Fatalf("add status=%d", rr.Code)
		}
	}
	add("cash", cash.ID, "10.00")
	add("bank", bank.ID, "20.00")

	spendBody := fmt.Sprintf(`{"section":"cash","subEntryId":%q,"amount":"5.00","purpose":"y"}`, cash.ID)
	if rr := doJSON(t, srv, http.MethodPost, "/api/spend", spendBody); rr.Code != http.StatusOK {
		t.Fatalf("spend failed")
	}

	cases := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?section=cash", 2},
		{"?type=add", 2},
		{"?section=cash&type=add", 1},
		{"?limit=1", 1},
	}
	for _, tc := range cases {
		rr := doJSON(t, srv, http.MethodGet, "/api/transactions"+tc.query, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("transactions%s status=%d", tc.query, rr.Code)
		}
		var resp transactionsResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Count != tc.want {
			t.Errorf("transactions%s count = %d, want %d", tc.query, resp.Count, tc.want)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/transactions?section=crypto", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad filter: expected 400, got %d", rr.Code)
	}
}

func TestReportJSONAndCSV(t *testing.T) {
	srv := newTestServer(t)
	entry := createEntry(t, srv, "cash", "Wallet", "")
	body := fmt.Sprintf(`{"section":"cash","subEntryId":%q,"amount":"12.34","purpose":"Salary"}`, entry.ID)
	if rr := doJSON(t, srv, http.MethodPost, "/api/add", body); rr.Code != http.StatusOK {
		t.Fatalf("add failed")
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/report", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d", rr.Code)
	}
	var report reportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Rows) != 1 || report.Rows[0].FromEntry != "Wallet" {
		t.Fatalf("unexpected rows: %+v", report.Rows)
	}
	if report.Totals.EarnedCents != 1234 || report.Totals.Count != 1 {
		t.Errorf("unexpected totals: %+v", report.Totals)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/report?format=csv", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("csv report status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("csv content type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "Wallet") || !strings.Contains(rr.Body.String(), "12.34") {
		t.Errorf("csv body missing row data: %s", rr.Body.String())
	}
}

func TestResetClearsEverything(t *testing.T) {
	srv := newTestServer(t)
	entry := createEntry(t, srv, "cash", "Wallet", "")
	body := fmt.Sprintf(`{"section":"cash","subEntryId":%q,"amount":"10.00","purpose":"x"}`, entry.ID)
	if rr := doJSON(t, srv, http.MethodPost, "/api/add", body); rr.Code != http.StatusOK {
		t.Fatalf("add failed")
	}

	rr := doJSON(t, srv, http.MethodPost, "/api/reset", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("reset: expected 204, got %d", rr.Code)
	}

	var dash dashboardResponse
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.TotalCents != 0 || len(dash.Recent) != 0 {
		t.Errorf("reset left data behind: %+v", dash)
	}
}

func TestMethodChecks(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/add"},
		{http.MethodGet, "/api/spend"},
		{http.MethodGet, "/api/transfer"},
		{http.MethodGet, "/api/reset"},
		{http.MethodPost, "/api/dashboard"},
		{http.MethodPost, "/api/transactions"},
		{http.MethodPost, "/api/report"},
		{http.MethodPost, "/api/sections/cash"},
	}
	for _, tc := range cases {
		rr := doJSON(t, srv, tc.method, tc.path, "")
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tc.method, tc.path, rr.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
