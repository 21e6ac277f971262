package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	atm := newTestATM(t)
	srv := httptest.NewServer(newRouter(NewAPI(atm)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set(sessionHeader, token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestRegisterLoginWithdrawFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, "POST", srv.URL+"/register", "", RegisterRequest{
		Name: "A", PIN: "1234", Password: "secret1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status=%d body=%v", resp.StatusCode, body)
	}
	userID, _ := body["user_id"].(string)
	if userID == "" {
		t.Fatalf("no user_id in response: %v", body)
	}

	resp, body = doJSON(t, "POST", srv.URL+"/login", "", LoginRequest{
		UserID: userID, PIN: "1234", Password: "secret1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d body=%v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("no session token: %v", body)
	}

	resp, _ = doJSON(t, "POST", srv.URL+"/deposits", token, AmountRequest{
		AccountType: "checking", Amount: d(4500),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deposit status=%d", resp.StatusCode)
	}

	// over the daily limit: rejected with a policy status, balance untouched
	resp, _ = doJSON(t, "POST", srv.URL+"/withdrawals", token, AmountRequest{
		AccountType: "checking", Amount: d(2000),
	})
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("withdrawal status=%d want=402", resp.StatusCode)
	}

	resp, body = doJSON(t, "GET", srv.URL+"/balance", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance status=%d", resp.StatusCode)
	}
	balances, _ := body["balances"].(map[string]interface{})
	if balances["checking"] != "4500" {
		t.Fatalf("checking balance=%v want=4500", balances["checking"])
	}
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/balance", "/transactions"} {
		resp, _ := doJSON(t, "GET", srv.URL+path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s status=%d want=401", path, resp.StatusCode)
		}
	}

	resp, _ := doJSON(t, "GET", srv.URL+"/balance", "bogus-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bogus token status=%d want=401", resp.StatusCode)
	}
}

func TestRegisterValidationOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "POST", srv.URL+"/register", "", RegisterRequest{
		Name: "A", PIN: "12", Password: "secret1",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", resp.StatusCode)
	}
}

func TestLockoutOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, "POST", srv.URL+"/register", "", RegisterRequest{
		Name: "A", PIN: "1234", Password: "secret1",
	})
	userID, _ := body["user_id"].(string)

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, "POST", srv.URL+"/login", "", LoginRequest{UserID: userID, PIN: "0000", Password: "secret1"})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d status=%d want=401", i, resp.StatusCode)
		}
	}

	resp, _ := doJSON(t, "POST", srv.URL+"/login", "", LoginRequest{UserID: userID, PIN: "1234", Password: "secret1"})
	if resp.StatusCode != http.StatusLocked {
		t.Fatalf("status=%d want=423", resp.StatusCode)
	}
}

func TestStatsAndHealthPublic(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, "GET", srv.URL+"/stats", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status=%d", resp.StatusCode)
	}
	if body["status"] != "online" {
		t.Fatalf("stats body=%v", body)
	}

	resp, _ = doJSON(t, "GET", srv.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status=%d", resp.StatusCode)
	}
}
