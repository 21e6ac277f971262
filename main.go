package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting ATM Banking API...")

	store := NewStore(cfg.DataFile)
	atm, err := NewATM(cfg, store)
	if err != nil {
		log.Fatalf("Failed to load state from %s: %v", cfg.DataFile, err)
	}
	log.Printf("State loaded from %s", cfg.DataFile)

	api := NewAPI(atm)
	loggedRouter := loggingMiddleware(newRouter(api))

	log.Printf("Server starting on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, loggedRouter); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func newRouter(api *API) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", api.HealthHandler).Methods("GET")
	r.HandleFunc("/stats", api.StatsHandler).Methods("GET")

	r.HandleFunc("/register", api.RegisterHandler).Methods("POST")
	r.HandleFunc("/login", api.LoginHandler).Methods("POST")
	r.HandleFunc("/logout", api.LogoutHandler).Methods("POST")

	r.HandleFunc("/balance", api.BalanceHandler).Methods("GET")
	r.HandleFunc("/deposits", api.DepositHandler).Methods("POST")
	r.HandleFunc("/withdrawals", api.WithdrawHandler).Methods("POST")

	r.HandleFunc("/transfers", api.ProposeTransferHandler).Methods("POST")
	r.HandleFunc("/transfers/confirm", api.ConfirmTransferHandler).Methods("POST")

	r.HandleFunc("/transactions", api.HistoryHandler).Methods("GET")
	r.HandleFunc("/accounts", api.OpenAccountHandler).Methods("POST")
	r.HandleFunc("/accounts", api.ListAccountsHandler).Methods("GET")

	r.HandleFunc("/profile", api.UpdateProfileHandler).Methods("PUT")
	r.HandleFunc("/pin", api.ChangePinHandler).Methods("POST")
	r.HandleFunc("/password", api.ChangePasswordHandler).Methods("POST")

	return r
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("--> %s %s %s", r.Method, r.RequestURI, r.Proto)
		next.ServeHTTP(w, r)
		log.Printf("<-- %s %s (%v)", r.Method, r.RequestURI, time.Since(start))
	})
}
