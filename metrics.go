package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atm_transactions_total",
		Help: "Ledger transactions recorded, labeled by kind",
	}, []string{"kind"})

	authFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atm_auth_failures_total",
		Help: "Failed authentication attempts",
	})

	lockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atm_lockouts_total",
		Help: "Authentication attempts rejected due to active lockout",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "atm_active_sessions",
		Help: "Sessions currently registered",
	})

	persistenceErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atm_persistence_errors_total",
		Help: "Snapshot writes that failed, leaving memory and disk diverged",
	})
)
