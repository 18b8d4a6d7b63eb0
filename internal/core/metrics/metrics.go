package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionTransitions tracks wallet session state changes
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artbid_session_transitions_total",
			Help: "Total number of wallet session transitions",
		},
		[]string{"from", "to"},
	)

	// WalletCallsTotal tracks wallet provider calls per method
	WalletCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artbid_wallet_calls_total",
			Help: "Total number of wallet provider calls",
		},
		[]string{"provider", "method"},
	)

	// WalletErrorsTotal tracks wallet provider errors per method
	WalletErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artbid_wallet_errors_total",
			Help: "Total number of wallet provider errors",
		},
		[]string{"provider", "method"},
	)

	// WalletLatency tracks wallet provider call latency
	WalletLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artbid_wallet_latency_seconds",
			Help:    "Wallet provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)

	// AuctionRefreshes tracks auction list refresh outcomes
	AuctionRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artbid_auction_refresh_total",
			Help: "Total number of auction list reads",
		},
		[]string{"result"},
	)

	// AuctionRefreshLatency tracks the duration of auction list reads
	AuctionRefreshLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artbid_auction_refresh_latency_seconds",
			Help:    "Auction list read latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ActiveAuctions tracks the size of the mirrored auction list
	ActiveAuctions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "artbid_active_auctions",
			Help: "Number of active auctions in the local mirror",
		},
	)

	// BidsTotal tracks bid submissions by result kind
	BidsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artbid_bids_total",
			Help: "Total number of bid submissions",
		},
		[]string{"result"},
	)
)
