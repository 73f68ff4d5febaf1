package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TrendingRequests = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "newspulse", Name: "trending_requests_total", Help: "Number of trending feed requests served."},
	)
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newspulse", Name: "search_requests_total", Help: "Number of article search requests by query kind."},
		[]string{"kind"},
	)
	OAuthLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newspulse", Name: "oauth_logins_total", Help: "Number of identity-provider logins by provider and outcome."},
		[]string{"provider", "outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newspulse", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "newspulse", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(TrendingRequests)
	reg.MustRegister(SearchRequests)
	reg.MustRegister(OAuthLogins)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
