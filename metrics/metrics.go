// Package metrics defines the Prometheus collectors of the exchange.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stackpop/mocktioneer/core"
	"github.com/stackpop/mocktioneer/verification"
)

const namespace = "mocktioneer"

const (
	routeLabel   = "route"
	statusLabel  = "status"
	resultLabel  = "result"
	outcomeLabel = "outcome"
	kindLabel    = "kind"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics holds every collector on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestsTimer    *prometheus.HistogramVec
	requestsRejected prometheus.Counter

	mediationBids          prometheus.Counter
	mediationFloorRejected prometheus.Counter
	mediationWinners       *prometheus.CounterVec
	mediationErrors        *prometheus.CounterVec

	synthesizedBids prometheus.Counter
	apsSlots        *prometheus.CounterVec

	keySetLookups    *prometheus.CounterVec
	keySetFetches    *prometheus.CounterVec
	keySetFetchTimer prometheus.Histogram

	signatureOutcomes *prometheus.CounterVec
}

var requestBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

var fetchBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{Registry: registry}

	m.requests = newCounter(registry, "requests",
		"Count of HTTP requests by route and status code.",
		[]string{routeLabel, statusLabel})
	m.requestsTimer = newHistogramVec(registry, "request_time_seconds",
		"Seconds to serve an HTTP request by route.",
		[]string{routeLabel}, requestBuckets)
	m.requestsRejected = newCounterWithoutLabels(registry, "requests_rejected",
		"Count of requests rejected because every worker was busy.")

	m.mediationBids = newCounterWithoutLabels(registry, "mediation_bids",
		"Count of bids considered by mediation.")
	m.mediationFloorRejected = newCounterWithoutLabels(registry, "mediation_floor_rejected",
		"Count of mediation bids below the price floor.")
	m.mediationWinners = newCounter(registry, "mediation_winners",
		"Count of impressions won in mediation by bidder.",
		[]string{"bidder"})
	m.mediationErrors = newCounter(registry, "mediation_errors",
		"Count of mediation calls that failed price resolution by kind.",
		[]string{kindLabel})

	m.synthesizedBids = newCounterWithoutLabels(registry, "synthesized_bids",
		"Count of bids synthesized for OpenRTB auctions.")
	m.apsSlots = newCounter(registry, "aps_slots",
		"Count of APS slots by result.",
		[]string{resultLabel})

	m.keySetLookups = newCounter(registry, "keyset_lookups",
		"Count of key-set cache lookups by result.",
		[]string{resultLabel})
	m.keySetFetches = newCounter(registry, "keyset_fetches",
		"Count of key-set fetches by outcome.",
		[]string{outcomeLabel})
	m.keySetFetchTimer = newHistogram(registry, "keyset_fetch_time_seconds",
		"Seconds to fetch and parse a key set.", fetchBuckets)

	m.signatureOutcomes = newCounter(registry, "signature_outcomes",
		"Count of request signature checks by outcome.",
		[]string{statusLabel})

	return m
}

func newCounter(registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newCounterWithoutLabels(registry *prometheus.Registry, name, help string) prometheus.Counter {
	opts := prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounter(opts)
	registry.MustRegister(counter)
	return counter
}

func newHistogramVec(registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func newHistogram(registry *prometheus.Registry, name, help string, buckets []float64) prometheus.Histogram {
	opts := prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogram(opts)
	registry.MustRegister(histogram)
	return histogram
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(route string, status int, duration time.Duration) {
	m.requests.With(prometheus.Labels{
		routeLabel:  route,
		statusLabel: strconv.Itoa(status),
	}).Inc()
	m.requestsTimer.With(prometheus.Labels{routeLabel: route}).Observe(duration.Seconds())
}

func (m *Metrics) RecordRejected() {
	m.requestsRejected.Inc()
}

func (m *Metrics) RecordMediation(result *core.MediationResult) {
	m.mediationBids.Add(float64(result.BidsConsidered))
	m.mediationFloorRejected.Add(float64(result.FloorRejected))
	for _, winner := range result.Winners {
		m.mediationWinners.With(prometheus.Labels{"bidder": winner.Bidder}).Inc()
	}
}

func (m *Metrics) RecordMediationError(kind core.PriceResolutionKind) {
	m.mediationErrors.With(prometheus.Labels{kindLabel: kind.String()}).Inc()
}

func (m *Metrics) RecordSynthesizedBids(count int) {
	m.synthesizedBids.Add(float64(count))
}

// RecordAPSSlots counts filled slots and slots skipped for having no standard size.
func (m *Metrics) RecordAPSSlots(requested, filled int) {
	m.apsSlots.With(prometheus.Labels{resultLabel: "filled"}).Add(float64(filled))
	m.apsSlots.With(prometheus.Labels{resultLabel: "skipped"}).Add(float64(requested - filled))
}

func (m *Metrics) RecordSignature(outcome verification.SignatureOutcome) {
	m.signatureOutcomes.With(prometheus.Labels{statusLabel: string(outcome.Status)}).Inc()
}

// KeySetLookup implements verification.CacheObserver.
func (m *Metrics) KeySetLookup(_ string, result verification.CacheResult) {
	m.keySetLookups.With(prometheus.Labels{resultLabel: string(result)}).Inc()
}

// KeySetFetch implements verification.CacheObserver.
func (m *Metrics) KeySetFetch(_ string, duration time.Duration, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.keySetFetches.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
	m.keySetFetchTimer.Observe(duration.Seconds())
}

var _ verification.CacheObserver = (*Metrics)(nil)
