package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeatureEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flagpost_feature_evaluations_total",
			Help: "Total number of feature decisions by result and deciding gate (count)",
		},
		[]string{"result", "gate"},
	)

	AlertEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flagpost_alert_evaluations_total",
			Help: "Total number of alert visibility decisions (count)",
		},
		[]string{"result"},
	)

	EvaluationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flagpost_evaluation_duration_ms",
			Help:    "Duration of an evaluation request in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"operation", "status"},
	)

	ResultCacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flagpost_result_cache_requests_total",
			Help: "Total number of result cache lookups (count)",
		},
		[]string{"result"},
	)

	ResultCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flagpost_result_cache_size",
			Help: "Approximate number of cached feature results (count)",
		},
	)

	ActiveFeatures = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flagpost_active_features",
			Help: "Number of enabled feature toggles inside their activity window (count)",
		},
	)

	CatalogMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flagpost_catalog_mutations_total",
			Help: "Total number of catalog writes via the management API (count)",
		},
		[]string{"entity", "action", "status"},
	)

	CatalogEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flagpost_catalog_events_total",
			Help: "Total number of catalog update events handled (count)",
		},
		[]string{"entity", "status"},
	)

	DecisionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flagpost_decision_events_total",
			Help: "Total number of decision events by outcome (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"service", "strategy", "reason"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "target"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessageSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_message_size_bytes",
			Help:    "Size of Kafka messages in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"service", "topic", "direction"},
	)

	KafkaConsumerLag = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kafka_consumer_lag",
			Help: "Kafka consumer lag (count)",
		},
		[]string{"service", "topic", "partition"},
	)

	KafkaReadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_read_duration_ms",
			Help:    "Duration of reading messages from Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"service", "database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"service", "database", "operation"},
	)

	DatabaseConnectionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections (count)",
		},
		[]string{"service", "database"},
	)
)

var (
	evaluationOnce     sync.Once
	managementOnce     sync.Once
	brokerOnce         sync.Once
	circuitBreakerOnce sync.Once
	sharedOnce         sync.Once
)

func RegisterEvaluationMetrics() {
	evaluationOnce.Do(func() {
		prometheus.MustRegister(FeatureEvaluationsTotal)
		prometheus.MustRegister(AlertEvaluationsTotal)
		prometheus.MustRegister(EvaluationDuration)
		prometheus.MustRegister(ResultCacheRequestsTotal)
		prometheus.MustRegister(ResultCacheSize)
		prometheus.MustRegister(ActiveFeatures)
		prometheus.MustRegister(CatalogEventsTotal)
		prometheus.MustRegister(DecisionEventsTotal)
		prometheus.MustRegister(FallbackUsageTotal)
	})
	registerShared()
}

func RegisterManagementMetrics() {
	managementOnce.Do(func() {
		prometheus.MustRegister(CatalogMutationsTotal)
	})
	registerShared()
}

func registerShared() {
	sharedOnce.Do(func() {
		prometheus.MustRegister(RateLimitRequestsTotal)
		prometheus.MustRegister(RetryAttemptsTotal)
		prometheus.MustRegister(DatabaseQueriesTotal)
		prometheus.MustRegister(DatabaseQueryDuration)
		prometheus.MustRegister(DatabaseConnectionsActive)
	})
}

func RegisterBrokerMetrics() {
	brokerOnce.Do(func() {
		prometheus.MustRegister(DLQMessagesTotal)
		prometheus.MustRegister(KafkaMessagesReadTotal)
		prometheus.MustRegister(KafkaMessagesWrittenTotal)
		prometheus.MustRegister(KafkaMessageSizeBytes)
		prometheus.MustRegister(KafkaConsumerLag)
		prometheus.MustRegister(KafkaReadDuration)
		prometheus.MustRegister(KafkaWriteDuration)
	})
}

func RegisterCircuitBreakerMetrics() {
	circuitBreakerOnce.Do(func() {
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
	})
}

func IncFeatureEvaluation(enabled bool, gate string) {
	if gate == "" {
		gate = "none"
	}
	FeatureEvaluationsTotal.WithLabelValues(resultLabel(enabled), gate).Inc()
}

func AddAlertEvaluations(visible, hidden int) {
	AlertEvaluationsTotal.WithLabelValues("visible").Add(float64(visible))
	AlertEvaluationsTotal.WithLabelValues("hidden").Add(float64(hidden))
}

func ObserveEvaluationDuration(operation, status string, duration time.Duration) {
	EvaluationDuration.WithLabelValues(operation, status).Observe(float64(duration.Microseconds()) / 1000)
}

func IncResultCache(hit bool) {
	if hit {
		ResultCacheRequestsTotal.WithLabelValues("hit").Inc()
		return
	}
	ResultCacheRequestsTotal.WithLabelValues("miss").Inc()
}

func SetResultCacheSize(size int) {
	ResultCacheSize.Set(float64(size))
}

func SetActiveFeatures(count int) {
	ActiveFeatures.Set(float64(count))
}

func IncCatalogMutation(entity, action, status string) {
	CatalogMutationsTotal.WithLabelValues(entity, action, status).Inc()
}

func IncCatalogEvent(entity, status string) {
	CatalogEventsTotal.WithLabelValues(entity, status).Inc()
}

func IncDecisionEvent(status string) {
	DecisionEventsTotal.WithLabelValues(status).Inc()
}

func AddDecisionEvents(status string, n int) {
	DecisionEventsTotal.WithLabelValues(status).Add(float64(n))
}

func IncFallback(service, strategy, reason string) {
	FallbackUsageTotal.WithLabelValues(service, strategy, reason).Inc()
}

func IncRetryAttempt(service, target string) {
	RetryAttemptsTotal.WithLabelValues(service, target).Inc()
}

func IncKafkaMessagesRead(service, topic string) {
	KafkaMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaMessageSize(service, topic, direction string, sizeBytes int) {
	KafkaMessageSizeBytes.WithLabelValues(service, topic, direction).Observe(float64(sizeBytes))
}

func SetKafkaConsumerLag(service, topic string, partition int, lag int64) {
	KafkaConsumerLag.WithLabelValues(service, topic, fmt.Sprintf("%d", partition)).Set(float64(lag))
}

func ObserveKafkaReadDuration(service, topic string, duration time.Duration) {
	KafkaReadDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}

func IncDatabaseQuery(service, database, operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(service, database, operation, status).Inc()
}

func ObserveDatabaseQueryDuration(service, database, operation string, duration time.Duration) {
	DatabaseQueryDuration.WithLabelValues(service, database, operation).Observe(float64(duration.Milliseconds()))
}

func SetDatabaseConnectionsActive(service, database string, count int) {
	DatabaseConnectionsActive.WithLabelValues(service, database).Set(float64(count))
}

func resultLabel(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}
