package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixFeatures    = "features:"
	// Kept outside CacheKeyPrefixFeatures so prefix deletes leave it alone.
	CacheKeyFeatureGeneration = "features-generation"
)

const (
	DefaultMongoDBName        = "flagpost"
	UserProfilesCollection    = "user_profiles"
	DefaultCacheTTLSeconds    = 300
	DatabaseInitTimeout       = 30 * time.Second
	HealthCheckTimeout        = 5 * time.Second
	EventPublishTimeout       = 2 * time.Second
	DecisionEventQueueSize    = 1024
	CatalogQueryTimeout       = 3 * time.Second
	ShutdownTimeout           = 5 * time.Second
	ConsumerFetchErrorBackoff = time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

const (
	ServiceEvaluation = "evaluation-service"
	ServiceManagement = "management-service"
)

const (
	CircuitBreakerCatalog = "postgres-catalog"
	CircuitBreakerCache   = "redis-result-cache"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderActor     = "X-Actor"
)
