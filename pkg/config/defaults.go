package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "carbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// How long a reserve/cancel call waits for the per-vehicle lock
	// before failing with BUSY.
	DefaultLockWaitTimeout = 3 * time.Second

	// Matches the catalogue page size of the storefront.
	DefaultSearchPageSize = 12

	DefaultPaginationLimit = 100

	DefaultKafkaTopic = "reservation-events"

	DefaultRedisCacheTTL = 30 * time.Second
)
