package redisx

import "time"

const (
	// Cache status order: order:status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order:status:%d"

	// Cache hasil autocomplete: product:search:{field}:{term} -> JSON array
	KeyProductSearch = "product:search:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLSearchCache = 30 * time.Second
	TTLDedup       = 48 * time.Hour
)
