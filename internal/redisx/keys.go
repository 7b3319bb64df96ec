package redisx

import "time"

const (
	// Cache order status: order_status:{user_id}:{order_id} -> status string.
	// The user id is part of the key so a cache hit never crosses owners.
	KeyOrderStatus = "order_status:%d:%d"

	// Cache product detail by slug: product:{slug} -> product JSON
	KeyProductDetail = "product:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache   = 5 * time.Minute
	TTLProductDetail = 5 * time.Minute
	TTLDedup         = 48 * time.Hour
)
