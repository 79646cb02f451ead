package common

const (
	RedisKeyPosition = "trader:position:%s"

	PriceCacheTTLSeconds = 5
)
