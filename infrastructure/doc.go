// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package. These implementations handle external concerns
// such as storage, HTTP communication, and logging.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: in-process store using go-cache
// - cache/redis: Redis store, safe to share between processes
// - cache/sqlite: SQLite store that survives restarts of a single node
// - http/standard: net/http client with retry logic
// - http/colly: gocolly based client
// - logger/structured: logrus backed logger
//
// Every store implements interfaces.Store, including the SetNX,
// CompareAndDelete and TTL operations the refresh lock relies on.
//
// # Store Example
//
//	store, err := redis.NewRedisCache(config.RedisConfig{Address: "localhost:6379", DB: 8})
//	ok, err := store.SetNX(ctx, "/lock/pages/", []byte(owner), 10*time.Second)
//
// # HTTP Client
//
// The standard client retries transport failures and 5xx responses on GET:
//
//	client := standard.NewStandardHTTPClient(30 * time.Second)
//	resp, err := client.Get(ctx, "https://news.ycombinator.com/",
//	    interfaces.WithCookie("user", token))
//
// # Logger
//
//	logger := structured.NewLogger(structured.Options{Level: "info", Format: "json"})
//	logger.Info("Refreshed page", map[string]interface{}{
//	    "key": "/pages/",
//	})
package infrastructure
