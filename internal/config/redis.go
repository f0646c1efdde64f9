package config

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedisClient builds the client caching the live checked-in counters
// shown on event dashboards.  Connection parameters come from
// REDIS_HOST/REDIS_PORT (or the combined REDIS_ADDR), REDIS_PASSWORD,
// REDIS_DB and REDIS_TLS.  When the server cannot be reached at startup
// the function logs a warning and returns nil; callers degrade by
// reading counters straight from the database.
func NewRedisClient(log *zerolog.Logger) *redis.Client {
	opts := &redis.Options{
		Addr:     redisAddr(),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	if s := os.Getenv("REDIS_DB"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			opts.DB = n
		}
	}
	if s := os.Getenv("REDIS_TLS"); strings.EqualFold(s, "true") || s == "1" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unreachable, checked-in counters served from the database")
		_ = client.Close()
		return nil
	}
	return client
}

// redisAddr resolves the server address, preferring the host/port pair
// over the combined REDIS_ADDR form.
func redisAddr() string {
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		return host + ":" + port
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}
