package middleware

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Idempotency headers
const (
	CorrelationIDHeader    = "X-Correlation-ID"
	IdempotentReplayHeader = "X-Idempotent-Replay"
)

type cachedResponse struct {
	status int
	body   []byte
}

// IdempotencyMiddleware provides idempotency for POST/PATCH/PUT requests using X-Correlation-ID.
// A repeated correlation ID from the same user within the TTL gets the stored
// response back without running the handler again. Only 2xx responses are stored.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPatch && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get(CorrelationIDHeader)
		if correlationID == "" {
			return c.Next()
		}

		key := idempotencyKey(GetUserID(c), correlationID)
		ctx := c.UserContext()

		if cached, err := load(ctx, redisClient, key); err == nil {
			c.Set(IdempotentReplayHeader, "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(cached.status).Send(cached.body)
		} else if err != redis.Nil {
			log.Printf("[Idempotency] Lookup failed for %s: %v", key, err)
		}

		if err := c.Next(); err != nil {
			return err
		}

		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 300 {
			body := c.Response().Body()
			if len(body) > 0 {
				storeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				pipe := redisClient.TxPipeline()
				pipe.HSet(storeCtx, key, "status", statusCode, "body", body)
				pipe.Expire(storeCtx, key, ttl)
				if _, err := pipe.Exec(storeCtx); err != nil {
					log.Printf("[Idempotency] Failed to store response for %s: %v", key, err)
				}
			}
		}

		return nil
	}
}

func idempotencyKey(userID, correlationID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("idempotency:%s:%s", userID, correlationID)
}

func load(ctx context.Context, redisClient *redis.Client, key string) (*cachedResponse, error) {
	values, err := redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	body, ok := values["body"]
	if !ok {
		return nil, redis.Nil
	}
	status, err := strconv.Atoi(values["status"])
	if err != nil {
		status = fiber.StatusOK
	}
	return &cachedResponse{status: status, body: []byte(body)}, nil
}
