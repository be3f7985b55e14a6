package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/stay-service/internal/auth"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

const (
	// IdempotencyKeyHeader carries the client-chosen key for retry-safe writes.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks a response served from the idempotency store.
	IdempotentReplayHeader = "Idempotent-Replayed"

	idempotencyKeyPrefix = "idempotency:"
	maxIdempotencyKeyLen = 255
)

// IdempotencyStatus is the lifecycle state of a stored record.
type IdempotencyStatus string

const (
	IdempotencyProcessing IdempotencyStatus = "processing"
	IdempotencyCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord is what gets stored under an idempotency key.
type IdempotencyRecord struct {
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code,omitempty"`
	ResponseBody []byte            `json:"response_body,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RedisClient is the subset of go-redis the idempotency middleware needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig configures Idempotency.
type IdempotencyConfig struct {
	Redis RedisClient
	// TTL applies to completed records.
	TTL time.Duration
	// ProcessingTTL bounds how long a crashed request can hold its key.
	ProcessingTTL time.Duration
	Logger        *zap.Logger
}

// Idempotency replays the first successful response for a repeated Idempotency-Key.
// Keys are scoped per actor. Requests without the header pass through untouched.
// Failed requests release their key so the client can retry.
func Idempotency(cfg IdempotencyConfig) fiber.Handler {
	if cfg.ProcessingTTL <= 0 {
		cfg.ProcessingTTL = 60 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		key := c.Get(IdempotencyKeyHeader)
		if key == "" || cfg.Redis == nil {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return apperrors.NewValidationError("idempotency key too long", map[string]any{"max_length": maxIdempotencyKeyLen})
		}

		actorID := ""
		if actor, ok := auth.ActorFromContext(c); ok {
			actorID = actor.AccountID
		}
		redisKey := idempotencyKeyPrefix + actorID + ":" + key
		requestHash := hashRequest(c, actorID)
		ctx := c.UserContext()

		record := IdempotencyRecord{Status: IdempotencyProcessing, RequestHash: requestHash, CreatedAt: time.Now().UTC()}
		data, err := json.Marshal(record)
		if err != nil {
			return apperrors.NewInternalError(err)
		}

		// A record that expires between SetNX and Get gets one more reservation attempt.
		for attempt := 0; ; attempt++ {
			reserved, err := cfg.Redis.SetNX(ctx, redisKey, data, cfg.ProcessingTTL).Result()
			if err != nil {
				cfg.Logger.Warn("idempotency store unavailable, processing without it", zap.Error(err))
				return c.Next()
			}
			if reserved {
				break
			}
			found, err := replay(c, cfg, redisKey, requestHash)
			if found || err != nil {
				return err
			}
			if attempt > 0 {
				return apperrors.NewConflict("request with this idempotency key is in progress", nil)
			}
		}

		if err := c.Next(); err != nil {
			release(cfg, redisKey)
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusBadRequest {
			release(cfg, redisKey)
			return nil
		}

		record.Status = IdempotencyCompleted
		record.ResponseCode = status
		record.ResponseBody = append([]byte(nil), c.Response().Body()...)
		if data, err = json.Marshal(record); err == nil {
			err = cfg.Redis.Set(context.WithoutCancel(ctx), redisKey, data, cfg.TTL).Err()
		}
		if err != nil {
			cfg.Logger.Warn("failed to store idempotent response", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
}

// replay answers from the stored record. It reports false when the record is gone.
func replay(c *fiber.Ctx, cfg IdempotencyConfig, redisKey, requestHash string) (bool, error) {
	raw, err := cfg.Redis.Get(c.UserContext(), redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return true, apperrors.NewInternalError(err)
	}

	var existing IdempotencyRecord
	if err := json.Unmarshal(raw, &existing); err != nil {
		return true, apperrors.NewInternalError(err)
	}
	if existing.RequestHash != requestHash {
		return true, apperrors.NewDomainError(apperrors.CodeValidation, "idempotency key already used with a different request", fiber.StatusUnprocessableEntity, nil)
	}
	if existing.Status != IdempotencyCompleted {
		return true, apperrors.NewConflict("request with this idempotency key is in progress", nil)
	}

	c.Set(IdempotentReplayHeader, "true")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return true, c.Status(existing.ResponseCode).Send(existing.ResponseBody)
}

func release(cfg IdempotencyConfig, redisKey string) {
	if err := cfg.Redis.Del(context.Background(), redisKey).Err(); err != nil {
		cfg.Logger.Warn("failed to release idempotency key", zap.Error(err))
	}
}

func hashRequest(c *fiber.Ctx, actorID string) string {
	h := sha256.New()
	h.Write([]byte(c.Method()))
	h.Write([]byte(c.Path()))
	h.Write([]byte(actorID))
	h.Write(c.Body())
	return hex.EncodeToString(h.Sum(nil))
}
