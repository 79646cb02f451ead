package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-crypto-trader/internal/entity"
	"golang-crypto-trader/pkg/common"
	redisPkg "golang-crypto-trader/pkg/redis"

	"github.com/redis/go-redis/v9"
)

// PositionRepository persists per-asset position snapshots so an open
// position survives a process restart.
type PositionRepository interface {
	Save(ctx context.Context, position *entity.Position) error
	Load(ctx context.Context, symbol string) (*entity.Position, error)
}

type positionRepository struct {
	redisClient *redisPkg.Client
}

// NewPositionRepository creates a Redis-backed position repository.
func NewPositionRepository(redisClient *redisPkg.Client) PositionRepository {
	return &positionRepository{redisClient: redisClient}
}

func (r *positionRepository) Save(ctx context.Context, position *entity.Position) error {
	data, err := json.Marshal(position)
	if err != nil {
		return fmt.Errorf("failed to marshal position: %w", err)
	}
	key := fmt.Sprintf(common.RedisKeyPosition, position.Symbol)
	if err := r.redisClient.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// Load returns the stored position for the symbol, or nil when no snapshot
// exists.
func (r *positionRepository) Load(ctx context.Context, symbol string) (*entity.Position, error) {
	key := fmt.Sprintf(common.RedisKeyPosition, symbol)
	data, err := r.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load position: %w", err)
	}

	var position entity.Position
	if err := json.Unmarshal([]byte(data), &position); err != nil {
		return nil, fmt.Errorf("failed to unmarshal position: %w", err)
	}
	return &position, nil
}
