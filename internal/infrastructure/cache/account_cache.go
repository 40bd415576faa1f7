package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/user-accounts/internal/application"
	"github.com/oksasatya/user-accounts/pkg/helpers"
)

// AccountCache keeps account views in Redis as JSON under account:view:<id>.
type AccountCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAccountCache(rdb *redis.Client, ttl time.Duration) *AccountCache {
	return &AccountCache{rdb: rdb, ttl: ttl}
}

func viewKey(id int64) string {
	return "account:view:" + strconv.FormatInt(id, 10)
}

func (c *AccountCache) Get(ctx context.Context, id int64) (application.AccountView, bool, error) {
	var v application.AccountView
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, viewKey(id), &v)
	if err != nil || !ok {
		return application.AccountView{}, false, err
	}
	return v, true, nil
}

func (c *AccountCache) Set(ctx context.Context, v application.AccountView) error {
	return helpers.RedisSetJSON(ctx, c.rdb, viewKey(v.ID), v, c.ttl)
}

// Fill caches v unless an entry for its id already exists.
func (c *AccountCache) Fill(ctx context.Context, v application.AccountView) (bool, error) {
	return helpers.RedisSetNXJSON(ctx, c.rdb, viewKey(v.ID), v, c.ttl)
}

func (c *AccountCache) Delete(ctx context.Context, id int64) error {
	return helpers.RedisDel(ctx, c.rdb, viewKey(id))
}

var _ application.ViewCache = (*AccountCache)(nil)
