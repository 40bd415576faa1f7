package container

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-accounts/config"
	repo "github.com/oksasatya/user-accounts/internal/domain/repository"
	"github.com/oksasatya/user-accounts/pkg/helpers"
)

// AccountStore is a repository that can also report its health.
type AccountStore interface {
	repo.AccountRepository
	Ping(ctx context.Context) error
}

// Container holds the infrastructure built once at startup. It is passed explicitly
// to the router so modules can wire their dependencies from it.
// Redis and Publisher are nil when not configured.
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Store     AccountStore
	Redis     *redis.Client
	Publisher *helpers.RabbitPublisher
}
