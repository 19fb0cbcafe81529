// Package suite boots the throwaway Redis instance the repository, scheduler
// and service tests run against. Every call to New starts a fresh container,
// so no test ever sees another game's keys.
package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	// containerTTL is when docker hard-kills a container a failed run leaked
	containerTTL = 120
	bootTimeout  = 2 * time.Minute

	redisImage = "redis"
	redisTag   = "alpine"
	redisPort  = "6379/tcp"
)

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
}

// New starts a disposable Redis container and hands back a client wired to
// it, torn down with the test.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), bootTimeout)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}
	pool.MaxWait = bootTimeout

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}
	_ = resource.Expire(containerTTL) // never returns an error

	t.Cleanup(func() {
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			t.Logf("could not purge redis container: %v", purgeErr)
		}
	})

	client := redis.NewClient(&redis.Options{
		Addr: resource.GetHostPort(redisPort),
	})
	if err = pool.Retry(func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		t.Fatalf("could not reach redis: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	return ctx, &Suite{
		T:       t,
		Logger:  logger,
		Storage: client,
	}
}
