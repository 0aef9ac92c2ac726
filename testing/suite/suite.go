package suite

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	// hard kill the container after this many seconds even if cleanup
	// never runs
	containerLifetime = 120

	maxWait = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite runs a throwaway redis container for the room and session
// repository tests and hands out a client pointed at it. The database is
// flushed before the test and the container is purged afterwards.
type Suite struct {
	*testing.T

	Storage *redis.Client
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWait)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	pool.MaxWait = maxWait

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

	_ = resource.Expire(containerLifetime) // never returns an error

	t.Cleanup(func() {
		t.Helper()

		if purgeErr := pool.Purge(resource); purgeErr != nil {
			t.Fatalf("could not purge redis container: %v", purgeErr)
		}
	})

	storage := connect(ctx, t, pool, resource.GetHostPort(redisPort))

	return ctx, &Suite{
		T:       t,
		Storage: storage,
	}
}

// connect retries the ping because the container may still be booting when
// the port is first published.
func connect(ctx context.Context, t *testing.T, pool *dockertest.Pool, addr string) *redis.Client {
	t.Helper()

	var storage *redis.Client
	if err := pool.Retry(func() error {
		storage = redis.NewClient(&redis.Options{Addr: addr})
		return storage.Ping(ctx).Err()
	}); err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}

	if err := storage.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush redis: %v", err)
	}

	return storage
}
