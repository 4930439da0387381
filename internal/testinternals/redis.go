package testinternals

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// Redis is a throwaway redis container for session tests.
type Redis struct {
	Port string

	dockerPool *dockertest.Pool
	resource   *dockertest.Resource
}

func StartRedis(ctx context.Context) (*Redis, error) {
	dockerPool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("create dockertest pool: %w", err)
	}
	if err := dockerPool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("ping docker: %w", err)
	}
	dockerPool.MaxWait = 60 * time.Second

	resource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return nil, fmt.Errorf("run redis: %w", err)
	}

	r := &Redis{
		Port:       resource.GetPort("6379/tcp"),
		dockerPool: dockerPool,
		resource:   resource,
	}
	if err := resource.Expire(300); err != nil {
		log.Printf("set redis container expiry: %s", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: net.JoinHostPort("localhost", r.Port)})
	defer func() {
		_ = rdb.Close()
	}()
	if err := dockerPool.Retry(func() error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		r.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return r, nil
}

func (r *Redis) Close() {
	if err := r.dockerPool.Purge(r.resource); err != nil {
		log.Printf("redis teardown: %s", err)
	}
}
