package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"example/aoe4-reviewer/app/config"

	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
)

// StartSessionJanitor prunes expired in-memory sessions every interval.
// The caller owns the returned scheduler and should Shutdown it.
func StartSessionJanitor(sessions *MemorySessions, every time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if n := sessions.Prune(); n > 0 {
				log.Printf("[sessions] pruned %d expired sessions", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}

// OpenSessions picks Redis when cfg.RedisURL is set, otherwise an in-memory
// store pruned every pruneEvery. The returned func releases either backend.
func OpenSessions(ctx context.Context, cfg config.SessionConfig, pruneEvery time.Duration) (SessionStore, func(), error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Printf("sessions backend=redis")
		return NewRedisSessions(client, cfg.TTL), func() { _ = client.Close() }, nil
	}

	mem := NewMemorySessions(cfg.TTL)
	sched, err := StartSessionJanitor(mem, pruneEvery)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("sessions backend=memory")
	return mem, func() { _ = sched.Shutdown() }, nil
}
