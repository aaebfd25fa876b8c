package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeremyjsx/creativelab/internal/cache"
	"github.com/jeremyjsx/creativelab/internal/config"
	"github.com/jeremyjsx/creativelab/internal/events"
	"github.com/jeremyjsx/creativelab/internal/routes"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const invalidateTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required")
		os.Exit(1)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	if err := events.DeclareExchange(ch); err != nil {
		logger.Error("failed to declare exchange", "error", err)
		os.Exit(1)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		logger.Error("failed to set prefetch", "error", err)
		os.Exit(1)
	}

	newsletter, err := consume(ch, events.QueueNewsletter, events.RoutingKeyPostPublished, "newsletter-worker")
	if err != nil {
		logger.Error("failed to consume newsletter queue", "error", err)
		os.Exit(1)
	}

	var (
		invalidations <-chan amqp.Delivery
		pages         cache.Invalidator
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		pages = cache.NewPageCache(rdb, cfg.CacheTTL)
		invalidations, err = consume(ch, events.QueueCacheInvalidation, events.RoutingKeyRoutesInvalidated, "cache-worker")
		if err != nil {
			logger.Error("failed to consume invalidation queue", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("REDIS_ADDR not set, route invalidations are left queued")
	}

	logger.Info("worker started", "newsletter_queue", events.QueueNewsletter, "cache_queue_enabled", invalidations != nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			return
		case d, ok := <-newsletter:
			if !ok {
				logger.Warn("newsletter delivery channel closed")
				return
			}
			handlePostPublished(logger, d)
		case d, ok := <-invalidations:
			if !ok {
				logger.Warn("invalidation delivery channel closed")
				return
			}
			handleRoutesInvalidated(ctx, logger, pages, d)
		}
	}
}

// consume declares a durable queue, binds it to the site exchange and starts
// a manual-ack consumer on it.
func consume(ch *amqp.Channel, queue, key, consumer string) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", queue, err)
	}
	if err := ch.QueueBind(q.Name, key, events.ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind %s: %w", queue, err)
	}
	deliveries, err := ch.Consume(q.Name, consumer, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", queue, err)
	}
	return deliveries, nil
}

func handleRoutesInvalidated(ctx context.Context, logger *slog.Logger, pages cache.Invalidator, d amqp.Delivery) {
	var e events.RoutesInvalidated
	if err := json.Unmarshal(d.Body, &e); err != nil {
		logger.Error("invalid event body", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if e.Type != events.TypeRoutesInvalidated {
		logger.Debug("ignoring event type", "type", e.Type)
		_ = d.Ack(false)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, invalidateTimeout)
	defer cancel()
	if err := pages.Invalidate(ctx, routes.FromStrings(e.Routes)); err != nil {
		logger.Error("route invalidation failed, requeueing", "routes", e.Routes, "error", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	logger.Info("routes invalidated", "routes", e.Routes)

	if err := d.Ack(false); err != nil {
		logger.Error("failed to ack", "error", err)
	}
}

func handlePostPublished(logger *slog.Logger, d amqp.Delivery) {
	var e events.PostPublished
	if err := json.Unmarshal(d.Body, &e); err != nil {
		logger.Error("invalid event body", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if e.Type != events.TypePostPublished {
		logger.Debug("ignoring event type", "type", e.Type)
		_ = d.Ack(false)
		return
	}
	logger.Info("newsletter queued for post",
		"post_id", e.Payload.PostID,
		"slug", e.Payload.Slug,
		"title", e.Payload.Title,
		"url", e.Payload.URL,
	)

	if err := d.Ack(false); err != nil {
		logger.Error("failed to ack", "error", err)
	}
}
