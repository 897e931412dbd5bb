package main

// Order event consumer. Projects order.placed and order.canceled events into
// per-product sales counters in Redis and fans out stock.change audit events.
// Deliveries are deduplicated by AMQP MessageId with a SETNX marker, so a
// redelivered message never double-counts.

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Ahnabu/evo-tech-sub001/internal/dao/redis"
	"github.com/Ahnabu/evo-tech-sub001/internal/mq"
	"github.com/Ahnabu/evo-tech-sub001/pkg/app"
	"github.com/Ahnabu/evo-tech-sub001/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
)

const (
	queueName    = "order.events.projection"
	dedupTTL     = 24 * time.Hour
	handleWindow = 10 * time.Second
)

type projector struct {
	redis  goredis.UniversalClient
	mqPool *mq.Pool
}

func main() {
	cfg := app.BootstrapApp()

	redisClient, err := redis.InitRedis(&cfg.Database.Redis)
	if err != nil {
		logger.Fatal("redis init failed", "err", err)
	}

	mqPool, err := mq.Init(&cfg.MQ)
	if err != nil {
		logger.Fatal("rabbitmq init failed", "err", err)
	}
	defer mqPool.Close()
	if err := mqPool.EnsureBaseTopology(); err != nil {
		logger.Fatal("mq topology init failed", "err", err)
	}

	conn, ch, msgs, err := mq.NewConsumerChannel(
		&cfg.MQ, queueName, "order.*", mq.Exchange, true, cfg.MQ.ConsumerPrefetch)
	if err != nil {
		logger.Fatal("consumer channel init failed", "err", err)
	}
	defer mq.CloseConsumer(conn, ch)

	p := &projector{redis: redisClient, mqPool: mqPool}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			p.handle(d)
		}
	}()
	logger.Info("Order event consumer started", "queue", queueName)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("Shutdown signal received")
	case <-done:
		logger.Warn("delivery channel closed")
	}
}

func (p *projector) handle(d amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), handleWindow)
	defer cancel()

	seen, err := p.alreadySeen(ctx, d.MessageId)
	if err != nil {
		logger.Error("dedup check failed, requeueing", "message_id", d.MessageId, "err", err)
		_ = d.Nack(false, true)
		return
	}
	if seen {
		logger.Info("duplicate delivery skipped", "message_id", d.MessageId)
		_ = d.Ack(false)
		return
	}

	switch d.RoutingKey {
	case mq.KeyOrderPlaced:
		var evt mq.OrderPlacedEvent
		if err := json.Unmarshal(d.Body, &evt); err != nil {
			logger.Error("bad order.placed payload, dropping", "err", err)
			_ = d.Ack(false)
			return
		}
		p.applyItems(ctx, evt.Items, 1, "order_placed")
		logger.Info("order placed projected", "order_no", evt.OrderNo, "items", len(evt.Items))

	case mq.KeyOrderCanceled:
		var evt mq.OrderCanceledEvent
		if err := json.Unmarshal(d.Body, &evt); err != nil {
			logger.Error("bad order.canceled payload, dropping", "err", err)
			_ = d.Ack(false)
			return
		}
		p.applyItems(ctx, evt.Items, -1, "order_canceled")
		logger.Info("order cancellation projected", "order_no", evt.OrderNo, "items", len(evt.Items))

	default:
		logger.Warn("unexpected routing key", "key", d.RoutingKey)
	}

	_ = d.Ack(false)
}

// alreadySeen marks the MessageId and reports whether it was marked before.
// Events without an id (legacy producers) are always processed.
func (p *projector) alreadySeen(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, nil
	}
	key := dedupKey(messageID)
	ok, err := p.redis.SetNX(ctx, key, 1, dedupTTL).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// applyItems moves the sales counters by sign*quantity per product and
// publishes one stock.change audit event per line. Counter writes are
// best-effort; a failed INCR is logged and the message is still acked since
// the dedup marker is already set.
func (p *projector) applyItems(ctx context.Context, items []mq.OrderEventItem, sign int32, reason string) {
	now := time.Now().Unix()
	for _, it := range items {
		delta := sign * it.Quantity
		if err := p.redis.IncrBy(ctx, salesKey(it.ProductID), int64(delta)).Err(); err != nil {
			logger.Error("sales counter update failed", "product_id", it.ProductID, "err", err)
		}

		evt := mq.StockChangeEvent{
			ProductID: it.ProductID,
			Delta:     -delta,
			Reason:    reason,
			TimeUnix:  now,
		}
		body, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		if err := p.mqPool.PublishAsync(mq.Exchange, mq.KeyStockChange, body); err != nil {
			logger.Warn("stock change publish failed", "product_id", it.ProductID, "err", err)
		}
	}
}

func dedupKey(messageID string) string {
	return "mq:dedup:" + messageID
}

func salesKey(productID int64) string {
	return "sales:product:" + strconv.FormatInt(productID, 10)
}
