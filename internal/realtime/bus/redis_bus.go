package bus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/config"
	"github.com/Asgar77/goodminds-app/internal/realtime"
)

const defaultChannel = "goodmind-changes"

// redisBus fans store changes out to every server instance subscribed to
// one channel. A message is the bare document path that changed.
type redisBus struct {
	log     *zap.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects to conf.Addr, which is either host:port or a
// redis:// URL, and checks the connection before returning.
func NewRedisBus(log *zap.Logger, conf config.RedisConfig) (Bus, error) {
	opts, err := redisOptions(conf.Addr)
	if err != nil {
		return nil, err
	}
	channel := strings.TrimSpace(conf.Channel)
	if channel == "" {
		channel = defaultChannel
	}

	rdb := goredis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	log.Info("Change bus connected to redis", zap.String("addr", opts.Addr), zap.String("channel", channel))
	return &redisBus{log: log.Named("redis-bus"), rdb: rdb, channel: channel}, nil
}

func redisOptions(addr string) (*goredis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	var opts *goredis.Options
	if strings.Contains(addr, "://") {
		parsed, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &goredis.Options{Addr: addr}
	}
	opts.DialTimeout = 5 * time.Second
	return opts, nil
}

// New picks the Redis bus when enabled and the in-process bus otherwise.
func New(log *zap.Logger, conf config.RedisConfig) (Bus, error) {
	if !conf.Enabled {
		return NewLocalBus(), nil
	}
	return NewRedisBus(log, conf)
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.Change) error {
	if msg.Path == "" {
		return errors.New("change without a path")
	}
	if err := b.rdb.Publish(ctx, b.channel, msg.Path).Err(); err != nil {
		return fmt.Errorf("publish change %s: %w", msg.Path, err)
	}
	return nil
}

// StartForwarder subscribes before returning, so changes published after it
// returns are not missed. Delivery stops when ctx is done.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Change)) error {
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(m realtime.Change)) {
	defer sub.Close()
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-messages:
			if !ok {
				return
			}
			path := strings.TrimSpace(m.Payload)
			if path == "" {
				b.log.Warn("Ignoring empty change message", zap.String("channel", m.Channel))
				continue
			}
			onMsg(realtime.Change{Path: path})
		}
	}
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}
