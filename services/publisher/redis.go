package publisher

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"strconv"

	scrapeerrors "sjsage522/rankscout/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// Options configures a RedisPublisher
type Options struct {
	Addr            string
	DB              int
	StreamPrefix    string
	StreamCount     int
	StreamMaxLength int
}

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(opts Options) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: opts.Addr,
		DB:   opts.DB,
	})

	streamCount := opts.StreamCount
	if streamCount < 1 {
		streamCount = 1
	}

	return &RedisPublisher{
		client:          client,
		streamPrefix:    opts.StreamPrefix,
		streamCount:     streamCount,
		streamMaxLength: opts.StreamMaxLength,
	}
}

// Ping checks the connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return scrapeerrors.NewPublisher("redis ping failed", err)
	}
	return nil
}

// Publish publishes a message to a Redis stream
// The message is base64 encoded before publishing
func (p *RedisPublisher) Publish(ctx context.Context, key string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)

	// random stream by streamCount
	// if streamCount is 10, stream name will be prefix:0 ~ prefix:9
	stream := p.streamName(rand.Intn(p.streamCount))

	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: encodedMessage,
		},
	}).Err()
	if err != nil {
		return scrapeerrors.NewPublisher(fmt.Sprintf("failed to add %s to %s", key, stream), err)
	}
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	if p.streamMaxLength <= 0 {
		return nil
	}

	for i := 0; i < p.streamCount; i++ {
		stream := p.streamName(i)
		if err := p.client.XTrimMaxLen(ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return scrapeerrors.NewPublisher(fmt.Sprintf("failed to trim %s", stream), err)
		}
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func (p *RedisPublisher) streamName(shard int) string {
	return p.streamPrefix + ":" + strconv.Itoa(shard)
}
