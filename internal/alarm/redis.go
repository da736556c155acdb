package alarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultRedisPrefix = "athan:alarms"

// RedisStore keeps alarms in Redis so they survive daemon restarts. Fire
// times live in a sorted set scored in Unix milliseconds and payloads in a
// hash, both keyed by id.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Address  string
	Username string
	Password string
	DB       int
}

// NewRedisClient opens a client for the given server.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// NewRedisStore wraps rdb. An empty prefix uses "athan:alarms".
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) scheduleKey() string { return r.prefix + ":schedule" }
func (r *RedisStore) payloadKey() string  { return r.prefix + ":payload" }

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisStore) Register(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal alarm: %w", err)
	}
	member := strconv.Itoa(ev.ID)

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, r.scheduleKey(), redis.Z{Score: float64(ev.FireAt.UnixMilli()), Member: member})
		pipe.HSet(ctx, r.payloadKey(), member, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store alarm %d: %w", ev.ID, err)
	}
	return nil
}

func (r *RedisStore) Cancel(ctx context.Context, id int) error {
	member := strconv.Itoa(id)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, r.scheduleKey(), member)
		pipe.HDel(ctx, r.payloadKey(), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to cancel alarm %d: %w", id, err)
	}
	return nil
}

// popDue reads and removes every alarm scored at or before ARGV[1] in one
// step, so a Register landing in between is either popped or kept whole.
// It returns id, payload pairs.
var popDue = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if #ids == 0 then
	return {}
end
local payloads = redis.call('HMGET', KEYS[2], unpack(ids))
redis.call('ZREM', KEYS[1], unpack(ids))
redis.call('HDEL', KEYS[2], unpack(ids))
local out = {}
for i, id in ipairs(ids) do
	out[#out + 1] = id
	out[#out + 1] = payloads[i]
end
return out
`)

func (r *RedisStore) Due(ctx context.Context, now time.Time) ([]Event, error) {
	reply, err := popDue.Run(ctx, r.rdb, []string{r.scheduleKey(), r.payloadKey()}, now.UnixMilli()).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop due alarms: %w", err)
	}

	events := make([]Event, 0, len(reply)/2)
	for i := 0; i+1 < len(reply); i += 2 {
		id := fmt.Sprint(reply[i])
		if ev, ok := decodeEvent(id, reply[i+1]); ok {
			events = append(events, ev)
		}
	}
	sortEvents(events)
	return events, nil
}

func (r *RedisStore) Pending(ctx context.Context) ([]Event, error) {
	ids, err := r.rdb.ZRange(ctx, r.scheduleKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read alarms: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return r.load(ctx, ids)
}

func (r *RedisStore) load(ctx context.Context, ids []string) ([]Event, error) {
	raw, err := r.rdb.HMGet(ctx, r.payloadKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read alarm payloads: %w", err)
	}

	events := make([]Event, 0, len(raw))
	for i, v := range raw {
		if ev, ok := decodeEvent(ids[i], v); ok {
			events = append(events, ev)
		}
	}
	sortEvents(events)
	return events, nil
}

func decodeEvent(id string, v interface{}) (Event, bool) {
	s, ok := v.(string)
	if !ok {
		log.Warn().Str("alarm_id", id).Msg("alarm payload missing")
		return Event{}, false
	}
	var ev Event
	if err := json.Unmarshal([]byte(s), &ev); err != nil {
		log.Warn().Err(err).Str("alarm_id", id).Msg("alarm payload unreadable")
		return Event{}, false
	}
	return ev, true
}
