package persist

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/KillerEXXD/hhcapture-sub002/engine"
)

type RedisSessionTracker struct {
	rdclient *redis.Client
}

func NewRedisSessionTracker(redisURL string, redisPW string, redisDB int) *RedisSessionTracker {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: redisPW,
		DB:       redisDB,
	})
	return &RedisSessionTracker{
		rdclient: rdclient,
	}
}

func (r *RedisSessionTracker) Load(sessionCode string) (*engine.EngineState, error) {
	stateBytes, err := r.rdclient.Get(context.Background(), sessionKey(sessionCode)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("Session state for Key: %s is not found", sessionCode)
	} else if err != nil {
		return nil, err
	}
	state := &engine.EngineState{}
	err = json.Unmarshal([]byte(stateBytes), state)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (r *RedisSessionTracker) Save(sessionCode string, state *engine.EngineState) error {
	stateInBytes, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.rdclient.Set(context.Background(), sessionKey(sessionCode), stateInBytes, 0).Err()
}

func (r *RedisSessionTracker) Remove(sessionCode string) error {
	return r.rdclient.Del(context.Background(), sessionKey(sessionCode)).Err()
}

func sessionKey(sessionCode string) string {
	return "hhcapture:session:" + sessionCode
}
