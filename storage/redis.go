package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"padel-bot/botapi"
)

// Storage wraps the Redis connection the bot keeps its state in: the
// upstream access token, per-chat watcher preferences, the last report
// sent to each chat and short-lived keyboard choice caches.
type Storage struct {
	client *redis.Client
}

func New(addr, password string, db int) *Storage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Storage{client: rdb}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.client.Close()
}

// Watcher is one chat's standing availability watch.
type Watcher struct {
	ChatID       int64
	DesiredTimes []string // "HH:MM:SS"
}

func (s *Storage) SaveWatcher(ctx context.Context, w *Watcher) error {
	key := fmt.Sprintf("watch:%d", w.ChatID)
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}

func (s *Storage) Watcher(ctx context.Context, chatID int64) (*Watcher, error) {
	key := fmt.Sprintf("watch:%d", chatID)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var w Watcher
	if err := json.Unmarshal([]byte(val), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Storage) DeleteWatcher(ctx context.Context, chatID int64) error {
	key := fmt.Sprintf("watch:%d", chatID)
	return s.client.Del(ctx, key).Err()
}

func (s *Storage) Watchers(ctx context.Context) ([]*Watcher, error) {
	keys, err := s.client.Keys(ctx, "watch:*").Result()
	if err != nil {
		return nil, err
	}

	var watchers []*Watcher
	for _, key := range keys {
		val, err := s.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var w Watcher
		if json.Unmarshal([]byte(val), &w) == nil {
			watchers = append(watchers, &w)
		}
	}
	return watchers, nil
}

// ===== upstream access token =====

const tokenKey = "playtomic:access_token"

// Token returns the persisted access token, or "" when none is stored.
// Together with Persist this implements playtomic.CredentialStore.
func (s *Storage) Token(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, tokenKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Persist stores the access token without a TTL; the expiry lives inside
// the token itself and the client checks it before every use.
func (s *Storage) Persist(ctx context.Context, token string) error {
	return s.client.Set(ctx, tokenKey, token, 0).Err()
}

// ===== last sent reports, for change detection =====

// SaveLastReport remembers the report last sent to a chat for a venue
// (TTL: 24 hours) so unchanged reports are not re-sent.
func (s *Storage) SaveLastReport(ctx context.Context, chatID int64, tenantID, report string) error {
	key := fmt.Sprintf("report:%d:%s", chatID, tenantID)
	return s.client.Set(ctx, key, report, 24*time.Hour).Err()
}

// LastReport returns the previously sent report, or "" when none exists.
func (s *Storage) LastReport(ctx context.Context, chatID int64, tenantID string) (string, error) {
	key := fmt.Sprintf("report:%d:%s", chatID, tenantID)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// ===== club keyboard choices =====

// SaveClubChoices caches a chat's current club search results so callback
// data can carry an index instead of a full id (TTL: 5 minutes as a safety
// net for abandoned keyboards).
func (s *Storage) SaveClubChoices(ctx context.Context, chatID int64, clubs []botapi.ClubSummary) error {
	key := fmt.Sprintf("clubs:%d", chatID)
	data, err := json.Marshal(clubs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 5*time.Minute).Err()
}

func (s *Storage) ClubChoices(ctx context.Context, chatID int64) ([]botapi.ClubSummary, error) {
	key := fmt.Sprintf("clubs:%d", chatID)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var clubs []botapi.ClubSummary
	if err := json.Unmarshal([]byte(val), &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}
