package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"precisionquiz-backend/internal/models"
	"precisionquiz-backend/internal/services"
)

var ErrSessionNotFound = errors.New("quiz session not found or expired")

const maxUpdateRetries = 5

// SessionRepo keeps one QuizSession per key in Redis, refreshing the TTL on every write.
type SessionRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionRepo(rdb *redis.Client, ttl time.Duration) *SessionRepo {
	return &SessionRepo{rdb: rdb, ttl: ttl}
}

func sessionKey(id uuid.UUID) string    { return "quiz_session:" + id.String() }
func uploadLockKey(id uuid.UUID) string { return "upload_lock:" + id.String() }

// StatusChannel is the pub/sub channel carrying pipeline updates for one session.
func StatusChannel(id uuid.UUID) string { return "pipeline_updates:" + id.String() }

func (r *SessionRepo) Create(ctx context.Context, s *services.QuizSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, sessionKey(s.ID), data, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("quiz session %s already exists", s.ID)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (*services.QuizSession, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(raw)
}

func (r *SessionRepo) Save(ctx context.Context, s *services.QuizSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKey(s.ID), data, r.ttl).Err()
}

// Update applies fn to the stored session under WATCH and writes the result
// in a MULTI block. An error from fn aborts the write and is returned as is.
func (r *SessionRepo) Update(ctx context.Context, id uuid.UUID, fn func(*services.QuizSession) error) (*services.QuizSession, error) {
	key := sessionKey(id)
	var updated *services.QuizSession

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		s, err := decodeSession(raw)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}

		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			updated = s
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("quiz session %s: too many concurrent updates", id)
}

// releaseLockScript deletes the lock only while it still holds the caller's token.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireUploadLock is the per-session busy flag. It returns the holder's
// token, or ok=false when another upload already holds it.
func (r *SessionRepo) AcquireUploadLock(ctx context.Context, id uuid.UUID, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = r.rdb.SetNX(ctx, uploadLockKey(id), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseUploadLock frees the flag if token still owns it. A lock that expired
// and was taken by another upload is left alone.
func (r *SessionRepo) ReleaseUploadLock(ctx context.Context, id uuid.UUID, token string) error {
	return releaseLockScript.Run(ctx, r.rdb, []string{uploadLockKey(id)}, token).Err()
}

// PublishStatus fans a pipeline update out to websocket subscribers.
func (r *SessionRepo) PublishStatus(ctx context.Context, update models.StatusUpdate) error {
	data, err := json.Marshal(models.WSMessage{Type: "pipeline_status", Payload: update})
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, StatusChannel(update.SessionID), data).Err()
}

func decodeSession(raw []byte) (*services.QuizSession, error) {
	var s services.QuizSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode quiz session: %w", err)
	}
	return &s, nil
}
