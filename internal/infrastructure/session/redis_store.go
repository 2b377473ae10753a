// Package session persists gin-contrib/sessions state in Redis so that every
// session of a user can be found and destroyed in one sweep.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	gsessions "github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

// Session value keys.
const (
	KeyIsAuth   = "is_auth"
	KeyUserID   = "user_id"
	KeyEmail    = "email"
	KeyUsername = "username"
)

const (
	keyPrefix     = "session:"
	fieldData     = "data"
	fieldUsername = "username"
	scanBatch     = 100
)

func recordKey(id string) string { return keyPrefix + id }

// RedisStore keeps each session in a hash at session:<id>. The cookie only
// carries the signed id. The username is stored as its own field so
// DeleteByUsername does not need to decode every record.
type RedisStore struct {
	rdb           *redis.Client
	codecs        []securecookie.Codec
	opts          *gsessions.Options
	defaultMaxAge time.Duration
}

// NewRedisStore signs cookies with keyPairs (hash key, optional block key, ...).
func NewRedisStore(rdb *redis.Client, keyPairs ...[]byte) *RedisStore {
	return &RedisStore{
		rdb:           rdb,
		codecs:        securecookie.CodecsFromPairs(keyPairs...),
		opts:          &gsessions.Options{Path: "/", MaxAge: 86400, HttpOnly: true, SameSite: http.SameSiteLaxMode},
		defaultMaxAge: 24 * time.Hour,
	}
}

// Options sets the cookie attributes used for new sessions.
func (s *RedisStore) Options(o sessions.Options) {
	s.opts = o.ToGorillaOptions()
	if o.MaxAge > 0 {
		for _, c := range s.codecs {
			if sc, ok := c.(*securecookie.SecureCookie); ok {
				sc.MaxAge(o.MaxAge)
			}
		}
	}
}

func (s *RedisStore) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, forged or
// expired cookie yields a fresh empty session.
func (s *RedisStore) New(r *http.Request, name string) (*gsessions.Session, error) {
	sess := gsessions.NewSession(s, name)
	opts := *s.opts
	sess.Options = &opts
	sess.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return sess, nil
	}
	found, err := s.load(r.Context(), id, sess)
	if err != nil {
		return sess, err
	}
	if found {
		sess.ID = id
		sess.IsNew = false
	}
	return sess, nil
}

// Save writes the record and the cookie. A negative MaxAge deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, sess *gsessions.Session) error {
	ctx := r.Context()
	if sess.Options != nil && sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.rdb.Del(ctx, recordKey(sess.ID)).Err(); err != nil {
				return err
			}
		}
		http.SetCookie(w, gsessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if err := s.store(ctx, sess); err != nil {
		return err
	}
	encoded, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, gsessions.NewCookie(sess.Name(), encoded, sess.Options))
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string, sess *gsessions.Session) (bool, error) {
	raw, err := s.rdb.HGet(ctx, recordKey(id), fieldData).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	values := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		// unreadable record, treat as logged out
		return false, nil
	}
	for k, v := range values {
		sess.Values[k] = v
	}
	return true, nil
}

func (s *RedisStore) store(ctx context.Context, sess *gsessions.Session) error {
	values := make(map[string]any, len(sess.Values))
	for k, v := range sess.Values {
		ks, ok := k.(string)
		if !ok {
			return fmt.Errorf("session: non-string key %v", k)
		}
		values[ks] = v
	}
	b, err := json.Marshal(values)
	if err != nil {
		return err
	}
	username, _ := values[KeyUsername].(string)

	ttl := s.defaultMaxAge
	if sess.Options != nil && sess.Options.MaxAge > 0 {
		ttl = time.Duration(sess.Options.MaxAge) * time.Second
	}

	key := recordKey(sess.ID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, fieldData, string(b), fieldUsername, username)
	pipe.Expire(ctx, key, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// DeleteByUsername destroys every session whose embedded username matches.
// It returns how many were removed.
func (s *RedisStore) DeleteByUsername(ctx context.Context, username string) (int, error) {
	if username == "" {
		return 0, nil
	}
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := s.deleteMatching(ctx, keys, username)
			deleted += n
			if err != nil {
				return deleted, err
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (s *RedisStore) deleteMatching(ctx context.Context, keys []string, username string) (int, error) {
	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGet(ctx, k, fieldUsername)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, err
	}

	matched := make([]string, 0, len(keys))
	for i, cmd := range cmds {
		if v, err := cmd.Result(); err == nil && v == username {
			matched = append(matched, keys[i])
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}
	n, err := s.rdb.Del(ctx, matched...).Result()
	return int(n), err
}

var _ sessions.Store = (*RedisStore)(nil)
