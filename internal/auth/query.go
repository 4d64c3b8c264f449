package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/malangee/malangee/internal/cache"
	"github.com/malangee/malangee/internal/token"
	"github.com/malangee/malangee/pkg/client"
	"github.com/malangee/malangee/pkg/domain"
)

// UserKey is the cache key of the current-user query.
const UserKey = "auth/user"

// DefaultStaleTime is how long a fetched profile counts as fresh.
const DefaultStaleTime = 5 * time.Minute

// ErrSuperseded is returned by a fetch whose result was discarded because
// the query was reset while it was in flight.
var ErrSuperseded = errors.New("auth: profile fetch superseded")

// ProfileFetcher loads the authenticated user's profile.
type ProfileFetcher interface {
	GetMe(ctx context.Context) (*domain.User, error)
}

// Snapshot is the observable state of the current-user query.
type Snapshot struct {
	User *domain.User
	Err  error
	// Loading is true while no profile is known and a result is still pending.
	Loading bool
	// Fetched is true once at least one fetch has settled since the last reset.
	Fetched bool
}

// UserQuery fetches the current user once per freshness window. It only
// runs while a token exists, never retries, and drops the token on 401/403.
type UserQuery struct {
	api       ProfileFetcher
	tokens    token.Store
	cache     *cache.Cache
	staleTime time.Duration
	log       *slog.Logger
	group     singleflight.Group

	mu       sync.Mutex
	gen      uint64
	user     *domain.User
	err      error
	inflight int
	fetched  bool
}

// NewUserQuery builds the query over api, storing results in c.
func NewUserQuery(api ProfileFetcher, tokens token.Store, c *cache.Cache, staleTime time.Duration) *UserQuery {
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	return &UserQuery{
		api:       api,
		tokens:    tokens,
		cache:     c,
		staleTime: staleTime,
		log:       slog.Default().With("query", UserKey),
	}
}

// Enabled reports whether the query may run at all.
func (q *UserQuery) Enabled() bool {
	return q.tokens.Exists()
}

// Snapshot returns the current query state.
func (q *UserQuery) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Snapshot{
		User:    q.user,
		Err:     q.err,
		Loading: q.user == nil && (q.inflight > 0 || !q.fetched),
		Fetched: q.fetched,
	}
}

// Fetch returns the cached profile while it is fresh and otherwise asks the
// API. With no token it returns (nil, nil) without a request.
func (q *UserQuery) Fetch(ctx context.Context) (*domain.User, error) {
	if !q.Enabled() {
		return nil, nil
	}
	if v, ok := q.cache.Get(UserKey); ok {
		if u, ok := v.(*domain.User); ok {
			q.mu.Lock()
			q.user, q.err, q.fetched = u, nil, true
			q.mu.Unlock()
			return u, nil
		}
	}
	return q.run(ctx)
}

// Refetch ignores freshness and always asks the API.
func (q *UserQuery) Refetch(ctx context.Context) (*domain.User, error) {
	if !q.Enabled() {
		return nil, nil
	}
	return q.run(ctx)
}

// SetData replaces the cached profile, e.g. after a successful update.
func (q *UserQuery) SetData(u *domain.User) {
	q.mu.Lock()
	q.user, q.err, q.fetched = u, nil, true
	q.mu.Unlock()
	q.cache.SetWithTTL(UserKey, u, q.staleTime)
}

// Reset forgets everything. Fetches started before the reset are discarded
// when they complete.
func (q *UserQuery) Reset() {
	q.mu.Lock()
	q.gen++
	q.user, q.err, q.fetched = nil, nil, false
	q.mu.Unlock()
	q.cache.Delete(UserKey)
}

func (q *UserQuery) run(ctx context.Context) (*domain.User, error) {
	q.mu.Lock()
	gen := q.gen
	q.inflight++
	q.mu.Unlock()

	// Callers that share a generation share one request.
	key := fmt.Sprintf("%s#%d", UserKey, gen)
	v, err, shared := q.group.Do(key, func() (any, error) {
		sent, _ := q.tokens.Get()
		u, err := q.api.GetMe(ctx)
		if err != nil && client.IsAuth(err) {
			q.dropToken(gen, sent, err)
		}
		return u, err
	})
	q.log.Debug("profile fetch settled", "shared", shared, "error", err)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.inflight--
	if gen != q.gen {
		return nil, ErrSuperseded
	}
	q.fetched = true
	if err != nil {
		q.err = err
		if client.IsAuth(err) {
			q.user = nil
		}
		return nil, err
	}
	u, _ := v.(*domain.User)
	q.user, q.err = u, nil
	q.cache.SetWithTTL(UserKey, u, q.staleTime)
	return u, nil
}

// dropToken removes the token a rejected fetch was sent with. A token stored
// by a later login, or a fetch superseded by Reset, leaves the store alone.
func (q *UserQuery) dropToken(gen uint64, sent string, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if cur, ok := q.tokens.Get(); gen != q.gen || !ok || cur != sent {
		q.log.Debug("stale profile rejection ignored", "status", client.StatusOf(err))
		return
	}
	q.log.Info("profile rejected, dropping token", "status", client.StatusOf(err))
	if rmErr := q.tokens.Remove(); rmErr != nil {
		q.log.Warn("remove token", "error", rmErr)
	}
}
