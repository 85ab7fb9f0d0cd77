package recovery

import (
	"sync"
	"time"
)

type tokenRecord struct {
	accountKey string
	issuedAt   time.Time
	expiresAt  time.Time
	used       bool
}

type tokenShard struct {
	mu      sync.Mutex
	records map[string]*tokenRecord
}

type ownerShard struct {
	mu     sync.Mutex
	tokens map[string]string // account key -> current token
}

// ResetTokenStore maps opaque reset tokens to the account they authorise a
// password change for. At most one live token per account: issuing a new one
// deletes the prior record outright rather than leaving it to expire.
type ResetTokenStore struct {
	ttl    time.Duration
	now    Clock
	source SecretSource
	shards [shardCount]tokenShard // keyed by token
	owners [shardCount]ownerShard // keyed by account
}

// NewResetTokenStore creates a ResetTokenStore with the given token TTL.
// A nil clock defaults to time.Now.
func NewResetTokenStore(ttl time.Duration, source SecretSource, now Clock) *ResetTokenStore {
	s := &ResetTokenStore{ttl: ttl, source: source, now: now}
	if s.now == nil {
		s.now = time.Now
	}
	for i := range s.shards {
		s.shards[i].records = make(map[string]*tokenRecord)
		s.owners[i].tokens = make(map[string]string)
	}
	return s
}

func (s *ResetTokenStore) tokenShard(token string) *tokenShard {
	return &s.shards[shardIndex(token)]
}

func (s *ResetTokenStore) ownerShard(accountKey string) *ownerShard {
	return &s.owners[shardIndex(accountKey)]
}

// Issue generates a fresh token bound to accountKey, deleting any prior
// token for that account. Lock order is always owner shard then token shard;
// Validate and Invalidate touch token shards only, so this cannot deadlock.
func (s *ResetTokenStore) Issue(accountKey string) (string, error) {
	token, err := s.source.ResetToken()
	if err != nil {
		return "", err
	}

	owner := s.ownerShard(accountKey)
	owner.mu.Lock()
	defer owner.mu.Unlock()
	if old, ok := owner.tokens[accountKey]; ok {
		s.deleteToken(old)
	}
	owner.tokens[accountKey] = token

	now := s.now()
	sh := s.tokenShard(token)
	sh.mu.Lock()
	sh.records[token] = &tokenRecord{
		accountKey: accountKey,
		issuedAt:   now,
		expiresAt:  now.Add(s.ttl),
	}
	sh.mu.Unlock()
	return token, nil
}

// Validate returns the account key bound to token without mutating it, so a
// caller can validate, perform the password write, then Invalidate. Expired
// records are evicted on sight to bound memory; the stale owner-index entry
// is overwritten by the next Issue.
func (s *ResetTokenStore) Validate(token string) (string, error) {
	sh := s.tokenShard(token)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	rec, ok := sh.records[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	if s.now().After(rec.expiresAt) {
		delete(sh.records, token)
		return "", ErrTokenExpired
	}
	if rec.used {
		return "", ErrTokenUsed
	}
	return rec.accountKey, nil
}

// Invalidate marks token as used. A used token is permanently invalid even
// if not yet expired. Idempotent; unknown tokens are a no-op.
func (s *ResetTokenStore) Invalidate(token string) {
	sh := s.tokenShard(token)
	sh.mu.Lock()
	if rec, ok := sh.records[token]; ok {
		rec.used = true
	}
	sh.mu.Unlock()
}

// Revoke removes the outstanding token for accountKey, if any.
func (s *ResetTokenStore) Revoke(accountKey string) {
	owner := s.ownerShard(accountKey)
	owner.mu.Lock()
	if token, ok := owner.tokens[accountKey]; ok {
		s.deleteToken(token)
		delete(owner.tokens, accountKey)
	}
	owner.mu.Unlock()
}

func (s *ResetTokenStore) deleteToken(token string) {
	sh := s.tokenShard(token)
	sh.mu.Lock()
	delete(sh.records, token)
	sh.mu.Unlock()
}
