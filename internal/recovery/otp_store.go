package recovery

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 16

func shardIndex(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() % shardCount
}

type otpRecord struct {
	code     string
	issuedAt time.Time
}

type otpShard struct {
	mu      sync.Mutex
	records map[string]otpRecord
}

// OtpStore holds the single outstanding one-time passcode per account.
// Sharded by account key so recoveries for distinct accounts never contend
// on the same lock.
type OtpStore struct {
	ttl    time.Duration
	now    Clock
	source SecretSource
	shards [shardCount]otpShard
}

// NewOtpStore creates an OtpStore with the given code TTL. A nil clock
// defaults to time.Now.
func NewOtpStore(ttl time.Duration, source SecretSource, now Clock) *OtpStore {
	s := &OtpStore{ttl: ttl, source: source, now: now}
	if s.now == nil {
		s.now = time.Now
	}
	for i := range s.shards {
		s.shards[i].records = make(map[string]otpRecord)
	}
	return s
}

func (s *OtpStore) shard(accountKey string) *otpShard {
	return &s.shards[shardIndex(accountKey)]
}

// Issue generates a fresh code for accountKey, unconditionally replacing any
// outstanding code. The replaced code stops validating immediately, expired
// or not.
func (s *OtpStore) Issue(accountKey string) (string, error) {
	code, err := s.source.OTPCode()
	if err != nil {
		return "", err
	}
	sh := s.shard(accountKey)
	sh.mu.Lock()
	sh.records[accountKey] = otpRecord{code: code, issuedAt: s.now()}
	sh.mu.Unlock()
	return code, nil
}

// Validate checks the submitted code. Comparison is literal string equality:
// no trimming, no case folding. An expired record is evicted so it stops
// being answerable even to a correct guess. A matching record is retained
// until an explicit Consume, so verification and the final password write
// can be separate steps.
func (s *OtpStore) Validate(accountKey, code string) error {
	sh := s.shard(accountKey)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	rec, ok := sh.records[accountKey]
	if !ok {
		return ErrOtpNotFound
	}
	if s.now().Sub(rec.issuedAt) > s.ttl {
		delete(sh.records, accountKey)
		return ErrOtpExpired
	}
	if rec.code != code {
		return ErrOtpMismatch
	}
	return nil
}

// Consume removes the record for accountKey. Idempotent; absent records are
// a no-op.
func (s *OtpStore) Consume(accountKey string) {
	sh := s.shard(accountKey)
	sh.mu.Lock()
	delete(sh.records, accountKey)
	sh.mu.Unlock()
}
