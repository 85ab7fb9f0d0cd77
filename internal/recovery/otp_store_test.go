package recovery

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqSource hands out numbered, unique secrets so tests can tell issued
// codes apart. Safe for concurrent use.
type seqSource struct {
	mu sync.Mutex
	n  int
}

func (s *seqSource) OTPCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%06d", s.n), nil
}

func (s *seqSource) ResetToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("token-%06d", s.n), nil
}

// testClock returns a Clock reading from *now, so tests can advance time.
func testClock(now *time.Time) Clock {
	return func() time.Time { return *now }
}

func TestOtpStore_IssueAndValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewOtpStore(5*time.Minute, &seqSource{}, testClock(&now))

	code, err := store.Issue("a@x.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	assert.NoError(t, store.Validate("a@x.com", code))
}

func TestOtpStore_ValidateUnknownKey_NotFound(t *testing.T) {
	store := NewOtpStore(5*time.Minute, &seqSource{}, nil)
	assert.ErrorIs(t, store.Validate("nobody@x.com", "000001"), ErrOtpNotFound)
}

func TestOtpStore_Mismatch(t *testing.T) {
	store := NewOtpStore(5*time.Minute, &seqSource{}, nil)
	_, err := store.Issue("a@x.com")
	require.NoError(t, err)
	assert.ErrorIs(t, store.Validate("a@x.com", "999999"), ErrOtpMismatch)
}

func TestOtpStore_ComparisonIsLiteral(t *testing.T) {
	store := NewOtpStore(5*time.Minute, &seqSource{}, nil)
	code, err := store.Issue("a@x.com")
	require.NoError(t, err)
	// No trimming: whitespace around a correct code must not validate.
	assert.ErrorIs(t, store.Validate("a@x.com", " "+code), ErrOtpMismatch)
	assert.ErrorIs(t, store.Validate("a@x.com", code+"\n"), ErrOtpMismatch)
}

func TestOtpStore_ReissueInvalidatesPrior(t *testing.T) {
	store := NewOtpStore(5*time.Minute, &seqSource{}, nil)

	first, err := store.Issue("a@x.com")
	require.NoError(t, err)
	second, err := store.Issue("a@x.com")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	assert.ErrorIs(t, store.Validate("a@x.com", first), ErrOtpMismatch)
	assert.NoError(t, store.Validate("a@x.com", second))
}

func TestOtpStore_ExpiredCodeEvicted(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewOtpStore(5*time.Minute, &seqSource{}, testClock(&now))

	code, err := store.Issue("a@x.com")
	require.NoError(t, err)

	now = now.Add(5*time.Minute + time.Second)
	assert.ErrorIs(t, store.Validate("a@x.com", code), ErrOtpExpired)

	// The record was evicted: even the correct code is no longer answerable.
	assert.ErrorIs(t, store.Validate("a@x.com", code), ErrOtpNotFound)
}

func TestOtpStore_ValidAtExactTTL(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewOtpStore(5*time.Minute, &seqSource{}, testClock(&now))

	code, err := store.Issue("a@x.com")
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.NoError(t, store.Validate("a@x.com", code))
}

func TestOtpStore_ValidateRetainsRecordUntilConsume(t *testing.T) {
	store := NewOtpStore(5*time.Minute, &seqSource{}, nil)
	code, err := store.Issue("a@x.com")
	require.NoError(t, err)

	require.NoError(t, store.Validate("a@x.com", code))
	require.NoError(t, store.Validate("a@x.com", code))

	store.Consume("a@x.com")
	assert.ErrorIs(t, store.Validate("a@x.com", code), ErrOtpNotFound)
}

func TestOtpStore_ConsumeIdempotent(t *testing.T) {
	store := NewOtpStore(5*time.Minute, &seqSource{}, nil)
	store.Consume("never-issued@x.com")
	store.Consume("never-issued@x.com")
}

func TestOtpStore_ConcurrentIssueSameAccount(t *testing.T) {
	const callers = 32
	store := NewOtpStore(5*time.Minute, &seqSource{}, nil)

	codes := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code, err := store.Issue("a@x.com")
			assert.NoError(t, err)
			codes[i] = code
		}(i)
	}
	wg.Wait()

	valid := 0
	for _, code := range codes {
		if store.Validate("a@x.com", code) == nil {
			valid++
		}
	}
	assert.Equal(t, 1, valid, "exactly one of the racing codes must remain valid")
}

func TestOtpStore_DistinctAccountsIndependent(t *testing.T) {
	store := NewOtpStore(5*time.Minute, &seqSource{}, nil)
	a, err := store.Issue("a@x.com")
	require.NoError(t, err)
	b, err := store.Issue("b@x.com")
	require.NoError(t, err)

	assert.NoError(t, store.Validate("a@x.com", a))
	assert.NoError(t, store.Validate("b@x.com", b))
	store.Consume("a@x.com")
	assert.NoError(t, store.Validate("b@x.com", b))
}

func TestCryptoSource_OTPCodeShape(t *testing.T) {
	var src CryptoSource
	for i := 0; i < 50; i++ {
		code, err := src.OTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", code)
		}
	}
}
