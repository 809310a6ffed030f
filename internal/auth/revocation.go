package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "taskhub:revoked:"

// RevocationStore is a redis denylist of token ids. Entries expire together
// with the token they revoke.
type RevocationStore struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRevocationStore(rdb redis.Cmdable) *RevocationStore {
	return &RevocationStore{rdb: rdb, now: time.Now}
}

func (s *RevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("revoke: empty token id")
	}

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		// already expired, nothing to deny
		return nil
	}

	if err := s.rdb.Set(ctx, revokedPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
