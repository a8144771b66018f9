package ownership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/giftlist/internal/ident"
	"github.com/MarcoPoloResearchLab/giftlist/internal/storage"
	"go.uber.org/zap"
)

const (
	tokenPrefix       = "creator"
	tokenSuffixLength = 9
)

var errMissingKV = errors.New("ownership: key-value store is required")

// SuffixFunc returns a random suffix for a freshly issued token.
type SuffixFunc func() (string, error)

// TokenSourceConfig describes how creator tokens are cached and issued.
type TokenSourceConfig struct {
	KV     storage.KV
	Clock  func() time.Time
	Suffix SuffixFunc
	Logger *zap.Logger
}

// TokenSource hands out the profile's creator token, issuing it on first use.
type TokenSource struct {
	kv     storage.KV
	clock  func() time.Time
	suffix SuffixFunc
	logger *zap.Logger
	mu     sync.Mutex
}

// NewTokenSource constructs a TokenSource backed by the provided store.
func NewTokenSource(cfg TokenSourceConfig) (*TokenSource, error) {
	if cfg.KV == nil {
		return nil, errMissingKV
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	suffix := cfg.Suffix
	if suffix == nil {
		suffix = func() (string, error) {
			return ident.Base36Suffix(tokenSuffixLength)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenSource{
		kv:     cfg.KV,
		clock:  clock,
		suffix: suffix,
		logger: logger,
	}, nil
}

// Capability returns the cached creator token as a capability. A token is issued and
// stored under storage.CreatorTokenKey when none exists yet; it is never rotated.
func (s *TokenSource) Capability(ctx context.Context) (Capability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok, err := s.kv.Get(ctx, storage.CreatorTokenKey)
	if err != nil {
		return Capability{}, fmt.Errorf("ownership: read creator token: %w", err)
	}
	if ok && strings.TrimSpace(stored) != "" {
		return NewCapability(stored)
	}

	suffix, err := s.suffix()
	if err != nil {
		return Capability{}, fmt.Errorf("ownership: generate creator token: %w", err)
	}
	issued := fmt.Sprintf("%s_%d_%s", tokenPrefix, s.clock().UnixMilli(), suffix)
	if err := s.kv.Set(ctx, storage.CreatorTokenKey, issued); err != nil {
		return Capability{}, fmt.Errorf("ownership: store creator token: %w", err)
	}
	s.logger.Info("creator token issued")
	return NewCapability(issued)
}
