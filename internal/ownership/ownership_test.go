package ownership

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/giftlist/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCapabilityGrantsMatchingTokenOnly(t *testing.T) {
	capability, err := NewCapability("creator_1_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !capability.Grants("creator_1_abc") {
		t.Fatalf("expected matching token to grant")
	}
	if capability.Grants("creator_1_abd") {
		t.Fatalf("expected mismatched token to be refused")
	}
	if capability.Grants("") {
		t.Fatalf("expected empty creator token to be refused")
	}
	if Anonymous().Grants("creator_1_abc") {
		t.Fatalf("anonymous capability must not grant")
	}
}

func TestNewCreatorTokenValidation(t *testing.T) {
	if _, err := NewCreatorToken("   "); !errors.Is(err, ErrInvalidCreatorToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if _, err := NewCreatorToken(strings.Repeat("x", maxTokenLength+1)); !errors.Is(err, ErrInvalidCreatorToken) {
		t.Fatalf("expected length error, got %v", err)
	}
	token, err := NewCreatorToken("  creator_1_abc ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.String() != "creator_1_abc" {
		t.Fatalf("expected trimmed token, got %q", token)
	}
}

func TestTokenSourceIssuesOnceAndCaches(t *testing.T) {
	kv := storage.NewMemory()
	core, logs := observer.New(zapcore.InfoLevel)
	issued := 0
	source, err := NewTokenSource(TokenSourceConfig{
		KV:    kv,
		Clock: func() time.Time { return time.UnixMilli(1735689600000) },
		Suffix: func() (string, error) {
			issued++
			return "ab12cd34e", nil
		},
		Logger: zap.New(core),
	})
	if err != nil {
		t.Fatalf("failed to construct token source: %v", err)
	}

	first, err := source.Capability(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Token() != "creator_1735689600000_ab12cd34e" {
		t.Fatalf("unexpected token %q", first.Token())
	}

	second, err := source.Capability(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Token() != first.Token() {
		t.Fatalf("expected cached token, got %q then %q", first.Token(), second.Token())
	}
	if issued != 1 {
		t.Fatalf("expected exactly one issuance, got %d", issued)
	}

	stored, ok, err := kv.Get(context.Background(), storage.CreatorTokenKey)
	if err != nil || !ok {
		t.Fatalf("expected token to be persisted, ok=%v err=%v", ok, err)
	}
	if stored != first.Token().String() {
		t.Fatalf("persisted token mismatch: %q", stored)
	}
	if logs.FilterMessage("creator token issued").Len() != 1 {
		t.Fatalf("expected a single issuance log entry, got %d", logs.Len())
	}
}

func TestTokenSourceReusesExistingToken(t *testing.T) {
	kv := storage.NewMemory()
	if err := kv.Set(context.Background(), storage.CreatorTokenKey, "creator_42_existing"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	source, err := NewTokenSource(TokenSourceConfig{
		KV: kv,
		Suffix: func() (string, error) {
			return "", errors.New("must not issue")
		},
	})
	if err != nil {
		t.Fatalf("failed to construct token source: %v", err)
	}
	capability, err := source.Capability(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capability.Token() != "creator_42_existing" {
		t.Fatalf("unexpected token %q", capability.Token())
	}
}

func TestTokenSourceDefaultSuffixShape(t *testing.T) {
	source, err := NewTokenSource(TokenSourceConfig{KV: storage.NewMemory()})
	if err != nil {
		t.Fatalf("failed to construct token source: %v", err)
	}
	capability, err := source.Capability(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := strings.Split(capability.Token().String(), "_")
	if len(parts) != 3 || parts[0] != "creator" || len(parts[2]) != tokenSuffixLength {
		t.Fatalf("unexpected token shape %q", capability.Token())
	}
}

func TestNewTokenSourceRequiresKV(t *testing.T) {
	if _, err := NewTokenSource(TokenSourceConfig{}); !errors.Is(err, errMissingKV) {
		t.Fatalf("expected missing kv error, got %v", err)
	}
}
