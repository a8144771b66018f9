package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/giftlist/internal/ownership"
	"github.com/MarcoPoloResearchLab/giftlist/internal/storage"
	"go.uber.org/zap"
)

const (
	ownerToken    = "creator_1735689600000_owner0001"
	strangerToken = "creator_1735689600000_guest0001"
	fixedMillis   = int64(1735689600000)
)

type staticGiftIDs struct {
	ids   []string
	index int
}

func (g *staticGiftIDs) NewGiftID(time.Time) (GiftID, error) {
	if g.index >= len(g.ids) {
		return "", errors.New("exhausted ids")
	}
	id := g.ids[g.index]
	g.index++
	return GiftID(id), nil
}

type fixedListIDs struct {
	id string
}

func (p fixedListIDs) NewListID(string, time.Time) (ListID, error) {
	return ListID(p.id), nil
}

func newTestStore(t *testing.T, giftIDs ...string) (*Store, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	store, err := NewStore(Config{
		KV:      kv,
		Clock:   func() time.Time { return time.UnixMilli(fixedMillis) },
		GiftIDs: &staticGiftIDs{ids: giftIDs},
		Logger:  zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	return store, kv
}

func mustCapability(t *testing.T, token string) ownership.Capability {
	t.Helper()
	capability, err := ownership.NewCapability(token)
	if err != nil {
		t.Fatalf("unexpected capability error: %v", err)
	}
	return capability
}

func mustServiceCode(t *testing.T, err error, want string) {
	t.Helper()
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *ServiceError, got %T (%v)", err, err)
	}
	if serviceErr.Code() != want {
		t.Fatalf("unexpected error code: got %s want %s", serviceErr.Code(), want)
	}
}
