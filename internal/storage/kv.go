package storage

import (
	"context"
	"errors"
	"strings"
)

const (
	// CreatorTokenKey holds the profile-wide creator token.
	CreatorTokenKey = "creator_token"
	// ListKeyPrefix prefixes every persisted gift list record.
	ListKeyPrefix = "gift_list_"
)

// ErrEmptyKey indicates that a key-value operation was attempted with a blank key.
var ErrEmptyKey = errors.New("storage: empty key")

// KV is the profile-scoped key-value store that backs gift lists and the creator token.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ListKey returns the storage key for the provided list identifier.
func ListKey(listID string) string {
	return ListKeyPrefix + listID
}

// ListIDFromKey extracts the list identifier from a list storage key.
func ListIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, ListKeyPrefix) {
		return "", false
	}
	listID := strings.TrimPrefix(key, ListKeyPrefix)
	if listID == "" {
		return "", false
	}
	return listID, true
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
