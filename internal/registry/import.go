package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MarcoPoloResearchLab/giftlist/internal/storage"
	"go.uber.org/zap"
)

// ImportOptions controls how a browser storage export is merged into the profile.
type ImportOptions struct {
	// AdoptCreatorToken replaces this profile's creator token with the exported one,
	// transferring ownership of the exported lists.
	AdoptCreatorToken bool
}

// ImportSummary reports what an import wrote.
type ImportSummary struct {
	Lists        []ListID
	TokenAdopted bool
	Skipped      []string
}

// ImportEntries loads a local-storage export (key to raw value) into the profile.
// Every gift_list_* payload must decode before anything is written.
func (s *Store) ImportEntries(ctx context.Context, entries map[string]string, options ImportOptions) (ImportSummary, error) {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summary := ImportSummary{}
	decoded := make([]List, 0, len(keys))
	for _, key := range keys {
		rawID, ok := storage.ListIDFromKey(key)
		if !ok {
			if key != storage.CreatorTokenKey || !options.AdoptCreatorToken {
				summary.Skipped = append(summary.Skipped, key)
			}
			continue
		}
		listID, err := NewListID(rawID)
		if err != nil {
			return ImportSummary{}, newServiceError(opImport, reasonInvalid, err)
		}
		list, err := decodeList(entries[key], listID)
		if err != nil {
			return ImportSummary{}, newServiceError(opImport, "invalid_payload",
				newValidationError(fieldPayload, fmt.Sprintf("entry %s is not a readable list", key)))
		}
		if list.ID != listID {
			return ImportSummary{}, newServiceError(opImport, "id_mismatch",
				newValidationError(fieldPayload, fmt.Sprintf("entry %s carries list id %s", key, list.ID)))
		}
		decoded = append(decoded, list)
	}

	token := ""
	if options.AdoptCreatorToken {
		token = strings.TrimSpace(entries[storage.CreatorTokenKey])
		if token == "" {
			return ImportSummary{}, newServiceError(opImport, "missing_creator_token",
				newValidationError(storage.CreatorTokenKey, "export does not contain a creator token"))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range decoded {
		if err := s.writeList(ctx, opImport, list); err != nil {
			return ImportSummary{}, err
		}
		summary.Lists = append(summary.Lists, list.ID)
	}
	if token != "" {
		if err := s.kv.Set(ctx, storage.CreatorTokenKey, token); err != nil {
			s.logError(opImport, "token_write_failed", err)
			return ImportSummary{}, newServiceError(opImport, "token_write_failed", err)
		}
		summary.TokenAdopted = true
	}

	s.logger.Info("storage export imported",
		zap.Int("lists", len(summary.Lists)),
		zap.Bool("token_adopted", summary.TokenAdopted),
		zap.Int("skipped", len(summary.Skipped)))
	return summary, nil
}
