package registry

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/giftlist/internal/ownership"
	"github.com/MarcoPoloResearchLab/giftlist/internal/storage"
	"go.uber.org/zap"
)

const maxGiftIDAttempts = 3

var noOpLogger = zap.NewNop()

// Config describes the dependencies of a Store.
type Config struct {
	KV      storage.KV
	Clock   func() time.Time
	ListIDs ListIDProvider
	GiftIDs GiftIDProvider
	Logger  *zap.Logger
}

// Store persists lists in a profile-scoped key-value store. Mutations within one Store
// are serialized; separate processes sharing a profile overwrite each other.
type Store struct {
	kv      storage.KV
	clock   func() time.Time
	listIDs ListIDProvider
	giftIDs GiftIDProvider
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewStore constructs a Store. Only the key-value store is mandatory.
func NewStore(cfg Config) (*Store, error) {
	if cfg.KV == nil {
		return nil, newServiceError(opStoreNew, "missing_kv", errMissingKV)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	listIDs := cfg.ListIDs
	if listIDs == nil {
		listIDs = HashListIDs{}
	}
	giftIDs := cfg.GiftIDs
	if giftIDs == nil {
		giftIDs = NewGiftIDs()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Store{
		kv:      cfg.KV,
		clock:   clock,
		listIDs: listIDs,
		giftIDs: giftIDs,
		logger:  logger,
	}, nil
}

// CreateList stores a new, empty list owned by the provided capability. An id that
// collides with an existing list silently replaces it.
func (s *Store) CreateList(ctx context.Context, owner ownership.Capability, input ListInput) (ListID, error) {
	title := strings.TrimSpace(input.Title)
	celebrant := strings.TrimSpace(input.Celebrant)
	date := strings.TrimSpace(input.Date)

	switch {
	case title == "":
		return "", newServiceError(opCreateList, "missing_title", newValidationError(fieldTitle, "title is required"))
	case celebrant == "":
		return "", newServiceError(opCreateList, "missing_celebrant", newValidationError(fieldCelebrant, "celebrant is required"))
	case date == "":
		return "", newServiceError(opCreateList, "missing_date", newValidationError(fieldDate, "date is required"))
	}
	if owner.IsZero() {
		return "", newServiceError(opCreateList, "missing_capability", ErrUnauthorized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.clock()
	listID, err := s.listIDs.NewListID(title+celebrant+date, createdAt)
	if err != nil {
		s.logError(opCreateList, "id_generation_failed", err)
		return "", newServiceError(opCreateList, "id_generation_failed", err)
	}

	list := List{
		ID:           listID,
		Title:        title,
		Celebrant:    celebrant,
		Date:         date,
		CreatorToken: owner.Token().String(),
		CreatedAt:    createdAt.UnixMilli(),
		Gifts:        []Gift{},
	}
	if err := s.writeList(ctx, opCreateList, list); err != nil {
		return "", err
	}

	s.logger.Debug("list created", zap.String("list_id", listID.String()))
	return listID, nil
}

// GetList loads a list. Absent and undecodable records both report ErrNotFound.
func (s *Store) GetList(ctx context.Context, rawListID string) (List, error) {
	listID, err := NewListID(rawListID)
	if err != nil {
		return List{}, newServiceError(opGetList, reasonInvalid, err)
	}
	return s.readList(ctx, opGetList, listID)
}

// SaveList overwrites the stored record wholesale. There is no version check.
func (s *Store) SaveList(ctx context.Context, list List) error {
	listID, err := NewListID(list.ID.String())
	if err != nil {
		return newServiceError(opSaveList, reasonInvalid, err)
	}
	list.ID = listID

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeList(ctx, opSaveList, list)
}

// OpenList loads a list and reports whether the viewer may edit it.
func (s *Store) OpenList(ctx context.Context, rawListID string, viewer ownership.Capability) (ListView, error) {
	listID, err := NewListID(rawListID)
	if err != nil {
		return ListView{}, newServiceError(opOpenList, reasonInvalid, err)
	}
	list, err := s.readList(ctx, opOpenList, listID)
	if err != nil {
		return ListView{}, err
	}
	return ListView{List: list, CanEdit: viewer.Grants(list.CreatorToken)}, nil
}

// Lists returns every readable list in the profile, oldest first. Unreadable records
// are skipped.
func (s *Store) Lists(ctx context.Context) ([]List, error) {
	keys, err := s.kv.Keys(ctx, storage.ListKeyPrefix)
	if err != nil {
		s.logError(opLists, "key_scan_failed", err)
		return nil, newServiceError(opLists, "key_scan_failed", err)
	}

	lists := make([]List, 0, len(keys))
	for _, key := range keys {
		rawID, ok := storage.ListIDFromKey(key)
		if !ok {
			continue
		}
		listID, err := NewListID(rawID)
		if err != nil {
			continue
		}
		list, err := s.readList(ctx, opLists, listID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}

	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].CreatedAt < lists[j].CreatedAt
	})
	return lists, nil
}

// AddGift appends a gift to a list owned by the capability.
func (s *Store) AddGift(ctx context.Context, rawListID string, owner ownership.Capability, input GiftInput) (GiftID, error) {
	listID, err := NewListID(rawListID)
	if err != nil {
		return "", newServiceError(opAddGift, reasonInvalid, err)
	}
	fields := input.normalized()
	if fields.isEmpty() {
		return "", newServiceError(opAddGift, "empty_gift", newValidationError(fieldGift, "at least one of name, price, link or note is required"))
	}
	price, err := parsePrice(fields.Price)
	if err != nil {
		return "", newServiceError(opAddGift, "invalid_price", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.readList(ctx, opAddGift, listID)
	if err != nil {
		return "", err
	}
	if !owner.Grants(list.CreatorToken) {
		return "", newServiceError(opAddGift, "not_owner", ErrUnauthorized)
	}

	giftID, err := s.uniqueGiftID(list)
	if err != nil {
		s.logError(opAddGift, "id_generation_failed", err, zap.String("list_id", listID.String()))
		return "", newServiceError(opAddGift, "id_generation_failed", err)
	}

	list.Gifts = append(list.Gifts, Gift{
		ID:    giftID,
		Name:  giftName(fields.Name),
		Price: price,
		Link:  optionalString(fields.Link),
		Note:  optionalString(fields.Note),
	})
	if err := s.writeList(ctx, opAddGift, list); err != nil {
		return "", err
	}

	s.logger.Debug("gift added", zap.String("list_id", listID.String()), zap.String("gift_id", giftID.String()))
	return giftID, nil
}

// EditGift replaces the descriptive fields of a gift. The id and the claim are kept.
func (s *Store) EditGift(ctx context.Context, rawListID, rawGiftID string, owner ownership.Capability, input GiftInput) error {
	listID, giftID, err := parseListAndGift(rawListID, rawGiftID)
	if err != nil {
		return newServiceError(opEditGift, reasonInvalid, err)
	}
	fields := input.normalized()
	price, err := parsePrice(fields.Price)
	if err != nil {
		return newServiceError(opEditGift, "invalid_price", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.readList(ctx, opEditGift, listID)
	if err != nil {
		return err
	}
	if !owner.Grants(list.CreatorToken) {
		return newServiceError(opEditGift, "not_owner", ErrUnauthorized)
	}
	index := list.FindGift(giftID)
	if index < 0 {
		return newServiceError(opEditGift, "gift_not_found", notFound("gift", giftID))
	}

	gift := &list.Gifts[index]
	gift.Name = giftName(fields.Name)
	gift.Price = price
	gift.Link = optionalString(fields.Link)
	gift.Note = optionalString(fields.Note)

	return s.writeList(ctx, opEditGift, list)
}

// DeleteGift removes a gift permanently. Deleting an unknown gift id is a no-op.
func (s *Store) DeleteGift(ctx context.Context, rawListID, rawGiftID string, owner ownership.Capability) error {
	listID, giftID, err := parseListAndGift(rawListID, rawGiftID)
	if err != nil {
		return newServiceError(opDeleteGift, reasonInvalid, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.readList(ctx, opDeleteGift, listID)
	if err != nil {
		return err
	}
	if !owner.Grants(list.CreatorToken) {
		return newServiceError(opDeleteGift, "not_owner", ErrUnauthorized)
	}
	index := list.FindGift(giftID)
	if index < 0 {
		return nil
	}

	list.Gifts = append(list.Gifts[:index:index], list.Gifts[index+1:]...)
	if err := s.writeList(ctx, opDeleteGift, list); err != nil {
		return err
	}

	s.logger.Debug("gift deleted", zap.String("list_id", listID.String()), zap.String("gift_id", giftID.String()))
	return nil
}

// ClaimGift records claimerName as the gift's claimant. A gift is claimed at most once;
// later attempts fail with *AlreadyClaimedError naming the first claimant.
func (s *Store) ClaimGift(ctx context.Context, rawListID, rawGiftID, claimerName string) (Gift, error) {
	listID, giftID, err := parseListAndGift(rawListID, rawGiftID)
	if err != nil {
		return Gift{}, newServiceError(opClaimGift, reasonInvalid, err)
	}
	claimer := strings.TrimSpace(claimerName)
	if claimer == "" {
		return Gift{}, newServiceError(opClaimGift, "missing_claimer", newValidationError(fieldClaimer, "your name is required to claim a gift"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.readList(ctx, opClaimGift, listID)
	if err != nil {
		return Gift{}, err
	}
	index := list.FindGift(giftID)
	if index < 0 {
		return Gift{}, newServiceError(opClaimGift, "gift_not_found", notFound("gift", giftID))
	}

	gift := &list.Gifts[index]
	if gift.IsClaimed() {
		return Gift{}, newServiceError(opClaimGift, "already_claimed", &AlreadyClaimedError{
			GiftID:    giftID,
			ClaimedBy: gift.Claimant(),
		})
	}
	gift.ClaimedBy = pointerTo(claimer)
	gift.ClaimedAt = pointerTo(s.clock().UnixMilli())

	if err := s.writeList(ctx, opClaimGift, list); err != nil {
		return Gift{}, err
	}

	s.logger.Debug("gift claimed", zap.String("list_id", listID.String()), zap.String("gift_id", giftID.String()))
	return *gift, nil
}

func (s *Store) readList(ctx context.Context, operation string, listID ListID) (List, error) {
	payload, ok, err := s.kv.Get(ctx, storage.ListKey(listID.String()))
	if err != nil {
		s.logError(operation, "list_read_failed", err, zap.String("list_id", listID.String()))
		return List{}, newServiceError(operation, "list_read_failed", err)
	}
	if !ok {
		return List{}, newServiceError(operation, "list_not_found", notFound("list", listID))
	}
	list, err := decodeList(payload, listID)
	if err != nil {
		s.loggerOrDefault().Warn("unreadable list record treated as absent",
			zap.String("operation", operation),
			zap.String("list_id", listID.String()),
			zap.Error(err))
		return List{}, newServiceError(operation, "list_not_found", notFound("list", listID))
	}
	return list, nil
}

func (s *Store) writeList(ctx context.Context, operation string, list List) error {
	if list.Gifts == nil {
		list.Gifts = []Gift{}
	}
	payload, err := json.Marshal(list)
	if err != nil {
		s.logError(operation, "list_encode_failed", err, zap.String("list_id", list.ID.String()))
		return newServiceError(operation, "list_encode_failed", err)
	}
	if err := s.kv.Set(ctx, storage.ListKey(list.ID.String()), string(payload)); err != nil {
		s.logError(operation, "list_write_failed", err, zap.String("list_id", list.ID.String()))
		return newServiceError(operation, "list_write_failed", err)
	}
	return nil
}

func (s *Store) uniqueGiftID(list List) (GiftID, error) {
	for attempt := 0; attempt < maxGiftIDAttempts; attempt++ {
		giftID, err := s.giftIDs.NewGiftID(s.clock())
		if err != nil {
			return "", err
		}
		if list.FindGift(giftID) < 0 {
			return giftID, nil
		}
	}
	return "", errors.New("gift id collided repeatedly")
}

func (s *Store) loggerOrDefault() *zap.Logger {
	if s == nil || s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Store) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("registry store error", attrs...)
}

func decodeList(payload string, listID ListID) (List, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" || trimmed == "null" {
		return List{}, errors.New("empty payload")
	}
	var list List
	if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
		return List{}, err
	}
	if list.ID == "" {
		list.ID = listID
	}
	if list.Gifts == nil {
		list.Gifts = []Gift{}
	}
	return list, nil
}

func parseListAndGift(rawListID, rawGiftID string) (ListID, GiftID, error) {
	listID, err := NewListID(rawListID)
	if err != nil {
		return "", "", err
	}
	giftID, err := NewGiftID(rawGiftID)
	if err != nil {
		return "", "", err
	}
	return listID, giftID, nil
}

func parsePrice(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return nil, newValidationError(fieldPrice, "price must be a non-negative number")
	}
	return &value, nil
}

func giftName(name string) string {
	if name == "" {
		return UnnamedGift
	}
	return name
}
