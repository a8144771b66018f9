package registry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/MarcoPoloResearchLab/giftlist/internal/ident"
	"github.com/google/uuid"
)

const (
	hashListIDLength = 8
	giftIDPrefix     = "gift"
	giftSuffixLength = 9
)

// ListIDProvider derives a list identifier from the list's descriptive fields and its
// creation instant.
type ListIDProvider interface {
	NewListID(seed string, createdAt time.Time) (ListID, error)
}

// GiftIDProvider issues gift identifiers.
type GiftIDProvider interface {
	NewGiftID(createdAt time.Time) (GiftID, error)
}

// HashListIDs renders a 32-bit rolling hash of seed+unixMillis as eight base-36
// characters. Collisions are possible and are not detected.
type HashListIDs struct{}

func (HashListIDs) NewListID(seed string, createdAt time.Time) (ListID, error) {
	return ListID(hashListID(seed + strconv.FormatInt(createdAt.UnixMilli(), 10))), nil
}

func hashListID(input string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(input)) {
		hash = (hash << 5) - hash + int32(unit)
	}
	magnitude := int64(hash)
	if magnitude < 0 {
		magnitude = -magnitude
	}
	rendered := strconv.FormatInt(magnitude, 36)
	if len(rendered) < hashListIDLength {
		rendered = strings.Repeat("0", hashListIDLength-len(rendered)) + rendered
	}
	return rendered[:hashListIDLength]
}

// UUIDListIDs issues UUIDv7 list identifiers and ignores the seed.
type UUIDListIDs struct{}

func (UUIDListIDs) NewListID(string, time.Time) (ListID, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return ListID(value.String()), nil
}

// ListIDProviderFor resolves a configured identifier scheme.
func ListIDProviderFor(scheme string) (ListIDProvider, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", "hash":
		return HashListIDs{}, nil
	case "uuid":
		return UUIDListIDs{}, nil
	default:
		return nil, fmt.Errorf("registry: unknown id scheme %q", scheme)
	}
}

type giftIDs struct {
	suffix func() (string, error)
}

// NewGiftIDs constructs the default gift_<unixMillis>_<suffix> provider.
func NewGiftIDs() GiftIDProvider {
	return &giftIDs{suffix: func() (string, error) {
		return ident.Base36Suffix(giftSuffixLength)
	}}
}

func (p *giftIDs) NewGiftID(createdAt time.Time) (GiftID, error) {
	suffix, err := p.suffix()
	if err != nil {
		return "", err
	}
	return GiftID(fmt.Sprintf("%s_%d_%s", giftIDPrefix, createdAt.UnixMilli(), suffix)), nil
}
