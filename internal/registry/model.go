package registry

import (
	"fmt"
	"strings"
)

const (
	maxIdentifierLength = 190
	// UnnamedGift replaces an empty gift name.
	UnnamedGift = "Unnamed gift"
)

// ListID is a validated list identifier.
type ListID string

// NewListID validates raw input and returns a ListID.
func NewListID(rawInput string) (ListID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", newValidationError(fieldListID, "list id is required")
	}
	if len(trimmed) > maxIdentifierLength {
		return "", newValidationError(fieldListID, fmt.Sprintf("list id exceeds %d characters", maxIdentifierLength))
	}
	return ListID(trimmed), nil
}

// String returns the underlying identifier.
func (id ListID) String() string {
	return string(id)
}

// GiftID is a validated gift identifier, unique within its list.
type GiftID string

// NewGiftID validates raw input and returns a GiftID.
func NewGiftID(rawInput string) (GiftID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", newValidationError(fieldGiftID, "gift id is required")
	}
	if len(trimmed) > maxIdentifierLength {
		return "", newValidationError(fieldGiftID, fmt.Sprintf("gift id exceeds %d characters", maxIdentifierLength))
	}
	return GiftID(trimmed), nil
}

// String returns the underlying identifier.
func (id GiftID) String() string {
	return string(id)
}

// List is one gift registry. Timestamps are unix milliseconds so stored payloads stay
// interchangeable with browser exports.
type List struct {
	ID           ListID `json:"id"`
	Title        string `json:"title"`
	Celebrant    string `json:"celebrant"`
	Date         string `json:"date"`
	CreatorToken string `json:"creatorToken"`
	CreatedAt    int64  `json:"createdAt"`
	Gifts        []Gift `json:"gifts"`
}

// FindGift returns the position of the gift with the provided id, or -1.
func (l List) FindGift(giftID GiftID) int {
	for index := range l.Gifts {
		if l.Gifts[index].ID == giftID {
			return index
		}
	}
	return -1
}

// ClaimedCount reports how many gifts have been claimed.
func (l List) ClaimedCount() int {
	claimed := 0
	for _, gift := range l.Gifts {
		if gift.IsClaimed() {
			claimed++
		}
	}
	return claimed
}

// Gift is one claimable line item.
type Gift struct {
	ID        GiftID   `json:"id"`
	Name      string   `json:"name"`
	Price     *float64 `json:"price"`
	Link      *string  `json:"link"`
	Note      *string  `json:"note"`
	ClaimedBy *string  `json:"claimedBy"`
	ClaimedAt *int64   `json:"claimedAt,omitempty"`
}

// IsClaimed reports whether someone has claimed the gift.
func (g Gift) IsClaimed() bool {
	return g.ClaimedBy != nil && *g.ClaimedBy != ""
}

// Claimant returns the claimant name, or an empty string when unclaimed.
func (g Gift) Claimant() string {
	if g.ClaimedBy == nil {
		return ""
	}
	return *g.ClaimedBy
}

// ListInput carries the user-supplied fields of a new list.
type ListInput struct {
	Title     string
	Celebrant string
	Date      string
}

// GiftInput carries the editable gift fields as entered. Price is parsed as a decimal.
type GiftInput struct {
	Name  string
	Price string
	Link  string
	Note  string
}

func (in GiftInput) normalized() GiftInput {
	return GiftInput{
		Name:  strings.TrimSpace(in.Name),
		Price: strings.TrimSpace(in.Price),
		Link:  strings.TrimSpace(in.Link),
		Note:  strings.TrimSpace(in.Note),
	}
}

func (in GiftInput) isEmpty() bool {
	return in.Name == "" && in.Price == "" && in.Link == "" && in.Note == ""
}

// ListView is a loaded list together with the viewer's rights on it.
type ListView struct {
	List    List
	CanEdit bool
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	v := value
	return &v
}

func pointerTo[T any](value T) *T {
	v := value
	return &v
}
