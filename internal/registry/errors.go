package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or malformed input field.
	ErrValidation = errors.New("registry: validation failed")
	// ErrNotFound marks an absent (or unreadable) list, or an absent gift.
	ErrNotFound = errors.New("registry: not found")
	// ErrUnauthorized marks a capability that does not match the list's creator token.
	ErrUnauthorized = errors.New("registry: not authorized")
	// ErrAlreadyClaimed marks a claim on a gift that already has a claimant.
	ErrAlreadyClaimed = errors.New("registry: gift already claimed")

	errMissingKV = errors.New("key-value store is required")
)

const (
	fieldTitle     = "title"
	fieldCelebrant = "celebrant"
	fieldDate      = "date"
	fieldListID    = "list_id"
	fieldGiftID    = "gift_id"
	fieldGift      = "gift"
	fieldPrice     = "price"
	fieldClaimer   = "claimer_name"
	fieldPayload   = "payload"
)

// ValidationError reports the offending field along with a user-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AlreadyClaimedError carries the claimant that got there first.
type AlreadyClaimedError struct {
	GiftID    GiftID
	ClaimedBy string
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("gift already claimed by %s", e.ClaimedBy)
}

func (e *AlreadyClaimedError) Is(target error) bool {
	return target == ErrAlreadyClaimed
}

// ServiceError tags a failure with a stable operation.reason code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opStoreNew    = "registry.store.new"
	opCreateList  = "registry.create_list"
	opGetList     = "registry.get_list"
	opSaveList    = "registry.save_list"
	opOpenList    = "registry.open_list"
	opLists       = "registry.lists"
	opAddGift     = "registry.add_gift"
	opEditGift    = "registry.edit_gift"
	opDeleteGift  = "registry.delete_gift"
	opClaimGift   = "registry.claim_gift"
	opImport      = "registry.import_entries"
	opShareURL    = "registry.share_url"
	opParseRef    = "registry.parse_reference"
	reasonInvalid = "invalid_input"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

func notFound(what string, id fmt.Stringer) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
}
