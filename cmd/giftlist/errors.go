package main

import (
	"errors"
	"strings"

	"github.com/MarcoPoloResearchLab/giftlist/internal/registry"
)

const (
	messageNotOwner     = "only the creator of this list can change it"
	messageListNotFound = "list not found: check the link or id"
	messageGiftNotFound = "gift not found on this list"
)

// describeError turns a command failure into the one line shown to the user.
func describeError(err error) string {
	var claimedErr *registry.AlreadyClaimedError
	if errors.As(err, &claimedErr) {
		return "this gift has already been claimed by " + claimedErr.ClaimedBy
	}
	var validationErr *registry.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	if errors.Is(err, registry.ErrUnauthorized) {
		return messageNotOwner
	}
	if errors.Is(err, registry.ErrNotFound) {
		var serviceErr *registry.ServiceError
		if errors.As(err, &serviceErr) && strings.HasSuffix(serviceErr.Code(), "gift_not_found") {
			return messageGiftNotFound
		}
		return messageListNotFound
	}
	return err.Error()
}
