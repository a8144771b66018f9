package registry

import (
	"net/url"
	"strings"
)

// ShareQueryParameter names the query parameter that carries a list id in share links.
const ShareQueryParameter = "list"

// ShareURL returns baseURL with the list id attached as ?list=<id>. Other query
// parameters on baseURL are kept.
func ShareURL(baseURL string, listID ListID) (string, error) {
	if _, err := NewListID(listID.String()); err != nil {
		return "", newServiceError(opShareURL, reasonInvalid, err)
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", newServiceError(opShareURL, "invalid_base_url", newValidationError("share_base_url", "share base url must be absolute"))
	}
	query := parsed.Query()
	query.Set(ShareQueryParameter, listID.String())
	parsed.RawQuery = query.Encode()
	parsed.Fragment = ""
	return parsed.String(), nil
}

// ParseListReference accepts either a bare list id or a share link and returns the id.
func ParseListReference(reference string) (ListID, error) {
	trimmed := strings.TrimSpace(reference)
	if !strings.ContainsAny(trimmed, "?/") {
		listID, err := NewListID(trimmed)
		if err != nil {
			return "", newServiceError(opParseRef, reasonInvalid, err)
		}
		return listID, nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", newServiceError(opParseRef, "invalid_url", newValidationError(fieldListID, "share link could not be parsed"))
	}
	listID, err := NewListID(parsed.Query().Get(ShareQueryParameter))
	if err != nil {
		return "", newServiceError(opParseRef, "missing_list_parameter", err)
	}
	return listID, nil
}
