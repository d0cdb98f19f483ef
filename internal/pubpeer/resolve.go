// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubpeer

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractPublicationID parses an arbitrary reference, a full detail-page
// URL or a bare record id, into the canonical record id.
//
// For absolute URLs the id is the path segment after "publications", or
// the last path segment when no "publications" segment exists. Anything
// else is treated as a bare id. A trailing #fragment is stripped in both
// cases.
func ExtractPublicationID(reference string) (string, error) {
	candidate := strings.TrimSpace(reference)
	if candidate == "" {
		return "", fmt.Errorf("%w: reference is empty", ErrInvalidReference)
	}

	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		parsed, err := url.Parse(candidate)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidReference, reference)
		}
		path := strings.Trim(parsed.Path, "/")
		var segments []string
		if path != "" {
			segments = strings.Split(path, "/")
		}
		if i := indexOf(segments, "publications"); i >= 0 {
			if i+1 >= len(segments) {
				return "", fmt.Errorf("%w: no id after publications segment in %q", ErrInvalidReference, reference)
			}
			candidate = segments[i+1]
		} else if len(segments) > 0 {
			candidate = segments[len(segments)-1]
		}
	}

	if i := strings.Index(candidate, "#"); i >= 0 {
		candidate = candidate[:i]
	}
	if candidate == "" {
		return "", fmt.Errorf("%w: cannot extract id from %q", ErrInvalidReference, reference)
	}
	return candidate, nil
}

func indexOf(segments []string, want string) int {
	for i, s := range segments {
		if s == want {
			return i
		}
	}
	return -1
}
