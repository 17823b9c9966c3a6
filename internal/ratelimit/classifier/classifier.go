// Package classifier maps requests to rate limit categories.
//
// Classification is total and deterministic: every (path, method) pair maps
// to exactly one category, and overlapping paths resolve by fixed priority
// auth > upload > search > messaging > default. Changing that order changes
// which ceiling applies, so it is pinned by tests.
package classifier

import (
	"net/http"
	"strings"

	"limitgate/internal/ratelimit/models"
)

var authPaths = []string{"/auth", "/login", "/register", "/token", "/password"}

// Classify returns the category for a request path and method.
func Classify(path, method string) models.Category {
	p := strings.ToLower(path)

	for _, ap := range authPaths {
		if strings.Contains(p, ap) {
			return models.CategoryAuth
		}
	}

	if isWriteMethod(method) && (strings.Contains(p, "upload") || strings.Contains(p, "video")) {
		return models.CategoryUpload
	}

	if strings.Contains(p, "search") {
		return models.CategorySearch
	}

	if strings.Contains(p, "message") || strings.Contains(p, "chat") {
		return models.CategoryMessaging
	}

	return models.CategoryDefault
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
