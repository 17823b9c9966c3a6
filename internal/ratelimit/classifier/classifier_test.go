package classifier

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"limitgate/internal/ratelimit/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		method string
		want   models.Category
	}{
		{"login path", "/api/auth/login", http.MethodPost, models.CategoryAuth},
		{"token path", "/api/token/refresh", http.MethodPost, models.CategoryAuth},
		{"auth path with GET", "/api/auth/session", http.MethodGet, models.CategoryAuth},
		{"password reset", "/api/password-reset", http.MethodPost, models.CategoryAuth},
		{"video upload", "/api/videos/upload", http.MethodPost, models.CategoryUpload},
		{"video write", "/api/video/123", http.MethodPut, models.CategoryUpload},
		{"video read is not upload", "/api/video/123", http.MethodGet, models.CategoryDefault},
		{"upload patch", "/api/upload/chunk", http.MethodPatch, models.CategoryUpload},
		{"search", "/api/search", http.MethodGet, models.CategorySearch},
		{"search with query path", "/api/parties/search", http.MethodGet, models.CategorySearch},
		{"messages", "/api/parties/42/messages", http.MethodPost, models.CategoryMessaging},
		{"chat", "/api/chat/history", http.MethodGet, models.CategoryMessaging},
		{"plain path", "/api/parties/42", http.MethodGet, models.CategoryDefault},
		{"root", "/", http.MethodGet, models.CategoryDefault},
		{"case insensitive", "/API/AUTH/LOGIN", http.MethodPost, models.CategoryAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path, tt.method))
		})
	}
}

// Overlapping paths must resolve by fixed priority: auth wins over upload,
// upload over search, search over messaging.
func TestClassifyPriority(t *testing.T) {
	assert.Equal(t, models.CategoryAuth, Classify("/auth/upload/search/message", http.MethodPost))
	assert.Equal(t, models.CategoryUpload, Classify("/upload/search/message", http.MethodPost))
	assert.Equal(t, models.CategorySearch, Classify("/search/message", http.MethodPost))
	assert.Equal(t, models.CategoryMessaging, Classify("/message/other", http.MethodPost))
}

// Same input, same category, every time.
func TestClassifyDeterministic(t *testing.T) {
	first := Classify("/api/videos/upload", http.MethodPost)
	for range 100 {
		assert.Equal(t, first, Classify("/api/videos/upload", http.MethodPost))
	}
}

func TestClassifyAuthRegardlessOfMethod(t *testing.T) {
	for _, method := range []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodHead,
	} {
		assert.Equal(t, models.CategoryAuth, Classify("/api/auth/session", method), method)
	}
}
