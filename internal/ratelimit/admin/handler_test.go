package admin

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"limitgate/internal/ratelimit/models"
	"limitgate/internal/ratelimit/service/requestlimit"
	allowliststore "limitgate/internal/ratelimit/store/allowlist"
	counterstore "limitgate/internal/ratelimit/store/counter"
)

const testToken = "test-admin-token"

type AdminHandlerSuite struct {
	suite.Suite
	allowlist *allowliststore.MemoryStore
	counters  *counterstore.MemoryStore
	router    http.Handler
}

func (s *AdminHandlerSuite) SetupTest() {
	s.allowlist = allowliststore.NewMemoryStore()
	s.counters = counterstore.NewMemoryStore()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter, err := requestlimit.New(s.counters, s.allowlist, requestlimit.WithLogger(logger))
	s.Require().NoError(err)

	s.router = NewHandler(s.allowlist, limiter, logger, testToken).Routes()
}

func (s *AdminHandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("X-Admin-Token", testToken)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AdminHandlerSuite) TestRequiresToken() {
	req := httptest.NewRequest(http.MethodGet, "/allowlist", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/allowlist", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AdminHandlerSuite) TestEmptyTokenDisablesAPI() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter, err := requestlimit.New(s.counters, s.allowlist, requestlimit.WithLogger(logger))
	s.Require().NoError(err)
	router := NewHandler(s.allowlist, limiter, logger, "").Routes()

	req := httptest.NewRequest(http.MethodGet, "/allowlist", nil)
	req.Header.Set("X-Admin-Token", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *AdminHandlerSuite) TestAddAndListAllowlist() {
	rec := s.do(http.MethodPost, "/allowlist", `{"type":"ip","identifier":"203.0.113.7","reason":"load test runner"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var created models.AllowlistEntry
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.NotEmpty(created.ID)
	s.Equal(models.AllowlistTypeIP, created.Type)
	s.Equal("203.0.113.7", created.Identifier)

	rec = s.do(http.MethodGet, "/allowlist", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var entries []*models.AllowlistEntry
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entries))
	s.Require().Len(entries, 1)
	s.Equal(created.ID, entries[0].ID)
}

func (s *AdminHandlerSuite) TestAddAllowlistRejectsBadInput() {
	rec := s.do(http.MethodPost, "/allowlist", `not json`)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/allowlist", `{"type":"hostname","identifier":"example.com"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/allowlist", `{"type":"ip","identifier":""}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *AdminHandlerSuite) TestRemoveAllowlistEntry() {
	rec := s.do(http.MethodPost, "/allowlist", `{"type":"user_id","identifier":"42","reason":"support escalation"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodDelete, "/allowlist/user_id/42", "")
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/allowlist", "")
	var entries []*models.AllowlistEntry
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entries))
	s.Empty(entries)
}

func (s *AdminHandlerSuite) TestRemoveRejectsUnknownType() {
	rec := s.do(http.MethodDelete, "/allowlist/hostname/example.com", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *AdminHandlerSuite) TestPeekCounter() {
	_, _, err := s.counters.Incr(s.T().Context(), "ratelimit:search:ip:203.0.113.7", time.Minute)
	s.Require().NoError(err)
	_, _, err = s.counters.Incr(s.T().Context(), "ratelimit:search:ip:203.0.113.7", time.Minute)
	s.Require().NoError(err)

	rec := s.do(http.MethodGet, "/counters/search/ip/203.0.113.7", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp models.CounterResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("ratelimit:search:ip:203.0.113.7", resp.Key)
	s.Equal(int64(2), resp.Count)
	s.InDelta(60, resp.TTLSecond, 1)
}

func (s *AdminHandlerSuite) TestPeekMissingCounterReturnsZero() {
	rec := s.do(http.MethodGet, "/counters/auth/user/99", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp models.CounterResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Zero(resp.Count)
}

func (s *AdminHandlerSuite) TestResetCounter() {
	key := "ratelimit:messaging:user:7"
	_, _, err := s.counters.Incr(s.T().Context(), key, time.Minute)
	s.Require().NoError(err)

	rec := s.do(http.MethodDelete, "/counters/messaging/user/7", "")
	s.Equal(http.StatusNoContent, rec.Code)

	count, _, err := s.counters.Peek(s.T().Context(), key)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *AdminHandlerSuite) TestCounterRejectsInvalidParams() {
	rec := s.do(http.MethodGet, "/counters/bogus/ip/203.0.113.7", "")
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/counters/search/session/abc", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}
