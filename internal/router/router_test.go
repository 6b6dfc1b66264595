package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ContentWarnings/Backend/internal/auth"
	"github.com/ContentWarnings/Backend/internal/handler"
	"github.com/ContentWarnings/Backend/internal/middleware"
	"github.com/ContentWarnings/Backend/internal/model"
	"github.com/ContentWarnings/Backend/internal/repository"
	"github.com/ContentWarnings/Backend/internal/service"
	"github.com/ContentWarnings/Backend/pkg/hash"
)

// kv is a minimal keyed store used to back every store interface in these tests.
type kv[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]V
	copy func(V) V
}

func newKV[K comparable, V any](cp func(V) V) *kv[K, V] {
	return &kv[K, V]{data: map[K]V{}, copy: cp}
}

func (s *kv[K, V]) get(k K) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[k]
	if !ok {
		var zero V
		return zero, repository.ErrNotFound
	}
	return s.copy(v), nil
}

func (s *kv[K, V]) put(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[k] = s.copy(v)
}

type warningStore struct{ *kv[string, *model.Warning] }

func (s warningStore) Get(_ context.Context, id string) (*model.Warning, error) { return s.get(id) }
func (s warningStore) Put(_ context.Context, w *model.Warning) error { s.put(w.ID, w); return nil }
func (s warningStore) Create(_ context.Context, w *model.Warning) error {
	if _, err := s.get(w.ID); err == nil {
		return repository.ErrDuplicateKey
	}
	s.put(w.ID, w)
	return nil
}
func (s warningStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[id]
	delete(s.data, id)
	return ok, nil
}
func (s warningStore) Existing(_ context.Context, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if _, err := s.get(id); err == nil {
			out[id] = true
		}
	}
	return out, nil
}

type movieStore struct{ *kv[int64, *model.MovieIndex] }

func (s movieStore) Get(_ context.Context, id int64) (*model.MovieIndex, error) { return s.get(id) }
func (s movieStore) Put(_ context.Context, m *model.MovieIndex) error { s.put(m.MovieID, m); return nil }

type contributorStore struct{ *kv[string, *model.Contributor] }

func (s contributorStore) Get(_ context.Context, id string) (*model.Contributor, error) {
	return s.get(id)
}
func (s contributorStore) Put(_ context.Context, c *model.Contributor) error {
	s.put(c.ContributorID, c)
	return nil
}

type ledgerStore struct{ *kv[string, *model.ContributionLedger] }

func (s ledgerStore) Get(_ context.Context, id string) (*model.ContributionLedger, error) {
	return s.get(id)
}
func (s ledgerStore) Put(_ context.Context, l *model.ContributionLedger) error {
	s.put(l.ContributorID, l)
	return nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()

	warnings := warningStore{newKV[string](func(w *model.Warning) *model.Warning {
		cp := *w
		cp.Upvoters = model.NewVoterSet(w.Upvoters.Slice()...)
		cp.Downvoters = model.NewVoterSet(w.Downvoters.Slice()...)
		return &cp
	})}
	movies := movieStore{newKV[int64](func(m *model.MovieIndex) *model.MovieIndex {
		return &model.MovieIndex{MovieID: m.MovieID, WarningIDs: append([]string{}, m.WarningIDs...)}
	})}
	contributors := contributorStore{newKV[string](func(c *model.Contributor) *model.Contributor {
		cp := *c
		cp.OwnedWarningIDs = append([]string{}, c.OwnedWarningIDs...)
		return &cp
	})}
	ledgers := ledgerStore{newKV[string](func(l *model.ContributionLedger) *model.ContributionLedger {
		cp := *l
		return &cp
	})}

	trust := service.NewTrustService()
	cascade := service.NewCascadeService(warnings, movies, contributors, nil, nil, log)
	ledger := service.NewLedgerService(warnings, contributors, ledgers, trust, nil, log)
	votes := service.NewVoteService(warnings, trust, cascade, nil, log)
	warningSvc := service.NewWarningService(warnings, movies, ledger, cascade, service.NewProfanityScreen(nil), nil, log)
	contributorSvc := service.NewContributorService(warnings, ledger, log)

	tokens := auth.NewTokenService("test-secret", time.Hour)

	var appCfg fiber.Config
	middleware.TrustProxies(&appCfg, []string{"0.0.0.0/0"})
	app := fiber.New(appCfg)
	Setup(app, &Handlers{
		Health:         handler.NewHealthHandler(okPinger{}, nil, nil, "test"),
		Warning:        handler.NewWarningHandler(warningSvc),
		Vote:           handler.NewVoteHandler(votes),
		Classification: handler.NewClassificationHandler(),
		Contributor:    handler.NewContributorHandler(contributorSvc),
	}, &Guards{
		Tokens: tokens,
		Hasher: hash.NewIdentityHasher("", 1),
	}, "*")

	return &testServer{app: app, tokens: tokens}
}

type call struct {
	method string
	path   string
	body   string
	user   string
	ip     string
}

func (s *testServer) do(t *testing.T, c call) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		tok, err := s.tokens.Issue(c.user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if c.ip != "" {
		req.Header.Set("CF-Connecting-IP", c.ip)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

const submitBody = `{"classification":"Spiders","intervals":[[5,10],[60,75]],"description":"big spider in the bath"}`

func TestHealthAndCatalogue(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, call{method: http.MethodGet, path: "/health/live"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = s.do(t, call{method: http.MethodGet, path: "/health/ready"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = s.do(t, call{method: http.MethodGet, path: "/api/classifications"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["classifications"], len(model.Classifications))

	status, body = s.do(t, call{method: http.MethodGet, path: "/api/classifications/description?name=Spiders"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["description"])

	status, body = s.do(t, call{method: http.MethodGet, path: "/api/classifications/description?name=Clowns"})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestSubmitRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, call{method: http.MethodPost, path: "/api/movies/550/warnings", body: submitBody})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(body))
}

func TestWarningLifecycle(t *testing.T) {
	s := newTestServer(t)
	const owner = "a@example.com"

	status, body := s.do(t, call{method: http.MethodPost, path: "/api/movies/550/warnings", body: submitBody, user: owner})
	require.Equal(t, fiber.StatusOK, status, body)
	id := body["warning"].(map[string]any)["id"].(string)
	assert.NotEmpty(t, id)
	assert.Len(t, body["movieWarnings"], 1)
	w := "/api/warnings/" + id

	status, body = s.do(t, call{method: http.MethodGet, path: w})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Spiders", body["classification"])
	assert.NotContains(t, body, "trust")
	assert.NotContains(t, body, "upvoters")

	status, body = s.do(t, call{method: http.MethodGet, path: "/api/movies/550/warnings"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["warnings"], 1)

	// Voting
	status, body = s.do(t, call{method: http.MethodPost, path: w + "/upvote", ip: "203.0.113.1"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["upvoted"])
	assert.Equal(t, 1.0, body["trust"])

	status, body = s.do(t, call{method: http.MethodPost, path: w + "/upvote", ip: "203.0.113.1"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "ALREADY_VOTED", errorCode(body))

	status, body = s.do(t, call{method: http.MethodGet, path: w + "/vote", ip: "203.0.113.1"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "upvoted", body["response"])

	status, body = s.do(t, call{method: http.MethodGet, path: w + "/vote", ip: "203.0.113.2"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "nothing", body["response"])

	// Editing
	edit := `{"classification":"Spiders","movieId":550,"intervals":[[5,12]],"description":"spider, twice"}`
	status, body = s.do(t, call{method: http.MethodPost, path: w, body: edit, user: "b@example.com"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, call{method: http.MethodPost, path: w, body: edit, user: owner})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "spider, twice", body["warning"].(map[string]any)["description"])

	// Votes were reset by the edit.
	status, body = s.do(t, call{method: http.MethodGet, path: w + "/vote", ip: "203.0.113.1"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "nothing", body["response"])

	status, body = s.do(t, call{method: http.MethodGet, path: "/api/contributors/me", user: owner})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, owner, body["id"])
	assert.Len(t, body["contributions"], 1)
	assert.NotContains(t, body, "isLowTrust")

	// An empty edit body deletes.
	status, body = s.do(t, call{method: http.MethodPost, path: w, user: owner})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "owner", body["deletion"].(map[string]any)["trigger"])

	status, _ = s.do(t, call{method: http.MethodGet, path: w})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDownvotesDeleteWarning(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, call{method: http.MethodPost, path: "/api/movies/550/warnings", body: submitBody, user: "a@example.com"})
	require.Equal(t, fiber.StatusOK, status)
	id := body["warning"].(map[string]any)["id"].(string)

	for i := 1; i <= 5; i++ {
		status, body = s.do(t, call{method: http.MethodPost, path: "/api/warnings/" + id + "/downvote", ip: fmt.Sprintf("203.0.113.%d", i)})
		require.Equal(t, fiber.StatusOK, status, body)
	}
	assert.Equal(t, true, body["deleted"])

	status, body = s.do(t, call{method: http.MethodGet, path: "/api/movies/550/warnings"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["warnings"])
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t)
	user := "a@example.com"

	tests := []struct {
		name string
		call call
		want int
		code string
	}{
		{"bad movie id", call{method: http.MethodGet, path: "/api/movies/abc/warnings"}, fiber.StatusBadRequest, "INVALID_FIELD"},
		{"bad warning id", call{method: http.MethodGet, path: "/api/warnings/bad%20id"}, fiber.StatusBadRequest, "INVALID_FIELD"},
		{"malformed body", call{method: http.MethodPost, path: "/api/movies/550/warnings", body: `{"classification":`, user: user}, fiber.StatusBadRequest, "INVALID_BODY"},
		{"unknown classification", call{method: http.MethodPost, path: "/api/movies/550/warnings", body: `{"classification":"Clowns"}`, user: user}, fiber.StatusBadRequest, "INVALID_FIELD"},
		{"bad interval", call{method: http.MethodPost, path: "/api/movies/550/warnings", body: `{"classification":"Gore","intervals":[[9,1]]}`, user: user}, fiber.StatusBadRequest, "INVALID_FIELD"},
		{"profanity", call{method: http.MethodPost, path: "/api/movies/550/warnings", body: `{"classification":"Gore","description":"holy shit"}`, user: user}, fiber.StatusNotAcceptable, "CONTENT_REJECTED"},
		{"vote on missing warning", call{method: http.MethodPost, path: "/api/warnings/nope/upvote", ip: "203.0.113.9"}, fiber.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, tt.call)
			assert.Equal(t, tt.want, status, body)
			assert.Equal(t, tt.code, errorCode(body))
		})
	}
}

func TestSubmitIgnoresClientID(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, call{method: http.MethodPost, path: "/api/movies/550/warnings", body: submitBody, user: "a@example.com"})
	require.Equal(t, fiber.StatusOK, status, body)
	first := body["warning"].(map[string]any)["id"].(string)

	reused := fmt.Sprintf(`{"id":%q,"classification":"Gore","intervals":[[1,2]],"description":"again"}`, first)
	status, body = s.do(t, call{method: http.MethodPost, path: "/api/movies/550/warnings", body: reused, user: "b@example.com"})
	require.Equal(t, fiber.StatusOK, status, body)
	second := body["warning"].(map[string]any)["id"].(string)
	assert.NotEqual(t, first, second)
	assert.Len(t, body["movieWarnings"], 2)

	status, body = s.do(t, call{method: http.MethodDelete, path: "/api/warnings/" + second, user: "a@example.com"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
}
