package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/logging"
	"github.com/dmitrijs2005/secondmind/internal/server/auth"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
	"github.com/dmitrijs2005/secondmind/internal/server/ratelimit"
	"github.com/dmitrijs2005/secondmind/internal/server/services"
)

const testSecret = "rest-test-secret"

// calls counts invocations of every fake service.
type calls struct {
	mu sync.Mutex
	n  map[string]int
}

func (c *calls) hit(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == nil {
		c.n = map[string]int{}
	}
	c.n[name]++
}

func (c *calls) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := 0
	for _, v := range c.n {
		sum += v
	}
	return sum
}

func (c *calls) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[name]
}

type fakeUsers struct {
	calls *calls
	err   error

	gotUserID string
	gotEmail  *string
}

func (f *fakeUsers) Register(ctx context.Context, email, password, name string) error {
	f.calls.hit("Register")
	return f.err
}

func (f *fakeUsers) VerifyEmail(ctx context.Context, token string) error {
	f.calls.hit("VerifyEmail")
	return f.err
}

func (f *fakeUsers) session(email string) (*services.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.Session{
		Token: "tok",
		User:  models.UserSummary{ID: "u-1", Email: email, Name: "Ann", Service: services.ServicePassword},
	}, nil
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.Session, error) {
	f.calls.hit("Login")
	return f.session(email)
}

func (f *fakeUsers) LoginWithGoogle(ctx context.Context, idToken string) (*services.Session, error) {
	f.calls.hit("LoginWithGoogle")
	return f.session("g@example.com")
}

func (f *fakeUsers) ChangePassword(ctx context.Context, userID, current, next string) error {
	f.calls.hit("ChangePassword")
	f.gotUserID = userID
	return f.err
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID, name string, email *string) (*models.UserSummary, error) {
	f.calls.hit("UpdateProfile")
	f.gotUserID = userID
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserSummary{ID: userID, Email: "ann@example.com", Name: name, Service: services.ServicePassword}, nil
}

type fakeEntities struct {
	calls *calls
	err   error
	recs  []*models.Record

	gotKind    models.Kind
	gotOwner   string
	gotID      string
	gotPayload map[string]any
}

func (f *fakeEntities) List(ctx context.Context, kind models.Kind, ownerID string) ([]*models.Record, error) {
	f.calls.hit("List")
	f.gotKind, f.gotOwner = kind, ownerID
	return f.recs, f.err
}

func (f *fakeEntities) Upsert(ctx context.Context, kind models.Kind, ownerID string, payload map[string]any) error {
	f.calls.hit("Upsert")
	f.gotKind, f.gotOwner, f.gotPayload = kind, ownerID, payload
	return f.err
}

func (f *fakeEntities) Delete(ctx context.Context, kind models.Kind, ownerID, externalID string) error {
	f.calls.hit("Delete")
	f.gotKind, f.gotOwner, f.gotID = kind, ownerID, externalID
	return f.err
}

type fakeDocuments struct {
	calls *calls
	err   error
}

func (f *fakeDocuments) UploadURL(ctx context.Context, ownerID string) (string, string, error) {
	f.calls.hit("UploadURL")
	if f.err != nil {
		return "", "", f.err
	}
	return "users/" + ownerID + "/k", "https://s3.example/put", nil
}

func (f *fakeDocuments) DownloadURL(ctx context.Context, ownerID, externalID string) (string, error) {
	f.calls.hit("DownloadURL")
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.example/get/" + externalID, nil
}

type fakeReminders struct {
	calls *calls
	err   error
	got   models.EventReminder
}

func (f *fakeReminders) Send(ctx context.Context, email string, ev models.EventReminder) error {
	f.calls.hit("SendReminder")
	f.got = ev
	return f.err
}

type fakeSummarizer struct {
	calls *calls
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.calls.hit("Summarize")
	if f.err != nil {
		return "", f.err
	}
	return "short " + text, nil
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeLimiter struct {
	decision ratelimit.Decision
	err      error
}

func (f fakeLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return f.decision, f.err
}

type fixture struct {
	calls     *calls
	users     *fakeUsers
	entities  *fakeEntities
	documents *fakeDocuments
	reminders *fakeReminders
	summary   *fakeSummarizer
	tokens    *auth.TokenService
	svc       Services
}

func newFixture() *fixture {
	c := &calls{}
	f := &fixture{
		calls:     c,
		users:     &fakeUsers{calls: c},
		entities:  &fakeEntities{calls: c},
		documents: &fakeDocuments{calls: c},
		reminders: &fakeReminders{calls: c},
		summary:   &fakeSummarizer{calls: c},
		tokens:    auth.NewTokenService([]byte(testSecret), time.Hour),
	}
	f.svc = Services{
		Users:      f.users,
		Entities:   f.entities,
		Documents:  f.documents,
		Reminders:  f.reminders,
		Summarizer: f.summary,
		Tokens:     f.tokens,
		DB:         fakePinger{},
	}
	return f
}

func (f *fixture) handler() http.Handler {
	return NewHTTPServer(":0", logging.Nop{}, f.svc, []string{"*"}).Routes()
}

func (f *fixture) bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := f.tokens.Issue(userID, userID+"@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return "Bearer " + tok
}

func (f *fixture) do(method, path, body, authz string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rr := httptest.NewRecorder()
	f.handler().ServeHTTP(rr, req)
	return rr
}
