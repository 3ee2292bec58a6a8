package services

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/dbx"
	"github.com/dmitrijs2005/secondmind/internal/logging"
	"github.com/dmitrijs2005/secondmind/internal/server/auth"
	"github.com/dmitrijs2005/secondmind/internal/server/config"
	"github.com/dmitrijs2005/secondmind/internal/server/federated"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/entities"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/users"
)

// -------- in-memory credential store --------

type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) find(match func(*models.User) bool) *models.User {
	for _, u := range m.byID {
		if match(u) {
			return u
		}
	}
	return nil
}

func (m *memUsers) insert(u *models.User) *models.User {
	m.nextID++
	u.ID = "u-" + strconv.Itoa(m.nextID)
	cp := *u
	m.byID[u.ID] = &cp
	return u
}

func (m *memUsers) CreateWithEmail(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(func(x *models.User) bool { return x.Email == u.Email }) != nil {
		return nil, common.ErrorAlreadyExists
	}
	return m.insert(u), nil
}

func (m *memUsers) get(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.find(match)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.get(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.get(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) GetByFederatedSubject(ctx context.Context, sub string) (*models.User, error) {
	return m.get(func(u *models.User) bool { return u.GoogleID == sub })
}

func (m *memUsers) UpsertByFederatedSubject(ctx context.Context, u *models.User, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing := m.find(func(x *models.User) bool { return x.GoogleID == u.GoogleID }); existing != nil {
		existing.Name = u.Name
		existing.UpdatedAt = now
		cp := *existing
		return &cp, nil
	}
	if u.Email != "" && m.find(func(x *models.User) bool { return x.Email == u.Email }) != nil {
		return nil, common.ErrorAlreadyExists
	}
	u.IsVerified = true
	return m.insert(u), nil
}

func (m *memUsers) RedeemVerificationToken(ctx context.Context, token string, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.find(func(x *models.User) bool {
		return x.VerificationToken == token && x.VerificationExpires.After(now)
	})
	if u == nil {
		return "", common.ErrorNotFound
	}
	u.IsVerified = true
	u.VerificationToken = ""
	u.VerificationExpires = time.Time{}
	return u.ID, nil
}

func (m *memUsers) SetVerified(ctx context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsVerified = true
	return nil
}

func (m *memUsers) SetPasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) UpdateProfile(ctx context.Context, id, name string, email *string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if email != nil {
		if other := m.find(func(x *models.User) bool { return x.Email == *email && x.ID != id }); other != nil {
			return nil, common.ErrorAlreadyExists
		}
		u.Email = *email
	}
	u.Name = name
	cp := *u
	return &cp, nil
}

// -------- repository manager --------

type fakeRepoMgr struct {
	repomanager.RepositoryManager
	users    users.Repository
	entities entities.Repository
}

func (f *fakeRepoMgr) Users(dbx.DBTX) users.Repository       { return f.users }
func (f *fakeRepoMgr) Entities(dbx.DBTX) entities.Repository { return f.entities }

// -------- collaborators --------

type fakeNotifier struct {
	mu    sync.Mutex
	links []string
	err   error
}

func (f *fakeNotifier) SendVerification(ctx context.Context, email, name, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, link)
	return f.err
}

func (f *fakeNotifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.links)
}

type fakeVerifier struct {
	id  *federated.Identity
	err error
}

func (f *fakeVerifier) Verify(ctx context.Context, assertion string) (*federated.Identity, error) {
	return f.id, f.err
}

// -------- helpers --------

type userFixture struct {
	svc      *UserService
	users    *memUsers
	notifier *fakeNotifier
	verifier *fakeVerifier
	tokens   *auth.TokenService
	mock     sqlmock.Sqlmock
	clock    *time.Time
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		VerificationTokenValidityDuration: time.Hour,
		VerificationBaseURL:               "http://localhost:3000/verificationMail/verify",
	}

	f := &userFixture{
		users:    newMemUsers(),
		notifier: &fakeNotifier{},
		verifier: &fakeVerifier{},
		tokens:   auth.NewTokenService([]byte("test-secret"), 7*24*time.Hour),
		mock:     mock,
	}
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	f.clock = &clock

	f.svc = NewUserService(db, &fakeRepoMgr{users: f.users}, f.tokens, f.verifier, f.notifier, logging.Nop{}, cfg)
	f.svc.now = func() time.Time { return *f.clock }
	return f
}

func (f *userFixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
