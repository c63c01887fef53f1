package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/pkg/jwt"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*entities.User
	signIns int
}

func (f *fakeUsers) Create(_ context.Context, u *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return entities.ErrUserAlreadyExists
		}
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, entities.ErrUserNotFound
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (f *fakeUsers) UpdateLastSignIn(_ context.Context, _ uuid.UUID) error {
	f.mu.Lock()
	f.signIns++
	f.mu.Unlock()
	return nil
}

type fakeOrgs struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*entities.Organization
}

func (f *fakeOrgs) Create(_ context.Context, org *entities.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[org.OrganizationID] = org
	return nil
}

func (f *fakeOrgs) FindByID(_ context.Context, id uuid.UUID) (*entities.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if org, ok := f.byID[id]; ok {
		return org, nil
	}
	return nil, entities.ErrOrganizationNotFound
}

type fakeReps struct {
	mu     sync.Mutex
	reps   []*entities.SalesRep
	creds  []*entities.UserAuth
	logins int
}

func (f *fakeReps) Create(_ context.Context, rep *entities.SalesRep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rep.SalesRepID = int64(len(f.reps) + 1)
	f.reps = append(f.reps, rep)
	return nil
}

func (f *fakeReps) CreateWithAuth(ctx context.Context, rep *entities.SalesRep, cred *entities.UserAuth) error {
	if err := f.Create(ctx, rep); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cred.ID = int64(len(f.creds) + 100)
	cred.SalesRepID = &rep.SalesRepID
	f.creds = append(f.creds, cred)
	return nil
}

func (f *fakeReps) FindByID(_ context.Context, id int64) (*entities.SalesRep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reps {
		if r.SalesRepID == id {
			return r, nil
		}
	}
	return nil, entities.ErrSalesRepNotFound
}

func (f *fakeReps) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]*entities.SalesRep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*entities.SalesRep{}
	for _, r := range f.reps {
		if r.OrganizationID == orgID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReps) FindAuthByEmail(_ context.Context, email string) (*entities.UserAuth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.creds {
		if c.Email == email && c.IsActive {
			return c, nil
		}
	}
	return nil, entities.ErrSalesRepNotFound
}

func (f *fakeReps) UpdateLastLogin(_ context.Context, _ int64) error {
	f.mu.Lock()
	f.logins++
	f.mu.Unlock()
	return nil
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*entities.Session
}

func (f *fakeSessions) Create(_ context.Context, s *entities.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSessions) FindByID(_ context.Context, id uuid.UUID) (*entities.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, entities.ErrSessionNotFound
}

func (f *fakeSessions) Revoke(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byID[id]; ok {
		s.Revoke()
	}
	return nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context, before time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.byID {
		if s.ExpiresAt.Before(before) {
			delete(f.byID, id)
		}
	}
	return nil
}

type fixture struct {
	svc      *Service
	users    *fakeUsers
	orgs     *fakeOrgs
	reps     *fakeReps
	sessions *fakeSessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    &fakeUsers{byID: map[uuid.UUID]*entities.User{}},
		orgs:     &fakeOrgs{byID: map[uuid.UUID]*entities.Organization{}},
		reps:     &fakeReps{},
		sessions: &fakeSessions{byID: map[uuid.UUID]*entities.Session{}},
	}
	manager := jwt.NewManager("user-secret", "rep-secret", time.Hour, "test")
	f.svc = NewService(f.users, f.orgs, f.reps, f.sessions, manager, nil)
	f.svc.hashCost = bcrypt.MinCost
	return f
}

func (f *fixture) registerManager(t *testing.T, email string) (*RegisterOutput, *Principal) {
	t.Helper()
	ctx := context.Background()
	out, err := f.svc.Register(ctx, RegisterInput{
		Email:     email,
		Password:  "secret1",
		FirstName: "Dana",
		Role:      entities.RoleManager,
	})
	if err != nil {
		t.Fatalf("register manager: %v", err)
	}
	tok, err := f.svc.Login(ctx, email, "secret1", SessionMeta{IPAddress: "127.0.0.1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	p, err := f.svc.Authenticate(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	return out, p
}

func TestRegisterManagerCreatesOrganization(t *testing.T) {
	f := newFixture(t)
	out, p := f.registerManager(t, "dana@example.com")

	org, ok := f.orgs.byID[out.OrganizationID]
	if !ok {
		t.Fatal("expected organization to be created")
	}
	if org.Name != "Dana's Organization" {
		t.Errorf("organization name: got %q", org.Name)
	}
	if !p.IsManager() || p.User == nil || p.User.ID != out.UserID {
		t.Errorf("unexpected principal: %+v", p)
	}
	if p.OrganizationID == nil || *p.OrganizationID != out.OrganizationID {
		t.Errorf("principal organization: got %v", p.OrganizationID)
	}
	if f.users.signIns != 1 {
		t.Errorf("sign ins recorded: got %d", f.users.signIns)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerManager(t, "dana@example.com")
	missingOrg := uuid.New()

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"sales rep without organization", RegisterInput{Email: "rep@example.com", Password: "secret1", Role: entities.RoleSalesRep}, usecaseErrors.ErrOrganizationRequired},
		{"unknown role", RegisterInput{Email: "x@example.com", Password: "secret1", Role: "admin"}, entities.ErrInvalidRole},
		{"short password", RegisterInput{Email: "x@example.com", Password: "abc", Role: entities.RoleManager}, entities.ErrInvalidPassword},
		{"duplicate email", RegisterInput{Email: "dana@example.com", Password: "secret1", Role: entities.RoleManager}, entities.ErrUserAlreadyExists},
		{"unknown organization", RegisterInput{Email: "y@example.com", Password: "secret1", Role: entities.RoleSalesRep, OrganizationID: &missingOrg}, entities.ErrOrganizationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Register(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegisterSalesRepAddsRepRecord(t *testing.T) {
	f := newFixture(t)
	mgr, _ := f.registerManager(t, "dana@example.com")

	out, err := f.svc.Register(context.Background(), RegisterInput{
		Email:          "Rep@Example.com",
		Password:       "secret1",
		FirstName:      "Sam",
		LastName:       "Lee",
		Role:           entities.RoleSalesRep,
		OrganizationID: &mgr.OrganizationID,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.OrganizationID != mgr.OrganizationID {
		t.Errorf("organization: got %s", out.OrganizationID)
	}
	if len(f.reps.reps) != 1 {
		t.Fatalf("expected one sales rep, got %d", len(f.reps.reps))
	}
	rep := f.reps.reps[0]
	if rep.Email != "rep@example.com" || rep.UserID == nil || *rep.UserID != out.UserID {
		t.Errorf("unexpected rep: %+v", rep)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.registerManager(t, "dana@example.com")
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, "dana@example.com", "wrong-password", SessionMeta{}); !errors.Is(err, usecaseErrors.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := f.svc.Login(ctx, "nobody@example.com", "secret1", SessionMeta{}); !errors.Is(err, usecaseErrors.ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	f.registerManager(t, "dana@example.com")
	ctx := context.Background()

	tok, err := f.svc.Login(ctx, "dana@example.com", "secret1", SessionMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	p, err := f.svc.Authenticate(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := f.svc.Logout(ctx, p); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, tok.AccessToken); !errors.Is(err, usecaseErrors.ErrSessionRevoked) {
		t.Errorf("expected revoked session, got %v", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Authenticate(ctx, ""); !errors.Is(err, usecaseErrors.ErrUnauthorized) {
		t.Errorf("empty token: got %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, entities.ErrInvalidToken) {
		t.Errorf("garbage token: got %v", err)
	}
}

func TestSalesRepLifecycle(t *testing.T) {
	f := newFixture(t)
	mgr, manager := f.registerManager(t, "dana@example.com")
	ctx := context.Background()

	rep, err := f.svc.CreateSalesRep(ctx, manager, CreateSalesRepInput{
		FirstName:   "Sam",
		LastName:    "Lee",
		Email:       "sam@example.com",
		PhoneNumber: "555-0100",
		Password:    "secret1",
	})
	if err != nil {
		t.Fatalf("create sales rep: %v", err)
	}
	if rep.OrganizationID != mgr.OrganizationID {
		t.Errorf("rep organization: got %s", rep.OrganizationID)
	}

	out, err := f.svc.SalesRepLogin(ctx, "SAM@example.com", "secret1", SessionMeta{})
	if err != nil {
		t.Fatalf("sales rep login: %v", err)
	}
	if out.ID != rep.SalesRepID || out.FullName != "Sam Lee" || out.Role != entities.RoleSalesRep {
		t.Errorf("unexpected login output: %+v", out)
	}

	p, err := f.svc.Authenticate(ctx, out.AccessToken)
	if err != nil {
		t.Fatalf("authenticate rep: %v", err)
	}
	if p.AuthType != jwt.AuthTypeSalesRep || p.Subject != strconv.FormatInt(rep.SalesRepID, 10) {
		t.Errorf("unexpected rep principal: %+v", p)
	}
	if p.IsManager() {
		t.Error("sales rep must not be a manager")
	}
	if p.OrganizationID == nil || *p.OrganizationID != mgr.OrganizationID {
		t.Errorf("rep principal organization: got %v", p.OrganizationID)
	}

	list, err := f.svc.ListSalesReps(ctx, p)
	if err != nil || len(list) != 1 {
		t.Fatalf("list reps: %v %d", err, len(list))
	}

	if _, err := f.svc.SalesRepLogin(ctx, "sam@example.com", "nope-nope", SessionMeta{}); !errors.Is(err, usecaseErrors.ErrInvalidCredentials) {
		t.Errorf("bad password: got %v", err)
	}
	if f.reps.logins != 1 {
		t.Errorf("last login updates: got %d", f.reps.logins)
	}
}

func TestCreateSalesRepPermissions(t *testing.T) {
	f := newFixture(t)
	_, manager := f.registerManager(t, "dana@example.com")
	ctx := context.Background()
	other := uuid.New()

	if _, err := f.svc.CreateSalesRep(ctx, manager, CreateSalesRepInput{
		OrganizationID: &other, FirstName: "A", Email: "a@example.com", Password: "secret1",
	}); !errors.Is(err, usecaseErrors.ErrForeignOrganization) {
		t.Errorf("foreign org: got %v", err)
	}

	rep := &Principal{AuthType: jwt.AuthTypeSalesRep, Role: entities.RoleSalesRep, OrganizationID: manager.OrganizationID}
	if _, err := f.svc.CreateSalesRep(ctx, rep, CreateSalesRepInput{
		FirstName: "A", Email: "a@example.com", Password: "secret1",
	}); !errors.Is(err, usecaseErrors.ErrManagerRequired) {
		t.Errorf("non manager: got %v", err)
	}

	if _, err := f.svc.CreateSalesRep(ctx, manager, CreateSalesRepInput{
		FirstName: "A", Email: "a@example.com", Password: "secret1",
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := f.svc.CreateSalesRep(ctx, manager, CreateSalesRepInput{
		FirstName: "B", Email: "a@example.com", Password: "secret1",
	}); !errors.Is(err, entities.ErrUserAlreadyExists) {
		t.Errorf("duplicate email: got %v", err)
	}
}

func TestOrganizationAccess(t *testing.T) {
	f := newFixture(t)
	mgr, manager := f.registerManager(t, "dana@example.com")
	ctx := context.Background()

	org, err := f.svc.GetOrganization(ctx, manager, mgr.OrganizationID)
	if err != nil || org.OrganizationID != mgr.OrganizationID {
		t.Fatalf("own organization: %v", err)
	}
	if _, err := f.svc.GetOrganization(ctx, manager, uuid.New()); !errors.Is(err, usecaseErrors.ErrForeignOrganization) {
		t.Errorf("foreign organization: got %v", err)
	}

	created, err := f.svc.CreateOrganization(ctx, manager, "  Acme  ")
	if err != nil || created.Name != "Acme" {
		t.Fatalf("create organization: %v %+v", err, created)
	}
	if _, err := f.svc.CreateOrganization(ctx, manager, " "); !errors.Is(err, usecaseErrors.ErrInvalidInput) {
		t.Errorf("blank name: got %v", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	f := newFixture(t)
	old := entities.NewSession("x", jwt.AuthTypeUser, time.Now().Add(-time.Minute))
	f.sessions.byID[old.ID] = old
	if err := f.svc.PurgeExpiredSessions(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.sessions.byID[old.ID]; ok {
		t.Error("expired session was not purged")
	}
}
