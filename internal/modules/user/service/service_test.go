package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/internal/modules/user/dto"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/authz"
)

type fakeUserRepo struct {
	users       map[uuid.UUID]*entity.User
	profiles    map[uuid.UUID]*entity.Profile
	assignments map[uuid.UUID][]entity.RoleAssignment
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       map[uuid.UUID]*entity.User{},
		profiles:    map[uuid.UUID]*entity.Profile{},
		assignments: map[uuid.UUID][]entity.RoleAssignment{},
	}
}

func (f *fakeUserRepo) seedUser(t *testing.T, email, password string, roles ...authz.Role) *entity.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password failed: %v", err)
	}

	user := &entity.User{ID: uuid.New(), Email: email, PasswordHash: string(hash)}
	profile := &entity.Profile{ID: uuid.New(), UserID: user.ID, FullName: "Seeded User", Email: email}
	user.Profile = profile

	f.users[user.ID] = user
	f.profiles[profile.ID] = profile
	for _, r := range roles {
		f.assignments[user.ID] = append(f.assignments[user.ID], entity.RoleAssignment{
			ID:     uuid.New(),
			UserID: user.ID,
			Role:   r.String(),
		})
	}
	return user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.UserID = user.ID
	profile.Email = user.Email
	f.users[user.ID] = user
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindProfileByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeUserRepo) FindProfileByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return nil
}

func (f *fakeUserRepo) RolesForUser(ctx context.Context, userID uuid.UUID) ([]entity.RoleAssignment, error) {
	return f.assignments[userID], nil
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, assignment *entity.RoleAssignment) error {
	f.assignments[assignment.UserID] = append(f.assignments[assignment.UserID], *assignment)
	return nil
}

func (f *fakeUserRepo) RevokeRole(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeUserRepo) FindProfilesByRole(ctx context.Context, role string, search string) ([]entity.Profile, error) {
	return nil, nil
}

func TestLoginIssuesTokenWithUserSubject(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.seedUser(t, "teacher@school.test", "secret-pass", authz.RoleTeacher)
	svc := NewAuthService(repo)

	resp, err := svc.Login(context.Background(), dto.LoginInput{
		Email:    "teacher@school.test",
		Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if resp.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", resp.TokenType)
	}
	if len(resp.Roles) != 1 || resp.Roles[0] != authz.RoleTeacher {
		t.Errorf("roles = %v, want [teacher]", resp.Roles)
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, claims); err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("token subject = %q, want user id %q", claims.Subject, user.ID)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seedUser(t, "teacher@school.test", "secret-pass")
	svc := NewAuthService(repo)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "teacher@school.test", password: "not-it"},
		{name: "unknown email", email: "nobody@school.test", password: "secret-pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(context.Background(), dto.LoginInput{Email: tt.email, Password: tt.password})
			if err == nil {
				t.Fatal("expected login to fail")
			}
			if resp != nil {
				t.Error("failed login must not return a token")
			}
		})
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), dto.RegisterInput{
		Email:    "new@school.test",
		Password: "password1",
		FullName: "New User",
		Role:     "wizard",
	})
	if !errors.Is(err, apperror.ErrPrecondition) {
		t.Fatalf("expected precondition error for unknown role, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seedUser(t, "taken@school.test", "whatever")
	svc := NewAuthService(repo)

	_, err := svc.Register(context.Background(), dto.RegisterInput{
		Email:    "taken@school.test",
		Password: "password1",
		FullName: "Someone Else",
		Role:     authz.RoleStudent.String(),
	})
	if err == nil {
		t.Fatal("expected duplicate email to fail")
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 409 {
		t.Errorf("expected 409 conflict, got %v", err)
	}
}

func TestRegisterAssignsRequestedRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	profile, err := svc.Register(context.Background(), dto.RegisterInput{
		Email:    "student@school.test",
		Password: "password1",
		FullName: "A Student",
		Role:     authz.RoleStudent.String(),
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	assignments := repo.assignments[profile.UserID]
	if len(assignments) != 1 || assignments[0].Role != authz.RoleStudent.String() {
		t.Errorf("assignments = %v, want a single student role", assignments)
	}
}

func TestRoleSetOfSkipsUnknownRoles(t *testing.T) {
	set := entity.RoleSetOf([]entity.RoleAssignment{
		{Role: "teacher"},
		{Role: "time_traveler"},
		{Role: "student"},
	})

	if len(set) != 2 {
		t.Errorf("set size = %d, want 2 with the unknown role skipped", len(set))
	}
	if !set.Has(authz.RoleTeacher) || !set.Has(authz.RoleStudent) {
		t.Error("known roles must survive the conversion")
	}
}
