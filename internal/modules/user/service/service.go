package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/internal/modules/user/dto"
	"anoa.com/akademia/internal/modules/user/repository"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/authz"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService is the single write path for sessions: Login issues a token,
// nothing else ever mutates session state.
type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Register(ctx context.Context, input dto.RegisterInput) (*entity.Profile, error)
	Me(ctx context.Context, profileID uuid.UUID) (*dto.MeResponse, error)
	AssignRole(ctx context.Context, req dto.AssignRoleRequest) error
	RevokeRole(ctx context.Context, assignmentID uuid.UUID) error
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo repository.UserRepository) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	ttl := time.Hour
	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		if minutes, err := strconv.Atoi(ttlStr); err == nil {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: ttl,
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	assignments, err := s.repo.RolesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		Profile:     user.Profile,
		Roles:       entity.RoleSetOf(assignments).Slice(),
	}, nil
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*entity.Profile, error) {
	role, err := authz.ParseRole(input.Role)
	if err != nil {
		return nil, apperror.Precondition(err.Error())
	}

	if existing, _ := s.repo.FindByEmail(ctx, input.Email); existing != nil {
		return nil, apperror.New(http.StatusConflict, "email already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{Email: input.Email, PasswordHash: string(hash)}
	profile := &entity.Profile{FullName: input.FullName}
	if input.Phone != "" {
		profile.Phone = &input.Phone
	}
	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, err
	}

	if err := s.repo.AssignRole(ctx, &entity.RoleAssignment{
		UserID: user.ID,
		Role:   role.String(),
	}); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *authService) Me(ctx context.Context, profileID uuid.UUID) (*dto.MeResponse, error) {
	profile, err := s.repo.FindProfileByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	assignments, err := s.repo.RolesForUser(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}

	resp := &dto.MeResponse{
		Profile:     profile,
		Roles:       entity.RoleSetOf(assignments).Slice(),
		Assignments: assignments,
	}
	// The current organization is whichever one the actor's role
	// assignments point at; one active organization per session.
	for _, a := range assignments {
		if a.Organization != nil {
			resp.Organization = a.Organization
			break
		}
	}
	return resp, nil
}

func (s *authService) AssignRole(ctx context.Context, req dto.AssignRoleRequest) error {
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		return apperror.Precondition(err.Error())
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperror.Precondition("invalid user id")
	}

	assignment := &entity.RoleAssignment{
		UserID: userID,
		Role:   role.String(),
	}
	if req.OrganizationID != "" {
		orgID, err := uuid.Parse(req.OrganizationID)
		if err != nil {
			return apperror.Precondition("invalid organization id")
		}
		assignment.OrganizationID = &orgID
	}

	return s.repo.AssignRole(ctx, assignment)
}

func (s *authService) RevokeRole(ctx context.Context, assignmentID uuid.UUID) error {
	return s.repo.RevokeRole(ctx, assignmentID)
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
