package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/mansoorceksport/eventhub/internal/domain"
)

// FirebaseAuthClient defines the interface for Firebase Auth operations
// This allows mocking for tests
type FirebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService handles authentication and user registration
type AuthService struct {
	userRepo    domain.UserRepository
	authClient  FirebaseAuthClient
	tokens      *TokenService
	adminEmails map[string]bool
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	authClient FirebaseAuthClient,
	tokens *TokenService,
	adminEmails []string,
) *AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &AuthService{
		userRepo:    userRepo,
		authClient:  authClient,
		tokens:      tokens,
		adminEmails: admins,
	}
}

// LoginOrRegisterRequest contains the request params
type LoginOrRegisterRequest struct {
	FirebaseToken string
}

// LoginOrRegisterResponse contains the user and whether they were newly created
type LoginOrRegisterResponse struct {
	User      *domain.User
	Token     *AccessToken
	IsNewUser bool
	RoleAdded bool
}

// LoginOrRegister verifies a Firebase ID token, finds or creates the matching
// user and issues an access token.
func (s *AuthService) LoginOrRegister(ctx context.Context, req LoginOrRegisterRequest) (*LoginOrRegisterResponse, error) {
	token, err := s.authClient.VerifyIDToken(ctx, req.FirebaseToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid firebase token", domain.ErrUnauthorized)
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: firebase account has no email", domain.ErrInvalidInput)
	}
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	user, isNew, err := s.findOrCreateUser(ctx, token.UID, email, name, picture)
	if err != nil {
		return nil, err
	}

	roleAdded := false
	if s.adminEmails[strings.ToLower(email)] && !user.HasRole(domain.RoleAdmin) {
		if err := s.userRepo.AddRole(ctx, user.ID, domain.RoleAdmin); err != nil {
			return nil, fmt.Errorf("failed to grant admin role: %w", err)
		}
		user.Roles = append(user.Roles, domain.RoleAdmin)
		roleAdded = true
		log.Printf("[Auth] Granted admin role to %s", email)
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginOrRegisterResponse{
		User:      user,
		Token:     accessToken,
		IsNewUser: isNew,
		RoleAdded: roleAdded,
	}, nil
}

// GetUser returns the account behind an access token
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) findOrCreateUser(ctx context.Context, firebaseUID, email, name, picture string) (*domain.User, bool, error) {
	user, err := s.userRepo.GetByFirebaseUID(ctx, firebaseUID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to fetch user: %w", err)
	}

	// Pre-provisioned accounts are matched by email and linked on first login
	user, err = s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		if user.FirebaseUID != "" {
			return nil, false, fmt.Errorf("%w: email already linked to different account", domain.ErrConflict)
		}
		if err := s.userRepo.UpdateFirebaseUID(ctx, user.ID, firebaseUID); err != nil {
			return nil, false, fmt.Errorf("failed to link firebase account: %w", err)
		}
		user.FirebaseUID = firebaseUID
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to fetch user: %w", err)
	}

	firstName, lastName := splitName(name)
	user = &domain.User{
		FirebaseUID:     firebaseUID,
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		ProfileImageURL: picture,
		Roles:           []string{domain.RoleMember},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("[Auth] Registered new user %s", user.ID)
	return user, true, nil
}

// splitName puts the first word in the first name and the rest in the last name
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
