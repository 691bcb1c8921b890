package services

import (
	"context"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

var (
	authRegister       = routes.Key{Domain: routes.DomainAuth, Operation: "register"}
	authLogin          = routes.Key{Domain: routes.DomainAuth, Operation: "login"}
	authLogout         = routes.Key{Domain: routes.DomainAuth, Operation: "logout"}
	authMe             = routes.Key{Domain: routes.DomainAuth, Operation: "me"}
	authValidate       = routes.Key{Domain: routes.DomainAuth, Operation: "validate"}
	authChangePassword = routes.Key{Domain: routes.DomainAuth, Operation: "change_password"}
	authUpdateUser     = routes.Key{Domain: routes.DomainAuth, Operation: "update_user"}
)

// AuthService talks to the auth backend. Calls that need a session read the
// bearer token from the context (see dispatch.WithBearerToken).
type AuthService struct {
	D Dispatcher
}

// Register creates an account and returns its session.
func (s *AuthService) Register(ctx context.Context, in domain.RegisterRequest) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := s.D.Invoke(ctx, authRegister, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session.
func (s *AuthService) Login(ctx context.Context, in domain.Credentials) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := s.D.Invoke(ctx, authLogin, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the current session.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.D.Invoke(ctx, authLogout, nil, nil, nil)
}

// Me returns the user of the current session.
func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := s.D.Invoke(ctx, authMe, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate asks the backend whether the current token is still valid.
func (s *AuthService) Validate(ctx context.Context) (*domain.TokenValidation, error) {
	var out domain.TokenValidation
	if err := s.D.Invoke(ctx, authValidate, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes userID's password.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in domain.ChangePasswordRequest) error {
	if err := requireID("user id", userID); err != nil {
		return err
	}
	return s.D.Invoke(ctx, authChangePassword, id(userID), in, nil)
}

// UpdateUser applies a partial update to userID.
func (s *AuthService) UpdateUser(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	var out domain.User
	if err := s.D.Invoke(ctx, authUpdateUser, id(userID), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
