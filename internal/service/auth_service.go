package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

// ProfileStore updates and re-reads the caller's profile.
type ProfileStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id, name, avatarURL string) error
}

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	identity      IdentityResolver
	profiles      ProfileStore
	logger        *slog.Logger
}

var _ api.AuthServiceHandler = (*AuthService)(nil)

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, identity IdentityResolver, profiles ProfileStore, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		identity:      identity,
		profiles:      profiles,
		logger:        logger,
	}
}

// Register creates a new user account and signs them in.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	if strings.TrimSpace(req.Msg.Email) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidEmail)
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.Name, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Msg.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID)
	return connect.NewResponse(&api.RegisterResponse{User: toAPIUser(user), Token: token}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.Warn("Login failed", "email", req.Msg.Email)
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}
	if err != nil {
		s.logger.Error("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return connect.NewResponse(&api.LoginResponse{User: toAPIUser(user), Token: token}), nil
}

// SyncProfile stores the caller's display name and avatar. Repeating the same sync
// leaves the profile unchanged.
func (s *AuthService) SyncProfile(ctx context.Context, req *connect.Request[api.SyncProfileRequest]) (*connect.Response[api.SyncProfileResponse], error) {
	user, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, malformed("name required")
	}
	avatar := strings.TrimSpace(req.Msg.AvatarURL)

	if name != user.Name || avatar != user.AvatarURL {
		if err := s.profiles.UpdateUserProfile(ctx, user.ID, name, avatar); err != nil {
			return nil, storeError(s.logger, "SyncProfile", err)
		}
		s.logger.Info("Profile updated", "user_id", user.ID)
		user, err = s.profiles.GetUserByID(ctx, user.ID)
		if err != nil {
			return nil, storeError(s.logger, "SyncProfile", err)
		}
	}

	return connect.NewResponse(&api.SyncProfileResponse{User: toAPIUser(user)}), nil
}

// GetCurrentUser returns the authenticated user's profile.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	user, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}
