package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const AuthServiceName = "auth.v1.AuthService"

const (
	AuthServiceRegisterProcedure       = "/auth.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/auth.v1.AuthService/Login"
	AuthServiceSyncProfileProcedure    = "/auth.v1.AuthService/SyncProfile"
	AuthServiceGetCurrentUserProcedure = "/auth.v1.AuthService/GetCurrentUser"
)

// PublicProcedures need no bearer token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// SyncProfileRequest carries the profile as the identity provider last reported it.
type SyncProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type SyncProfileResponse struct {
	User User `json:"user"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

// AuthServiceHandler issues sessions and maintains the caller's profile.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	SyncProfile(context.Context, *connect.Request[SyncProfileRequest]) (*connect.Response[SyncProfileResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return serviceHandler(AuthServiceName, map[string]http.Handler{
		AuthServiceRegisterProcedure:       connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...),
		AuthServiceLoginProcedure:          connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...),
		AuthServiceSyncProfileProcedure:    connect.NewUnaryHandler(AuthServiceSyncProfileProcedure, svc.SyncProfile, opts...),
		AuthServiceGetCurrentUserProcedure: connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...),
	})
}

// AuthServiceClient calls a remote AuthService.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	SyncProfile(context.Context, *connect.Request[SyncProfileRequest]) (*connect.Response[SyncProfileResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// NewAuthServiceClient returns a client for the AuthService at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	opts = clientOptions(opts)
	return &authServiceClient{
		register:       connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		syncProfile:    connect.NewClient[SyncProfileRequest, SyncProfileResponse](httpClient, baseURL+AuthServiceSyncProfileProcedure, opts...),
		getCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

type authServiceClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	syncProfile    *connect.Client[SyncProfileRequest, SyncProfileResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) SyncProfile(ctx context.Context, req *connect.Request[SyncProfileRequest]) (*connect.Response[SyncProfileResponse], error) {
	return c.syncProfile.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}
