package services

import (
	"context"
	"errors"

	"giftfinder/internal/apiclient"
	"giftfinder/internal/repos"
)

var (
	// ErrNotAuthenticated means the browser holds no admin token.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrBadCreds         = errors.New("username and password required")
)

type AuthService struct {
	Client   *apiclient.Client
	Sessions *repos.SessionRepo
}

func NewAuthService(client *apiclient.Client, sessions *repos.SessionRepo) *AuthService {
	return &AuthService{Client: client, Sessions: sessions}
}

// Login asks the API for a token and stores it for sid.
func (s *AuthService) Login(ctx context.Context, sid, username, password string) error {
	if username == "" || password == "" {
		return ErrBadCreds
	}
	_, err := s.Client.WithSession(s.Sessions.For(sid)).AdminLogin(ctx, username, password)
	return err
}

// Logout always forgets the local token.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Client.WithSession(s.Sessions.For(sid)).AdminLogout(ctx)
}

func (s *AuthService) HasToken(ctx context.Context, sid string) (bool, error) {
	tok, err := s.Sessions.Token(ctx, sid)
	if err != nil {
		return false, err
	}
	return tok != "", nil
}

// bound returns a client carrying sid's token, or ErrNotAuthenticated
// without calling the API when there is none.
func (s *AuthService) bound(ctx context.Context, sid string) (*apiclient.Client, error) {
	ok, err := s.HasToken(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return s.Client.WithSession(s.Sessions.For(sid)), nil
}
