package services

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/utils"

	"go.uber.org/zap"
)

// Authenticator exchanges credentials for an upstream bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthService struct {
	Sessions  *SessionRegistry
	Upstream  Authenticator
	Notifier  notify.Notifier
	RequestID string
}

// Login delegates the credential check upstream and attaches the token to
// the session. Tokens without readable claims still log the user in under
// the submitted username.
func (s AuthService) Login(ctx context.Context, sessionID, username, password string) (domain.RequestContext, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.RequestContext{}, "", domain.ValidationError{Field: "username", Msg: "is required"}
	}
	if password == "" {
		return domain.RequestContext{}, "", domain.ValidationError{Field: "password", Msg: "is required"}
	}

	token, err := s.Upstream.Login(ctx, username, password)
	if err != nil {
		utils.LogWarn(s.RequestID, "auth", "login", err, zap.String("username", username))
		if domain.IsUnauthorized(err) {
			return domain.RequestContext{}, "", domain.UnauthorizedError{Msg: "invalid username or password"}
		}
		return domain.RequestContext{}, "", err
	}

	user, err := DecodeToken(token)
	if err != nil {
		user = domain.RequestContext{}
	}
	if user.Username == "" {
		user.Username = username
	}

	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.RequestContext{}, "", err
	}
	if err := s.Sessions.Attach(ctx, sess, token, user); err != nil {
		return domain.RequestContext{}, "", err
	}
	user.SessionID = sess.ID

	utils.LogEvent(s.RequestID, "auth", "login", "user logged in",
		zap.String("session", sess.ID), zap.String("username", user.Username))
	s.notify("Welcome back, "+user.Username+"!", notify.KindSuccess)
	return user, token, nil
}

func (s AuthService) Logout(ctx context.Context, sessionID string) error {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.Sessions.Detach(ctx, sess); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "logout", "user logged out", zap.String("session", sess.ID))
	s.notify("You have been logged out", notify.KindInfo)
	return nil
}

// Me returns the identity of the session, or UnauthorizedError.
func (s AuthService) Me(ctx context.Context, sessionID string) (domain.RequestContext, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.RequestContext{}, err
	}
	user := sess.User()
	if !user.Authenticated() {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "not logged in"}
	}
	return user, nil
}

// Authenticate resolves the identity for a request: a bearer token when one
// is sent, else the login stored on the session. A readable bearer token the
// session does not know yet is attached to it, so checkout can post the cart
// for that user.
func (s AuthService) Authenticate(ctx context.Context, sessionID, bearer string) (domain.RequestContext, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return s.Me(ctx, sessionID)
	}
	user, err := DecodeToken(bearer)
	if err != nil {
		return domain.RequestContext{}, err
	}
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.RequestContext{}, err
	}
	if cur := sess.User(); cur.UserID != user.UserID || cur.Username != user.Username {
		if err := s.Sessions.Attach(ctx, sess, bearer, user); err != nil {
			utils.LogWarn(s.RequestID, "auth", "attach_token", err, zap.String("session", sess.ID))
		}
	}
	user.SessionID = sess.ID
	return user, nil
}

func (s AuthService) notify(message string, kind notify.Kind) {
	if s.Notifier != nil {
		s.Notifier.Notify(message, kind)
	}
}
