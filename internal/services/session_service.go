package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/domain/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultSessionID = "default"

	keyAuthToken = "auth-token:"
	keyCart      = "cart:"
	keyPromo     = "promo:"

	persistTimeout = 3 * time.Second
)

// Session is one shopper's cart, promo and login. Every access to the cart
// store and calculator goes through Do, which holds the session lock.
type Session struct {
	ID string

	mu        sync.Mutex
	cart      *cart.Store
	calc      *pricing.Calculator
	token     string
	user      domain.RequestContext
	lastOrder *models.Order

	// ready is closed once the stored state has been restored; loadErr is
	// only read after that.
	ready   chan struct{}
	loadErr error
}

// SessionState is handed to the callback of Session.Do.
type SessionState struct {
	Cart  *cart.Store
	Calc  *pricing.Calculator
	Token string
	User  domain.RequestContext
}

// Do runs fn with exclusive access to the session.
func (s *Session) Do(fn func(st *SessionState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &SessionState{Cart: s.cart, Calc: s.calc, Token: s.token, User: s.user}
	return fn(st)
}

// User returns the identity attached to the session, if any.
func (s *Session) User() domain.RequestContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// SessionRegistry owns every live session and the per-session persistence.
type SessionRegistry struct {
	KV       repositories.KVStore
	Promos   *pricing.PromoTable
	TaxRate  decimal.Decimal
	Shipping decimal.Decimal

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(kv repositories.KVStore, promos *pricing.PromoTable, taxRate, shipping decimal.Decimal) *SessionRegistry {
	if kv == nil {
		kv = repositories.NewMemoryKV()
	}
	if promos == nil {
		promos = pricing.NewPromoTable(pricing.DefaultPromos())
	}
	return &SessionRegistry{
		KV:       kv,
		Promos:   promos,
		TaxRate:  taxRate,
		Shipping: shipping,
		sessions: map[string]*Session{},
	}
}

// SetPromos swaps the promo table shared by every session. Promos already
// applied keep their old terms until they are re-applied.
func (r *SessionRegistry) SetPromos(promos []models.Promo) {
	r.Promos.Replace(promos)
}

// Get returns the session for id, restoring it from the KV store the first
// time it is seen. The restore runs outside the registry lock; concurrent
// callers for the same id wait for it.
func (r *SessionRegistry) Get(ctx context.Context, id string) (*Session, error) {
	id = NormalizeSessionID(id)

	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = &Session{
			ID:    id,
			cart:  cart.NewStore(),
			calc:  pricing.NewCalculator(r.TaxRate, r.Shipping, r.Promos),
			ready: make(chan struct{}),
		}
		r.sessions[id] = s
	}
	r.mu.Unlock()

	if !ok {
		r.load(ctx, s)
	}

	select {
	case <-s.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s, nil
}

// load restores s and releases the callers waiting on it. A failed restore
// drops s from the registry so the next Get retries.
func (r *SessionRegistry) load(ctx context.Context, s *Session) {
	defer close(s.ready)

	if err := r.restore(ctx, s); err != nil {
		s.loadErr = fmt.Errorf("restore session %s: %w", s.ID, err)
		r.mu.Lock()
		if r.sessions[s.ID] == s {
			delete(r.sessions, s.ID)
		}
		r.mu.Unlock()
		return
	}
	id := s.ID
	s.cart.Subscribe(func(snap models.CartSnapshot) {
		r.persistCart(id, snap.Items)
	})
}

func (r *SessionRegistry) restore(ctx context.Context, s *Session) error {
	raw, ok, err := r.KV.Get(ctx, keyCart+s.ID)
	if err != nil {
		return err
	}
	if ok && raw != "" {
		var items []models.LineItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			utils.LogWarn("", "session", "restore_cart", err, zap.String("session", s.ID))
		} else {
			s.cart.Restore(items)
		}
	}

	code, ok, err := r.KV.Get(ctx, keyPromo+s.ID)
	if err != nil {
		return err
	}
	if ok && code != "" {
		if _, err := s.calc.ApplyPromoCode(code); err != nil {
			_ = r.KV.Remove(ctx, keyPromo+s.ID)
		}
	}

	token, ok, err := r.KV.Get(ctx, keyAuthToken+s.ID)
	if err != nil {
		return err
	}
	if ok && token != "" {
		user, err := DecodeToken(token)
		if err != nil {
			utils.LogWarn("", "session", "restore_token", err, zap.String("session", s.ID))
			_ = r.KV.Remove(ctx, keyAuthToken+s.ID)
		} else {
			user.SessionID = s.ID
			s.token = token
			s.user = user
		}
	}
	return nil
}

func (r *SessionRegistry) persistCart(id string, items []models.LineItem) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var err error
	if len(items) == 0 {
		err = r.KV.Remove(ctx, keyCart+id)
	} else {
		var raw []byte
		raw, err = json.Marshal(items)
		if err == nil {
			err = r.KV.Set(ctx, keyCart+id, string(raw))
		}
	}
	if err != nil {
		utils.LogWarn("", "session", "persist_cart", err, zap.String("session", id))
	}
}

func (r *SessionRegistry) persistPromo(ctx context.Context, id string, promo *models.Promo) error {
	if promo == nil {
		return r.KV.Remove(ctx, keyPromo+id)
	}
	return r.KV.Set(ctx, keyPromo+id, promo.Code)
}

// Attach stores token and user on the session and in the KV store.
func (r *SessionRegistry) Attach(ctx context.Context, s *Session, token string, user domain.RequestContext) error {
	user.SessionID = s.ID
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return r.KV.Set(ctx, keyAuthToken+s.ID, token)
}

// Detach forgets the login of the session.
func (r *SessionRegistry) Detach(ctx context.Context, s *Session) error {
	s.mu.Lock()
	s.token = ""
	s.user = domain.RequestContext{SessionID: s.ID}
	s.mu.Unlock()
	return r.KV.Remove(ctx, keyAuthToken+s.ID)
}

// Len is the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// NormalizeSessionID trims id and falls back to DefaultSessionID.
func NormalizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultSessionID
	}
	if len(id) > 128 {
		id = id[:128]
	}
	return id
}

// DecodeToken reads the user claims out of an upstream bearer token. The
// signature is not checked: the token is only ever issued by the upstream and
// is forwarded back to it untouched.
func DecodeToken(token string) (domain.RequestContext, error) {
	var out domain.RequestContext
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return out, domain.UnauthorizedError{Msg: "invalid token"}
	}

	switch sub := claims["sub"].(type) {
	case float64:
		out.UserID = int64(sub)
	case string:
		if n, err := strconv.ParseInt(sub, 10, 64); err == nil {
			out.UserID = n
		}
	}
	if u, ok := claims["user"].(string); ok {
		out.Username = u
	} else if u, ok := claims["username"].(string); ok {
		out.Username = u
	}
	if !out.Authenticated() {
		return out, domain.UnauthorizedError{Msg: "token carries no user"}
	}
	return out, nil
}
