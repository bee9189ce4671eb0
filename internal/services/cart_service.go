package services

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/domain/models"
	"storefront/internal/notify"
	"storefront/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderSubmitter posts a finished cart upstream.
type OrderSubmitter interface {
	SubmitCart(ctx context.Context, userID int64, items []models.LineItem) (int64, error)
}

// CartView is the cart page: lines plus the order summary.
type CartView struct {
	SessionID string            `json:"sessionId"`
	Items     []models.LineItem `json:"items"`
	Summary   models.Summary    `json:"summary"`
}

// CartService runs cart and promo operations for one request.
type CartService struct {
	Sessions  *SessionRegistry
	Catalog   CatalogService
	Orders    OrderSubmitter
	Notifier  notify.Notifier
	RequestID string
}

func (s CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	var view CartView
	err = sess.Do(func(st *SessionState) error {
		view = buildView(sess.ID, st)
		return nil
	})
	return view, err
}

// AddItem resolves the product outside the session lock, then merges it in.
func (s CartService) AddItem(ctx context.Context, sessionID string, productID int64, qty int) (CartView, error) {
	if qty < 1 {
		return CartView{}, domain.ValidationError{Field: "quantity", Msg: "must be at least 1"}
	}
	product, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}

	var view CartView
	err = sess.Do(func(st *SessionState) error {
		st.Cart.AddItem(product, qty)
		view = buildView(sess.ID, st)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}
	utils.LogEvent(s.RequestID, "cart", "add_item", "item added",
		zap.String("session", sess.ID), zap.Int64("product_id", productID), zap.Int("quantity", qty))
	s.notify(fmt.Sprintf("%s added to cart", utils.Truncate(product.Title, 40)), notify.KindSuccess)
	return view, nil
}

// UpdateQuantity sets the quantity of a line. Unknown lines are ignored; a
// quantity below 1 removes the line.
func (s CartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, qty int) (CartView, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	var view CartView
	err = sess.Do(func(st *SessionState) error {
		if err := st.Cart.UpdateQuantity(productID, qty); err != nil {
			if !domain.IsNotFound(err) {
				return err
			}
			utils.LogWarn(s.RequestID, "cart", "update_quantity", err, zap.String("session", sess.ID))
		}
		view = buildView(sess.ID, st)
		return nil
	})
	return view, err
}

func (s CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (CartView, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	var view CartView
	err = sess.Do(func(st *SessionState) error {
		st.Cart.RemoveItem(productID)
		view = buildView(sess.ID, st)
		return nil
	})
	return view, err
}

func (s CartService) Clear(ctx context.Context, sessionID string) (CartView, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	var view CartView
	err = sess.Do(func(st *SessionState) error {
		st.Cart.Clear()
		view = buildView(sess.ID, st)
		return nil
	})
	return view, err
}

// ApplyPromo activates code. On an unknown code the previously applied promo
// stays active and InvalidPromoError is returned.
func (s CartService) ApplyPromo(ctx context.Context, sessionID, code string) (CartView, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	var view CartView
	err = sess.Do(func(st *SessionState) error {
		promo, err := st.Calc.ApplyPromoCode(code)
		if err != nil {
			return err
		}
		if err := s.Sessions.persistPromo(ctx, sess.ID, &promo); err != nil {
			utils.LogWarn(s.RequestID, "cart", "persist_promo", err, zap.String("session", sess.ID))
		}
		view = buildView(sess.ID, st)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}
	utils.LogEvent(s.RequestID, "cart", "apply_promo", "promo applied", zap.String("session", sess.ID))
	return view, nil
}

func (s CartService) RemovePromo(ctx context.Context, sessionID string) (CartView, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	var view CartView
	err = sess.Do(func(st *SessionState) error {
		st.Calc.RemovePromoCode()
		if err := s.Sessions.persistPromo(ctx, sess.ID, nil); err != nil {
			utils.LogWarn(s.RequestID, "cart", "persist_promo", err, zap.String("session", sess.ID))
		}
		view = buildView(sess.ID, st)
		return nil
	})
	return view, err
}

// Checkout turns the cart into an order, empties the cart and drops the
// promo. When the session knows its upstream user the cart is also posted
// upstream; a failure there is logged and does not undo the checkout.
func (s CartService) Checkout(ctx context.Context, sessionID string) (models.Order, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Order{}, err
	}

	var order models.Order
	err = sess.Do(func(st *SessionState) error {
		if st.Cart.Len() == 0 {
			return domain.ConflictError{Msg: "cart is empty"}
		}
		order = models.Order{
			ID:       uuid.NewString(),
			Username: st.User.Username,
			Items:    st.Cart.Items(),
			Summary:  st.Calc.Summarize(st.Cart.Subtotal(), st.Cart.ItemCount()),
			PlacedAt: time.Now().UTC(),
		}
		st.Cart.Clear()
		st.Calc.RemovePromoCode()
		if err := s.Sessions.persistPromo(ctx, sess.ID, nil); err != nil {
			utils.LogWarn(s.RequestID, "cart", "persist_promo", err, zap.String("session", sess.ID))
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	if user := sess.User(); user.UserID != 0 && s.Orders != nil {
		upstreamID, err := s.Orders.SubmitCart(ctx, user.UserID, order.Items)
		if err != nil {
			utils.LogWarn(s.RequestID, "cart", "submit_cart", err, zap.String("order_id", order.ID))
		} else {
			order.UpstreamID = upstreamID
		}
	}

	sess.mu.Lock()
	saved := order
	sess.lastOrder = &saved
	sess.mu.Unlock()

	utils.LogEvent(s.RequestID, "cart", "checkout", "order placed",
		zap.String("session", sess.ID), zap.String("order_id", order.ID),
		zap.String("total", utils.FormatMoney(order.Summary.Total)))
	s.notify("Order placed successfully!", notify.KindSuccess)
	return order, nil
}

// LastOrder returns the most recent checkout of the session.
func (s CartService) LastOrder(ctx context.Context, sessionID string) (models.Order, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Order{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.lastOrder == nil {
		return models.Order{}, domain.NotFoundError{Resource: "order"}
	}
	return *sess.lastOrder, nil
}

func buildView(sessionID string, st *SessionState) CartView {
	return CartView{
		SessionID: sessionID,
		Items:     st.Cart.Items(),
		Summary:   st.Calc.Summarize(st.Cart.Subtotal(), st.Cart.ItemCount()),
	}
}

func (s CartService) notify(message string, kind notify.Kind) {
	if s.Notifier != nil {
		s.Notifier.Notify(message, kind)
	}
}
