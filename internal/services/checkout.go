package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/store"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	DeleteByCheckout(ctx context.Context, checkoutID string) (int64, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	Get(ctx context.Context, buyerID, id string) (*models.Order, error)
}

// OrderMailer envoie la confirmation de commande (optionnel).
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, to string, result *models.CheckoutResult) error
}

const (
	compensationTimeout = 10 * time.Second
	confirmationTimeout = 30 * time.Second
)

// CheckoutService transforme le panier de l'utilisateur connecté en
// commandes, une par ligne.
type CheckoutService struct {
	orders   OrderRepository
	cart     CartStore
	payments PaymentGateway
	mailer   OrderMailer
	log      *zap.Logger
	now      func() time.Time
}

// NewCheckoutService : payments et mailer peuvent être nil.
func NewCheckoutService(orders OrderRepository, cart CartStore, payments PaymentGateway, mailer OrderMailer, log *zap.Logger) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		cart:     cart,
		payments: payments,
		mailer:   mailer,
		log:      log,
		now:      time.Now,
	}
}

// ValidateCheckoutForm vérifie les champs saisis dans la modale.
func ValidateCheckoutForm(form models.CheckoutForm) error {
	switch {
	case strings.TrimSpace(form.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidForm)
	case strings.TrimSpace(form.Address) == "":
		return fmt.Errorf("%w: address is required", ErrInvalidForm)
	case form.PaymentMethod != models.PaymentCreditCard && form.PaymentMethod != models.PaymentPaypal:
		return fmt.Errorf("%w: unsupported payment method %q", ErrInvalidForm, form.PaymentMethod)
	}
	return nil
}

// Checkout écrit une commande par ligne du panier agrégé. Sans identité,
// rien n'est écrit. Le panier est retiré en une transaction avant les
// écritures : un double envoi ne commande qu'une fois, et ce qu'un autre
// onglet ajoute pendant ce temps reste dans le panier. Si le paiement ou une
// écriture échoue, les commandes de ce checkout sont supprimées et les lignes
// retirées sont remises en tête du panier.
func (s *CheckoutService) Checkout(ctx context.Context, identity *models.Identity, form models.CheckoutForm) (*models.CheckoutResult, error) {
	if identity == nil || identity.UserID == "" {
		return nil, ErrUnauthenticated
	}

	owner := store.UserOwner(identity.UserID)
	current, err := s.cart.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(AggregateCart(current)) == 0 {
		return nil, ErrEmptyCart
	}
	if err := ValidateCheckoutForm(form); err != nil {
		return nil, err
	}

	taken, err := s.cart.Take(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("take cart: %w", err)
	}
	items := AggregateCart(taken)
	if len(items) == 0 {
		// déjà commandé par une requête concurrente
		return nil, ErrEmptyCart
	}

	result := &models.CheckoutResult{
		CheckoutID: uuid.NewString(),
		Total:      CartTotal(items),
	}

	if form.PaymentMethod == models.PaymentCreditCard && s.payments != nil {
		paymentID, err := s.payments.CreateIntent(ctx, result.CheckoutID, result.Total, map[string]string{
			"checkout_id": result.CheckoutID,
			"user_id":     identity.UserID,
			"email":       identity.Email,
		})
		if err != nil {
			s.restoreCart(ctx, owner, taken)
			return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		result.PaymentID = paymentID
	}

	timestamp := s.now().UTC()
	orders := make([]models.Order, len(items))
	for i, item := range items {
		orders[i] = models.Order{
			CheckoutID:    result.CheckoutID,
			ProductID:     item.ID,
			ProductName:   item.Name,
			ProductPrice:  item.Price,
			ProductImage:  item.Image,
			Brand:         item.Brand,
			Quantity:      item.Quantity,
			SellerEmail:   item.SellerEmail,
			BuyerID:       identity.UserID,
			BuyerEmail:    identity.Email,
			Name:          strings.TrimSpace(form.Name),
			Address:       strings.TrimSpace(form.Address),
			PaymentMethod: form.PaymentMethod,
			PaymentID:     result.PaymentID,
			Timestamp:     timestamp,
		}
	}

	// toutes les écritures partent en parallèle et sont toutes attendues
	var g errgroup.Group
	for i := range orders {
		order := &orders[i]
		g.Go(func() error {
			return s.orders.Create(ctx, order)
		})
	}
	if err := g.Wait(); err != nil {
		s.compensate(ctx, result.CheckoutID)
		s.restoreCart(ctx, owner, taken)
		return nil, fmt.Errorf("%w: %v", ErrOrderFailed, err)
	}
	result.Orders = orders

	s.log.Info("📦 order placed",
		zap.String("checkout_id", result.CheckoutID),
		zap.String("user_id", identity.UserID),
		zap.Int("lines", len(orders)),
		zap.Float64("total", result.Total))

	s.sendConfirmation(identity.Email, result)
	return result, nil
}

// restoreCart remet en tête du panier les lignes retirées par un checkout
// échoué, sans écraser ce qui a été ajouté entre-temps.
func (s *CheckoutService) restoreCart(ctx context.Context, owner string, items []models.CartItem) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if _, err := s.cart.Prepend(ctx, owner, items); err != nil {
		s.log.Error("❌ cart not restored after failed checkout",
			zap.String("owner", owner), zap.Int("lines", len(items)), zap.Error(err))
	}
}

// compensate supprime les lignes déjà écrites d'un checkout échoué.
func (s *CheckoutService) compensate(ctx context.Context, checkoutID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	deleted, err := s.orders.DeleteByCheckout(ctx, checkoutID)
	if err != nil {
		s.log.Error("❌ checkout compensation failed",
			zap.String("checkout_id", checkoutID), zap.Error(err))
		return
	}
	s.log.Warn("⚠️ checkout rolled back",
		zap.String("checkout_id", checkoutID), zap.Int64("deleted", deleted))
}

func (s *CheckoutService) sendConfirmation(to string, result *models.CheckoutResult) {
	if s.mailer == nil || to == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), confirmationTimeout)
		defer cancel()
		if err := s.mailer.SendOrderConfirmation(ctx, to, result); err != nil && !errors.Is(err, ErrMailDisabled) {
			s.log.Warn("⚠️ order confirmation mail failed",
				zap.String("checkout_id", result.CheckoutID), zap.Error(err))
		}
	}()
}

// ListOrders : commandes de l'acheteur, plus récentes d'abord.
func (s *CheckoutService) ListOrders(ctx context.Context, buyerID string) ([]models.Order, error) {
	if buyerID == "" {
		return nil, ErrUnauthenticated
	}
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder ne retourne que les commandes de l'acheteur.
func (s *CheckoutService) GetOrder(ctx context.Context, buyerID, id string) (*models.Order, error) {
	if buyerID == "" {
		return nil, ErrUnauthenticated
	}
	return s.orders.Get(ctx, buyerID, id)
}
