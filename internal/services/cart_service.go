package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"homechef/internal/models"
	"homechef/internal/repository"
)

// AddItemRequest describes a candidate line item. DishID set means a
// catalog dish; otherwise it is a custom request the chef prices later.
type AddItemRequest struct {
	DishID            *uint  `json:"dish_id"`
	ChefID            uint   `json:"chef_id"` // required for a custom request entering an empty cart
	Quantity          int    `json:"quantity"`
	DishType          string `json:"dish_type"`
	Options           string `json:"options"`
	Note              string `json:"note"`
	CustomName        string `json:"custom_name"`
	CustomDescription string `json:"custom_description"`
}

// ChefConflict is returned, not raised, when a candidate item belongs to a
// different chef than the cart's current one. The cart is left untouched;
// the caller resolves explicitly via ResolveConflict.
type ChefConflict struct {
	CurrentChefID   uint           `json:"current_chef_id"`
	CandidateChefID uint           `json:"candidate_chef_id"`
	Candidate       AddItemRequest `json:"candidate"`
}

const (
	ResolutionReplace = "replace"
	ResolutionReject  = "reject"
)

// ResolveConflictRequest carries the candidate explicitly so resolution is
// a pure function of (cart, candidate, policy) rather than ambient state.
type ResolveConflictRequest struct {
	Resolution        string         `json:"resolution"`
	Candidate         AddItemRequest `json:"candidate"`
	ProceedToCheckout bool           `json:"proceed_to_checkout"`
}

type ConflictResolution struct {
	Resolved          bool      `json:"resolved"`
	ProceedToCheckout bool      `json:"proceed_to_checkout"`
	Cart              *CartView `json:"cart"`
}

type CartService interface {
	GetCart(ctx context.Context, customerID uint) (*CartView, error)
	AddItem(ctx context.Context, customerID uint, req AddItemRequest) (*CartView, *ChefConflict, error)
	ResolveConflict(ctx context.Context, customerID uint, req ResolveConflictRequest) (*ConflictResolution, error)
	UpdateQuantity(ctx context.Context, customerID uint, itemID uint, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, customerID uint, itemID uint) (*CartView, error)
	Clear(ctx context.Context, customerID uint) (*CartView, error)
}

type cartService struct {
	carts    repository.CartRepository
	dishes   repository.DishRepository
	cache    SummaryCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewCartService(carts repository.CartRepository, dishes repository.DishRepository, cache SummaryCache, cacheTTL time.Duration, logger *zap.Logger) CartService {
	return &cartService{
		carts:    carts,
		dishes:   dishes,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *cartService) GetCart(ctx context.Context, customerID uint) (*CartView, error) {
	if s.cache != nil {
		var cached CartView
		if err := s.cache.GetCart(ctx, customerID, &cached); err == nil {
			return &cached, nil
		}
	}

	cart, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &CartView{Items: []LineItemView{}}, nil
	}
	return s.refreshView(ctx, customerID, cart.ID)
}

func (s *cartService) AddItem(ctx context.Context, customerID uint, req AddItemRequest) (*CartView, *ChefConflict, error) {
	line, err := s.buildLine(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	cart, err := s.findOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}

	if cart.IsEmpty() {
		// First item fixes the cart's chef. A custom request cannot
		// establish one on its own.
		if line.ChefID == 0 {
			return nil, nil, ErrChefRequired
		}
	} else {
		currentChef := cart.ChefID()
		if line.ChefID == 0 {
			line.ChefID = currentChef
		}
		if line.ChefID != currentChef {
			return nil, &ChefConflict{
				CurrentChefID:   currentChef,
				CandidateChefID: line.ChefID,
				Candidate:       req,
			}, nil
		}
	}

	if err := s.carts.AddItem(ctx, cart.ID, cart.Version, &models.CartItem{LineDetails: line}); err != nil {
		return nil, nil, mapRepoErr(err, ErrCartNotFound)
	}

	view, err := s.refreshView(ctx, customerID, cart.ID)
	return view, nil, err
}

func (s *cartService) ResolveConflict(ctx context.Context, customerID uint, req ResolveConflictRequest) (*ConflictResolution, error) {
	cart, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	switch req.Resolution {
	case ResolutionReject:
		view, err := newCartView(cart)
		if err != nil {
			return nil, err
		}
		return &ConflictResolution{Resolved: false, Cart: view}, nil

	case ResolutionReplace:
		line, err := s.buildLine(ctx, req.Candidate)
		if err != nil {
			return nil, err
		}
		// The cart will be empty after the swap, so the candidate must
		// carry its own chef identity.
		if line.ChefID == 0 {
			return nil, ErrChefRequired
		}
		if err := s.carts.ReplaceItems(ctx, cart.ID, cart.Version, &models.CartItem{LineDetails: line}); err != nil {
			return nil, mapRepoErr(err, ErrCartNotFound)
		}
		view, err := s.refreshView(ctx, customerID, cart.ID)
		if err != nil {
			return nil, err
		}
		return &ConflictResolution{
			Resolved:          true,
			ProceedToCheckout: req.ProceedToCheckout,
			Cart:              view,
		}, nil

	default:
		return nil, ErrInvalidResolution
	}
}

func (s *cartService) UpdateQuantity(ctx context.Context, customerID uint, itemID uint, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, customerID, itemID)
	}

	cart, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	if err := s.carts.UpdateItemQuantity(ctx, cart.ID, cart.Version, itemID, quantity); err != nil {
		return nil, mapRepoErr(err, ErrItemNotFound)
	}
	return s.refreshView(ctx, customerID, cart.ID)
}

func (s *cartService) RemoveItem(ctx context.Context, customerID uint, itemID uint) (*CartView, error) {
	cart, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	if err := s.carts.RemoveItem(ctx, cart.ID, cart.Version, itemID); err != nil {
		return nil, mapRepoErr(err, ErrItemNotFound)
	}
	return s.refreshView(ctx, customerID, cart.ID)
}

func (s *cartService) Clear(ctx context.Context, customerID uint) (*CartView, error) {
	cart, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	if err := s.carts.Clear(ctx, cart.ID, cart.Version); err != nil {
		return nil, mapRepoErr(err, ErrCartNotFound)
	}
	return s.refreshView(ctx, customerID, cart.ID)
}

// buildLine validates the candidate and resolves it against the catalog.
// For custom requests the chef may stay zero here; the caller decides
// whether it can be inherited from the cart.
func (s *cartService) buildLine(ctx context.Context, req AddItemRequest) (models.LineDetails, error) {
	if req.Quantity < 1 {
		return models.LineDetails{}, ErrQuantityInvalid
	}

	if req.DishID == nil {
		if req.CustomName == "" {
			return models.LineDetails{}, ErrCustomNameRequired
		}
		return models.LineDetails{
			ChefID:      req.ChefID,
			Name:        req.CustomName,
			Description: req.CustomDescription,
			Quantity:    req.Quantity,
			IsCustom:    true,
			Note:        req.Note,
		}, nil
	}

	dish, err := s.dishes.GetByID(ctx, *req.DishID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.LineDetails{}, ErrDishNotFound
		}
		return models.LineDetails{}, err
	}
	if !dish.IsAvailable {
		return models.LineDetails{}, ErrDishUnavailable
	}
	if dish.RequiresDishType && req.DishType == "" {
		return models.LineDetails{}, ErrDishTypeRequired
	}
	if req.DishType != "" && !dish.AllowsDishType(req.DishType) {
		return models.LineDetails{}, ErrDishTypeRequired
	}

	return models.LineDetails{
		DishID:         req.DishID,
		ChefID:         dish.ChefID,
		Name:           dish.Name,
		Description:    dish.Description,
		UnitPriceCents: dish.PriceCents,
		Quantity:       req.Quantity,
		Options:        req.Options,
		DishType:       req.DishType,
		Note:           req.Note,
	}, nil
}

func (s *cartService) findOrCreateCart(ctx context.Context, customerID uint) (*models.Cart, error) {
	cart, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{CustomerID: customerID, Version: 1}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// refreshView rebuilds the derived summary from line items and refreshes
// the cache with it.
func (s *cartService) refreshView(ctx context.Context, customerID, cartID uint) (*CartView, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, mapRepoErr(err, ErrCartNotFound)
	}
	view, err := newCartView(cart)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCart(ctx, customerID, view, s.cacheTTL); err != nil {
			s.logger.Debug("cart summary cache refresh failed", zap.Error(err))
		}
	}
	return view, nil
}

// mapRepoErr translates repository sentinels into the engine's taxonomy.
func mapRepoErr(err error, notFound error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrConcurrentUpdate
	default:
		return err
	}
}
