package reviews

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/orders"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/products"
)

// Service errors surfaced to handlers.
var (
	ErrNotFound        = errors.New("review not found")
	ErrForbidden       = errors.New("review belongs to another user")
	ErrNotPurchased    = errors.New("product was not delivered to this user")
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	ErrBadRating       = errors.New("rating must be between 1 and 5")
)

// OrderLister is the slice of the order store the review flow needs.
type OrderLister interface {
	ListByUser(ctx context.Context, userID string) ([]orders.Order, error)
}

// Catalog is the slice of the product store the review flow needs.
type Catalog interface {
	Get(ctx context.Context, productID string) (*products.Product, error)
	SetRating(ctx context.Context, productID string, rating float64, count int) error
	ClearRating(ctx context.Context, productID string) error
}

// Service enforces review eligibility and keeps product ratings in sync.
type Service struct {
	store    *Store
	orders   OrderLister
	products Catalog
}

// NewService creates a review Service.
func NewService(store *Store, orderLister OrderLister, catalog Catalog) *Service {
	return &Service{store: store, orders: orderLister, products: catalog}
}

// CreateInput is a new review submission.
type CreateInput struct {
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
}

// Create validates eligibility and writes the review. A user may review a
// product once per delivered order that contained it.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrBadRating
	}

	orderID, err := s.eligibleOrder(ctx, in.UserID, in.ProductID)
	if err != nil {
		return nil, err
	}

	r := &Review{
		ReviewID:  uuid.NewString(),
		ProductID: in.ProductID,
		UserID:    in.UserID,
		UserName:  in.UserName,
		OrderID:   orderID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
	if err := s.store.Put(ctx, r); err != nil {
		return nil, err
	}
	if err := s.refreshRating(ctx, in.ProductID); err != nil {
		return nil, err
	}
	return r, nil
}

// Update edits the caller's own review and recomputes the rating.
func (s *Service) Update(ctx context.Context, reviewID, userID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrBadRating
	}
	r, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}
	r.Rating = rating
	r.Comment = comment
	if err := s.store.Put(ctx, r); err != nil {
		return nil, err
	}
	if err := s.refreshRating(ctx, r.ProductID); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes the caller's own review and recomputes the rating.
func (s *Service) Delete(ctx context.Context, reviewID, userID string, isAdmin bool) error {
	r, err := s.store.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if r == nil {
		return ErrNotFound
	}
	if !isAdmin && r.UserID != userID {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, reviewID); err != nil {
		return err
	}
	return s.refreshRating(ctx, r.ProductID)
}

// ListByProduct returns a product's reviews.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	return s.store.ListByProduct(ctx, productID)
}

// ListByUser returns a user's reviews.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Review, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) ownedReview(ctx context.Context, reviewID, userID string) (*Review, error) {
	r, err := s.store.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	if r.UserID != userID {
		return nil, ErrForbidden
	}
	return r, nil
}

// CanReview reports whether the user currently has a delivered, not yet
// reviewed order containing the product.
func (s *Service) CanReview(ctx context.Context, userID, productID string) (bool, error) {
	_, err := s.eligibleOrder(ctx, userID, productID)
	if errors.Is(err, ErrNotPurchased) || errors.Is(err, ErrAlreadyReviewed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// eligibleOrder finds a delivered order of userID containing productID that
// the user has not reviewed yet. Older orders sometimes carry only the item
// name, so items match by id first and by catalog name second.
func (s *Service) eligibleOrder(ctx context.Context, userID, productID string) (string, error) {
	list, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	name := ""
	if p, err := s.products.Get(ctx, productID); err != nil {
		return "", err
	} else if p != nil {
		name = p.Name
	}

	var delivered []string
	for _, o := range list {
		if o.Status != orders.StatusDelivered {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID || (name != "" && it.Name == name) {
				delivered = append(delivered, o.OrderID)
				break
			}
		}
	}
	if len(delivered) == 0 {
		return "", ErrNotPurchased
	}

	mine, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	reviewed := map[string]bool{}
	for _, r := range mine {
		if r.ProductID == productID {
			reviewed[r.OrderID] = true
		}
	}
	for _, orderID := range delivered {
		if !reviewed[orderID] {
			return orderID, nil
		}
	}
	return "", ErrAlreadyReviewed
}

// refreshRating recomputes the product's mean rating, rounded to one
// decimal, and clears it when no reviews remain.
func (s *Service) refreshRating(ctx context.Context, productID string) error {
	list, err := s.store.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return s.products.ClearRating(ctx, productID)
	}
	var sum float64
	for _, r := range list {
		sum += float64(r.Rating)
	}
	mean := math.Round(sum/float64(len(list))*10) / 10
	return s.products.SetRating(ctx, productID, mean, len(list))
}
