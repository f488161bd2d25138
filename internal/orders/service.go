package orders

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
	"github.com/gardenaqua/gardenaqua-backend/pkg/enums"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

// StatusNotifier is told about status changes after they are persisted.
// Delivery is best effort; failures never roll back the transition.
type StatusNotifier interface {
	OrderStatusChanged(ctx context.Context, order models.Order, previous enums.OrderStatus)
}

// Service exposes order reads and the operator status transition.
type Service interface {
	GetByNumber(ctx context.Context, orderNumber string) (*View, error)
	Lookup(ctx context.Context, orderNumber string, email string) (*View, error)
	UpdateStatus(ctx context.Context, orderNumber string, next enums.OrderStatus) (*View, error)
}

type service struct {
	repo     Repository
	notifier StatusNotifier
	logger   *logger.Logger
}

// NewService builds an orders service. The notifier may be nil when outbound
// notifications are not configured.
func NewService(repo Repository, notifier StatusNotifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("orders repository is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{repo: repo, notifier: notifier, logger: logg}, nil
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*View, error) {
	order, err := s.findByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	view := ViewFromModel(*order)
	return &view, nil
}

// Lookup requires both the order number and the matching email so guests can
// retrieve their own orders without an account, and nothing else.
func (s *service) Lookup(ctx context.Context, orderNumber string, email string) (*View, error) {
	number := normalizeOrderNumber(orderNumber)
	address := strings.TrimSpace(email)
	if number == "" || address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number and email are required")
	}

	order, err := s.repo.FindByNumberAndEmail(ctx, number, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up order")
	}
	view := ViewFromModel(*order)
	return &view, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderNumber string, next enums.OrderStatus) (*View, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.findByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if !previous.CanTransitionTo(next) {
		err := pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed")
		return nil, err.WithDetails(map[string]any{
			"current":   previous,
			"requested": next,
		})
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}
	order.Status = next

	ctx = s.logger.WithOrderNumber(ctx, order.OrderNumber)
	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"from": previous,
		"to":   next,
	}), "order status updated")

	if s.notifier != nil {
		s.notifier.OrderStatusChanged(ctx, *order, previous)
	}

	view := ViewFromModel(*order)
	return &view, nil
}

func (s *service) findByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	number := normalizeOrderNumber(orderNumber)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}

	order, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func normalizeOrderNumber(orderNumber string) string {
	return strings.ToUpper(strings.TrimSpace(orderNumber))
}
