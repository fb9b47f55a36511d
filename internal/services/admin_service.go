package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"glowcandles/internal/domain"
	"glowcandles/internal/repos"
)

// AdminPageSize is the fixed page size of every admin listing.
const AdminPageSize = 20

// maxPage keeps the row offset of the last page representable.
const maxPage = math.MaxInt / AdminPageSize

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
}

func paginate(page, total int) Pagination {
	return Pagination{
		CurrentPage: page,
		TotalPages:  (total + AdminPageSize - 1) / AdminPageSize,
		TotalItems:  total,
	}
}

// normalizePage clamps page into [1, maxPage].
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	if page > maxPage {
		return maxPage
	}
	return page
}

type Dashboard struct {
	TotalOrders   int              `json:"totalOrders"`
	TodayOrders   int              `json:"todayOrders"`
	TotalRevenue  decimal.Decimal  `json:"totalRevenue"`
	PendingOrders int              `json:"pendingOrders"`
	UnreadAlerts  int              `json:"unreadNotifications"`
	RecentOrders  []repos.OrderRow `json:"recentOrders"`
}

type OrderPage struct {
	Orders     []repos.OrderRow `json:"orders"`
	Pagination Pagination       `json:"pagination"`
}

type ProductPage struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type NotificationPage struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
	Pagination    Pagination            `json:"pagination"`
}

type AdminService struct {
	Store *repos.Store
	Log   *zap.Logger

	now func() time.Time
}

func NewAdminService(store *repos.Store, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{Store: store, Log: log, now: time.Now}
}

func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	var err error
	if d.TotalOrders, err = s.Store.Orders.Count(ctx); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.TodayOrders, err = s.Store.Orders.CountSince(ctx, midnight); err != nil {
		return nil, err
	}
	if d.TotalRevenue, err = s.Store.Orders.Revenue(ctx); err != nil {
		return nil, err
	}
	if d.PendingOrders, err = s.Store.Orders.CountByStatus(ctx, domain.StatusPending); err != nil {
		return nil, err
	}
	if d.UnreadAlerts, err = s.Store.Notifications.CountUnread(ctx); err != nil {
		return nil, err
	}
	if d.RecentOrders, err = s.Store.Orders.Page(ctx, 1, 5); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *AdminService) Orders(ctx context.Context, page int) (*OrderPage, error) {
	page = normalizePage(page)
	total, err := s.Store.Orders.Count(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Store.Orders.Page(ctx, page, AdminPageSize)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: rows, Pagination: paginate(page, total)}, nil
}

func (s *AdminService) Order(ctx context.Context, id string) (*domain.OrderDetail, error) {
	o, err := s.Store.Orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return loadDetail(ctx, s.Store, o)
}

// UpdateOrderStatus accepts any known lifecycle status regardless of the
// current one.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, invalid(ErrInvalidStatus, "status", "must be one of pending, confirmed, processing, shipped, delivered, cancelled")
	}
	if err := s.Store.Orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	s.Log.Info("order status updated", zap.String("order_id", id), zap.String("status", string(status)))
	return s.Store.Orders.Get(ctx, id)
}

func (s *AdminService) UpdatePaymentStatus(ctx context.Context, id string, ps domain.PaymentStatus) (*domain.Order, error) {
	if !ps.Valid() {
		return nil, invalid(ErrInvalidStatus, "paymentStatus", "must be one of pending, paid, failed")
	}
	if err := s.Store.Orders.UpdatePaymentStatus(ctx, id, ps); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	s.Log.Info("payment status updated", zap.String("order_id", id), zap.String("payment_status", string(ps)))
	return s.Store.Orders.Get(ctx, id)
}

func (s *AdminService) Products(ctx context.Context, page int) (*ProductPage, error) {
	page = normalizePage(page)
	total, err := s.Store.Products.Count(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Store.Products.Page(ctx, page, AdminPageSize)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: rows, Pagination: paginate(page, total)}, nil
}

func (s *AdminService) UpdateStock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	if qty < 0 {
		return nil, invalid(ErrInvalidQuantity, "stockQuantity", "must be 0 or greater")
	}
	if err := s.Store.Products.SetStock(ctx, id, qty); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.Log.Info("stock updated", zap.String("product_id", id), zap.Int("stock", qty))
	return s.Store.Products.Get(ctx, id)
}

func (s *AdminService) Notifications(ctx context.Context, page int) (*NotificationPage, error) {
	page = normalizePage(page)
	total, err := s.Store.Notifications.Count(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.Store.Notifications.CountUnread(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Store.Notifications.Page(ctx, page, AdminPageSize)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{Notifications: rows, UnreadCount: unread, Pagination: paginate(page, total)}, nil
}

// MarkNotificationRead is idempotent.
func (s *AdminService) MarkNotificationRead(ctx context.Context, id string) (*domain.Notification, error) {
	if err := s.Store.Notifications.MarkRead(ctx, id); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return s.Store.Notifications.Get(ctx, id)
}
