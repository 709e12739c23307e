package svcart

import (
	"context"

	"takeout/internal/app/domains/entity/etcart"
	"takeout/internal/app/domains/modules/mdcart"
	"takeout/internal/app/pkg/logger"
)

// CartService 购物车服务
type CartService struct {
	cartModule *mdcart.CartModule
	logger     logger.Logger
}

// NewCartService 创建购物车服务
func NewCartService(cartModule *mdcart.CartModule, log logger.Logger) *CartService {
	return &CartService{cartModule: cartModule, logger: log}
}

// Add 加购一件
func (s *CartService) Add(ctx context.Context, key etcart.Key) (*etcart.Item, error) {
	item, err := s.cartModule.Add(ctx, key, 1)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Cart item added",
		"user_id", key.UserID,
		"cart_id", item.ID,
		"quantity", item.Quantity,
	)
	return item, nil
}

// SubOne 减一件，返回 nil 表示该行已删除
func (s *CartService) SubOne(ctx context.Context, key etcart.Key) (*etcart.Item, error) {
	return s.cartModule.SubOne(ctx, key)
}

func (s *CartService) List(ctx context.Context, userID int64) ([]*etcart.Item, error) {
	return s.cartModule.List(ctx, userID)
}

func (s *CartService) Clean(ctx context.Context, userID int64) error {
	if err := s.cartModule.Clean(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Cart cleaned", "user_id", userID)
	return nil
}
