package svcheckout

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"takeout/internal/app/domains/entity/etcart"
	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/domains/modules/mdcart"
	"takeout/internal/app/domains/modules/mdjob"
	"takeout/internal/app/domains/modules/mdorder"
	"takeout/internal/app/domains/repo/rpaddress"
	"takeout/internal/app/domains/repo/rpbase"
	"takeout/internal/app/pkg/errorx"
	"takeout/internal/app/pkg/logger"
)

// NumberGenerator 订单号生成器
type NumberGenerator interface {
	NextNumber() string
}

// SubmitResult 下单结果
type SubmitResult struct {
	OrderID     int64
	OrderNumber string
	Amount      decimal.Decimal
	OrderTime   time.Time
}

// CheckoutService 购物车结算服务
type CheckoutService struct {
	tx             rpbase.Transactor
	addressRepo    rpaddress.AddressRepository
	cartModule     *mdcart.CartModule
	orderModule    *mdorder.OrderModule
	jobModule      *mdjob.JobModule
	numbers        NumberGenerator
	paymentTimeout time.Duration
	logger         logger.Logger
	now            func() time.Time
}

// NewCheckoutService 创建结算服务
// jobModule 为 nil 时不投递支付超时任务，仅依赖定时扫描
func NewCheckoutService(
	tx rpbase.Transactor,
	addressRepo rpaddress.AddressRepository,
	cartModule *mdcart.CartModule,
	orderModule *mdorder.OrderModule,
	jobModule *mdjob.JobModule,
	numbers NumberGenerator,
	paymentTimeout time.Duration,
	log logger.Logger,
) *CheckoutService {
	return &CheckoutService{
		tx:             tx,
		addressRepo:    addressRepo,
		cartModule:     cartModule,
		orderModule:    orderModule,
		jobModule:      jobModule,
		numbers:        numbers,
		paymentTimeout: paymentTimeout,
		logger:         log,
		now:            time.Now,
	}
}

// Submit 将用户购物车结算为待付款订单
// 1. 校验地址属于该用户
// 2. 事务内：锁定购物车行、写订单与明细、清空购物车
// 3. 提交后投递支付超时延迟任务（失败只记录日志）
func (s *CheckoutService) Submit(ctx context.Context, userID, addressBookID int64, remark string) (*SubmitResult, error) {
	address, err := s.addressRepo.GetByIDAndUser(ctx, addressBookID, userID)
	if err != nil {
		return nil, err
	}

	var order *etorder.Order
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		items, err := s.cartModule.ListForCheckout(ctx, userID)
		if err != nil {
			return fmt.Errorf("list cart failed: %w", err)
		}
		if len(items) == 0 {
			return errorx.ErrCartEmpty
		}

		lines := toLines(items)
		order = &etorder.Order{
			Number:        s.numbers.NextNumber(),
			Status:        etorder.StatusPendingPayment,
			PayStatus:     etorder.PayStatusUnpaid,
			UserID:        userID,
			AddressBookID: address.ID,
			PayMethod:     1,
			Amount:        etorder.SumAmount(lines),
			Remark:        remark,
			Consignee:     address.Consignee,
			Phone:         address.Phone,
			Address:       address.FullAddress(),
			OrderTime:     s.now(),
			Lines:         lines,
		}

		if err := s.orderModule.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order failed: %w", err)
		}
		if err := s.cartModule.Clean(ctx, userID); err != nil {
			return fmt.Errorf("clean cart failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Order submitted",
		"order_id", order.ID,
		"order_number", order.Number,
		"user_id", userID,
		"amount", order.Amount.StringFixed(2),
	)

	if s.jobModule != nil {
		if _, err := s.jobModule.PublishPaymentTimeout(ctx, order, s.paymentTimeout); err != nil {
			// 投递失败不影响下单，超时订单由定时扫描兜底
			s.logger.WarnContext(ctx, "Failed to publish payment timeout job",
				"order_id", order.ID,
				"error", err,
			)
		}
	}

	return &SubmitResult{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Amount:      order.Amount,
		OrderTime:   order.OrderTime,
	}, nil
}

func toLines(items []*etcart.Item) []*etorder.Line {
	lines := make([]*etorder.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, &etorder.Line{
			Name:       item.Name,
			Image:      item.Image,
			DishID:     item.DishID,
			SetmealID:  item.SetmealID,
			DishFlavor: item.DishFlavor,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}
	return lines
}
