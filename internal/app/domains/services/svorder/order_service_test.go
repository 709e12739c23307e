package svorder

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeout/common/model"
	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/domains/entity/etprimitive"
	"takeout/internal/app/domains/modules/mdcart"
	"takeout/internal/app/domains/modules/mdnotify"
	"takeout/internal/app/domains/modules/mdorder"
	"takeout/internal/app/domains/modules/mdpayment"
	"takeout/internal/app/domains/repo/rpcart"
	"takeout/internal/app/domains/repo/rpcatalog"
	"takeout/internal/app/domains/repo/rporder"
	"takeout/internal/app/infra/persistence/dbtest"
	"takeout/internal/app/pkg/errorx"
	"takeout/internal/app/pkg/logger"
)

type fakeGateway struct {
	mu      sync.Mutex
	refunds []*mdpayment.RefundRequest
	err     error

	// 首次退款时回调，用于在退款与写库之间插入并发操作
	onRefund func()
	once     sync.Once
}

func (g *fakeGateway) RequestPrepay(context.Context, *mdpayment.PrepayRequest) (*mdpayment.PrepayResult, error) {
	return &mdpayment.PrepayResult{PrepayToken: "tok"}, nil
}

func (g *fakeGateway) Refund(_ context.Context, req *mdpayment.RefundRequest) error {
	if g.onRefund != nil {
		g.once.Do(g.onRefund)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.refunds = append(g.refunds, req)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []*model.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, message string) (int64, error) {
	var n model.Notification
	if err := json.Unmarshal([]byte(message), &n); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, &n)
	return 1, nil
}

type fixture struct {
	svc     *OrderService
	repo    rporder.OrderRepository
	cart    *mdcart.CartModule
	gateway *fakeGateway
	pub     *recordingPublisher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	repo := rporder.NewOrderRepository(db)
	cart := mdcart.NewCartModule(rpcart.NewCartRepository(db), rpcatalog.NewCatalogRepository(db), mdcart.NewLocalLocker())
	pub := &recordingPublisher{}
	gw := &fakeGateway{}
	svc := NewOrderService(
		mdorder.NewOrderModule(repo, mdcart.NewLocalLocker()),
		cart,
		mdnotify.NewNotifyModule(pub, nil, "takeout:notifications", logger.NewNopLogger()),
		gw,
		logger.NewNopLogger(),
	)
	return &fixture{svc: svc, repo: repo, cart: cart, gateway: gw, pub: pub}
}

func int64Ptr(v int64) *int64 { return &v }

func (f *fixture) seed(t *testing.T, number string, userID int64, status etorder.Status, pay etorder.PayStatus, orderTime time.Time) *etorder.Order {
	t.Helper()
	lines := []*etorder.Line{
		{Name: "Rice", DishID: int64Ptr(1), Quantity: 2, UnitPrice: decimal.RequireFromString("2.50")},
		{Name: "Soup", SetmealID: int64Ptr(2), DishFlavor: "hot", Quantity: 1, UnitPrice: decimal.RequireFromString("8.00")},
	}
	o := &etorder.Order{
		Number:        number,
		Status:        status,
		PayStatus:     pay,
		UserID:        userID,
		AddressBookID: 1,
		PayMethod:     1,
		Amount:        etorder.SumAmount(lines),
		Consignee:     "Han Meimei",
		Phone:         "13900000000",
		Address:       "ShanghaiPudong",
		OrderTime:     orderTime,
		Lines:         lines,
	}
	require.NoError(t, f.repo.Create(context.Background(), o))
	return o
}

func (f *fixture) reload(t *testing.T, id int64) *etorder.Order {
	t.Helper()
	o, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return o
}

func TestAcceptDispatchDeliver(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.seed(t, "A1", 1, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, time.Now())

	require.NoError(t, f.svc.Accept(ctx, o.ID))
	assert.Equal(t, etorder.StatusConfirmed, f.reload(t, o.ID).Status)

	require.NoError(t, f.svc.Dispatch(ctx, o.ID))
	assert.Equal(t, etorder.StatusDeliveryInProgress, f.reload(t, o.ID).Status)

	require.NoError(t, f.svc.Deliver(ctx, o.ID))
	got := f.reload(t, o.ID)
	assert.Equal(t, etorder.StatusCompleted, got.Status)
	require.NotNil(t, got.DeliveryTime)
	assert.WithinDuration(t, time.Now(), *got.DeliveryTime, 5*time.Second)

	// 已完成的订单不能再派送
	assert.ErrorIs(t, f.svc.Dispatch(ctx, o.ID), errorx.ErrInvalidState)
}

func TestAcceptRequiresToBeConfirmed(t *testing.T) {
	f := setup(t)
	o := f.seed(t, "A2", 1, etorder.StatusPendingPayment, etorder.PayStatusUnpaid, time.Now())

	assert.ErrorIs(t, f.svc.Accept(context.Background(), o.ID), errorx.ErrInvalidState)
	assert.Equal(t, etorder.StatusPendingPayment, f.reload(t, o.ID).Status)
}

func TestOrderNotFound(t *testing.T) {
	f := setup(t)
	assert.ErrorIs(t, f.svc.Accept(context.Background(), 999), errorx.ErrOrderNotFound)
}

func TestRejectPaidOrderRefunds(t *testing.T) {
	f := setup(t)
	o := f.seed(t, "R1", 1, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, time.Now())

	require.NoError(t, f.svc.Reject(context.Background(), o.ID, "sold out"))

	got := f.reload(t, o.ID)
	assert.Equal(t, etorder.StatusCancelled, got.Status)
	assert.Equal(t, etorder.PayStatusRefunded, got.PayStatus)
	assert.Equal(t, "sold out", got.RejectionReason)
	assert.NotNil(t, got.CancelTime)

	require.Len(t, f.gateway.refunds, 1)
	refund := f.gateway.refunds[0]
	assert.Equal(t, "R1", refund.OrderNumber)
	assert.Equal(t, "R1", refund.RefundNumber)
	assert.True(t, o.Amount.Equal(refund.Amount))
	assert.True(t, o.Amount.Equal(refund.OriginalAmount))
}

func TestRejectOnlyFromToBeConfirmed(t *testing.T) {
	f := setup(t)
	o := f.seed(t, "R2", 1, etorder.StatusConfirmed, etorder.PayStatusPaid, time.Now())

	assert.ErrorIs(t, f.svc.Reject(context.Background(), o.ID, "late"), errorx.ErrInvalidState)
	assert.Empty(t, f.gateway.refunds)
}

func TestRefundFailureLeavesOrderUntouched(t *testing.T) {
	f := setup(t)
	f.gateway.err = errors.New("gateway down")
	o := f.seed(t, "R3", 1, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, time.Now())

	err := f.svc.Reject(context.Background(), o.ID, "sold out")
	assert.ErrorIs(t, err, errorx.ErrGatewayUnavailable)

	got := f.reload(t, o.ID)
	assert.Equal(t, etorder.StatusToBeConfirmed, got.Status)
	assert.Equal(t, etorder.PayStatusPaid, got.PayStatus)
}

// concurrently 在首次退款期间启动 fn，返回其结果通道
func (f *fixture) concurrently(fn func() error) <-chan error {
	done := make(chan error, 1)
	f.gateway.onRefund = func() {
		go func() { done <- fn() }()
		time.Sleep(50 * time.Millisecond)
	}
	return done
}

func TestRejectSerializedWithConcurrentAccept(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.seed(t, "X1", 1, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, time.Now())

	accepted := f.concurrently(func() error { return f.svc.Accept(ctx, o.ID) })

	require.NoError(t, f.svc.Reject(ctx, o.ID, "sold out"))
	assert.ErrorIs(t, <-accepted, errorx.ErrInvalidState)

	got := f.reload(t, o.ID)
	assert.Equal(t, etorder.StatusCancelled, got.Status)
	assert.Equal(t, etorder.PayStatusRefunded, got.PayStatus)
	assert.Equal(t, "sold out", got.RejectionReason)
	assert.Len(t, f.gateway.refunds, 1)
}

func TestUserCancelSerializedWithConcurrentReject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.seed(t, "X2", 3, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, time.Now())

	rejected := f.concurrently(func() error { return f.svc.Reject(ctx, o.ID, "sold out") })

	require.NoError(t, f.svc.UserCancel(ctx, 3, o.ID))
	assert.ErrorIs(t, <-rejected, errorx.ErrInvalidState)

	got := f.reload(t, o.ID)
	assert.Equal(t, etorder.StatusCancelled, got.Status)
	assert.Equal(t, etorder.PayStatusRefunded, got.PayStatus)
	assert.Equal(t, etorder.ReasonUserCancelled, got.CancelReason)
	assert.Empty(t, got.RejectionReason)
	assert.Len(t, f.gateway.refunds, 1)
}

func TestStaffCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	unpaid := f.seed(t, "S1", 1, etorder.StatusPendingPayment, etorder.PayStatusUnpaid, time.Now())
	require.NoError(t, f.svc.StaffCancel(ctx, unpaid.ID, "closing early"))
	got := f.reload(t, unpaid.ID)
	assert.Equal(t, etorder.StatusCancelled, got.Status)
	assert.Equal(t, etorder.PayStatusUnpaid, got.PayStatus)
	assert.Equal(t, "closing early", got.CancelReason)
	assert.Empty(t, f.gateway.refunds)

	delivering := f.seed(t, "S2", 1, etorder.StatusDeliveryInProgress, etorder.PayStatusPaid, time.Now())
	require.NoError(t, f.svc.StaffCancel(ctx, delivering.ID, "rider lost"))
	assert.Equal(t, etorder.PayStatusRefunded, f.reload(t, delivering.ID).PayStatus)
	assert.Len(t, f.gateway.refunds, 1)

	completed := f.seed(t, "S3", 1, etorder.StatusCompleted, etorder.PayStatusPaid, time.Now())
	assert.ErrorIs(t, f.svc.StaffCancel(ctx, completed.ID, "x"), errorx.ErrOrderCompleted)

	// 已取消的订单再次取消不会重复退款
	assert.ErrorIs(t, f.svc.StaffCancel(ctx, delivering.ID, "again"), errorx.ErrInvalidState)
	assert.Len(t, f.gateway.refunds, 1)
}

func TestUserCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	paid := f.seed(t, "U1", 3, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, time.Now())
	assert.ErrorIs(t, f.svc.UserCancel(ctx, 4, paid.ID), errorx.ErrOrderNotFound)

	require.NoError(t, f.svc.UserCancel(ctx, 3, paid.ID))
	got := f.reload(t, paid.ID)
	assert.Equal(t, etorder.StatusCancelled, got.Status)
	assert.Equal(t, etorder.PayStatusRefunded, got.PayStatus)
	assert.Equal(t, etorder.ReasonUserCancelled, got.CancelReason)
	assert.Len(t, f.gateway.refunds, 1)

	confirmed := f.seed(t, "U2", 3, etorder.StatusConfirmed, etorder.PayStatusPaid, time.Now())
	assert.ErrorIs(t, f.svc.UserCancel(ctx, 3, confirmed.ID), errorx.ErrInvalidState)
}

func TestTimeoutCancelRespectsGrace(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	fresh := f.seed(t, "T1", 1, etorder.StatusPendingPayment, etorder.PayStatusUnpaid, time.Now())
	assert.ErrorIs(t, f.svc.TimeoutCancel(ctx, fresh.ID, 15*time.Minute), errorx.ErrInvalidState)
	assert.Equal(t, etorder.StatusPendingPayment, f.reload(t, fresh.ID).Status)

	stale := f.seed(t, "T2", 1, etorder.StatusPendingPayment, etorder.PayStatusUnpaid, time.Now().Add(-16*time.Minute))
	require.NoError(t, f.svc.TimeoutCancel(ctx, stale.ID, 15*time.Minute))
	got := f.reload(t, stale.ID)
	assert.Equal(t, etorder.StatusCancelled, got.Status)
	assert.Equal(t, etorder.ReasonPaymentTimeout, got.CancelReason)
}

func TestTimeoutComplete(t *testing.T) {
	f := setup(t)
	o := f.seed(t, "T3", 1, etorder.StatusDeliveryInProgress, etorder.PayStatusPaid, time.Now().Add(-2*time.Hour))

	require.NoError(t, f.svc.TimeoutComplete(context.Background(), o.ID, time.Hour))
	assert.Equal(t, etorder.StatusCompleted, f.reload(t, o.ID).Status)
}

func TestRepetitionMergesIntoCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.seed(t, "P1", 5, etorder.StatusCompleted, etorder.PayStatusPaid, time.Now())

	assert.ErrorIs(t, f.svc.Repetition(ctx, 6, o.ID), errorx.ErrOrderNotFound)

	require.NoError(t, f.svc.Repetition(ctx, 5, o.ID))
	require.NoError(t, f.svc.Repetition(ctx, 5, o.ID))

	items, err := f.cart.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byName := map[string]int{}
	for _, item := range items {
		byName[item.Name] = item.Quantity
	}
	assert.Equal(t, 4, byName["Rice"])
	assert.Equal(t, 2, byName["Soup"])
}

func TestReminder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.seed(t, "M1", 5, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, time.Now())

	assert.ErrorIs(t, f.svc.Reminder(ctx, 6, o.ID), errorx.ErrOrderNotFound)
	require.NoError(t, f.svc.Reminder(ctx, 5, o.ID))

	require.Len(t, f.pub.messages, 1)
	msg := f.pub.messages[0]
	assert.Equal(t, model.NotificationUrgentReminder, msg.Type)
	assert.Equal(t, o.ID, msg.OrderID)
	assert.Equal(t, "Order No: M1", msg.Content)
}

func TestDetail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.seed(t, "D1", 5, etorder.StatusConfirmed, etorder.PayStatusPaid, time.Now())

	got, err := f.svc.Detail(ctx, 5, o.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)

	_, err = f.svc.Detail(ctx, 6, o.ID)
	assert.ErrorIs(t, err, errorx.ErrOrderNotFound)

	// 管理端不限定用户
	_, err = f.svc.Detail(ctx, 0, o.ID)
	assert.NoError(t, err)
}

func TestUserHistoryAndSearch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Now()
	f.seed(t, "H1", 5, etorder.StatusCompleted, etorder.PayStatusPaid, now.Add(-2*time.Hour))
	f.seed(t, "H2", 5, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, now.Add(-time.Hour))
	f.seed(t, "H3", 6, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, now)

	history, err := f.svc.UserHistory(ctx, 5, nil, etprimitive.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), history.Total)

	status := etorder.StatusToBeConfirmed
	result, err := f.svc.ConditionSearch(ctx, &rporder.SearchCriteria{Status: &status}, etprimitive.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "H3", result.Records[0].Order.Number)
	assert.Equal(t, "Rice*2;Soup*1;", result.Records[0].Dishes)
}

func TestStatistics(t *testing.T) {
	f := setup(t)
	now := time.Now()
	f.seed(t, "C1", 1, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, now)
	f.seed(t, "C2", 1, etorder.StatusToBeConfirmed, etorder.PayStatusPaid, now)
	f.seed(t, "C3", 1, etorder.StatusDeliveryInProgress, etorder.PayStatusPaid, now)
	f.seed(t, "C4", 1, etorder.StatusCompleted, etorder.PayStatusPaid, now)

	stats, err := f.svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ToBeConfirmed)
	assert.Equal(t, int64(0), stats.Confirmed)
	assert.Equal(t, int64(1), stats.DeliveryInProgress)
}

func TestDishSummaryEmpty(t *testing.T) {
	assert.Equal(t, "", DishSummary(nil))
}
