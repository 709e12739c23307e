package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeout/common/entity"
	"takeout/internal/app/domains/modules/mdcart"
	"takeout/internal/app/domains/modules/mdnotify"
	"takeout/internal/app/domains/modules/mdorder"
	"takeout/internal/app/domains/modules/mdpayment"
	"takeout/internal/app/domains/repo/rpaddress"
	"takeout/internal/app/domains/repo/rpbase"
	"takeout/internal/app/domains/repo/rpcart"
	"takeout/internal/app/domains/repo/rpcatalog"
	"takeout/internal/app/domains/repo/rporder"
	"takeout/internal/app/domains/services/svcart"
	"takeout/internal/app/domains/services/svcheckout"
	"takeout/internal/app/domains/services/svorder"
	"takeout/internal/app/domains/services/svpayment"
	"takeout/internal/app/infra/persistence/dbtest"
	"takeout/internal/app/pkg/idgen"
	"takeout/internal/app/pkg/logger"
	"takeout/internal/app/server/handlers/admin"
	"takeout/internal/app/server/handlers/cart"
	"takeout/internal/app/server/handlers/notify"
	"takeout/internal/app/server/handlers/order"
	"takeout/internal/app/server/middlewares"
)

type countingPublisher struct {
	mu    sync.Mutex
	count int
}

func (p *countingPublisher) Publish(context.Context, string, string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return 0, nil
}

type envelope struct {
	Meta struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	engine *gin.Engine
	pub    *countingPublisher
}

func newTestServer(t *testing.T, gateway mdpayment.Gateway) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	require.NoError(t, db.Create(&entity.AddressBook{ID: 1, UserID: 7, Consignee: "Wang Wu", Phone: "13700000000", Detail: "No.1 Road"}).Error)
	require.NoError(t, db.Create(&entity.Dish{ID: 1, Name: "Rice", Price: decimal.RequireFromString("2.50"), Status: 1}).Error)
	require.NoError(t, db.Create(&entity.Dish{ID: 2, Name: "Soup", Price: decimal.RequireFromString("8.00"), Status: 1}).Error)

	log := logger.NewNopLogger()
	pub := &countingPublisher{}
	orderRepo := rporder.NewOrderRepository(db)
	cartModule := mdcart.NewCartModule(rpcart.NewCartRepository(db), rpcatalog.NewCatalogRepository(db), mdcart.NewLocalLocker())
	orderModule := mdorder.NewOrderModule(orderRepo, mdcart.NewLocalLocker())
	notifyModule := mdnotify.NewNotifyModule(pub, nil, "takeout:notifications", log)

	checkoutService := svcheckout.NewCheckoutService(
		rpbase.NewTxManager(db), rpaddress.NewAddressRepository(db), cartModule, orderModule,
		nil, idgen.NewNumberGenerator(1), 0, log,
	)
	paymentService := svpayment.NewPaymentService(orderModule, notifyModule, gateway, log)
	orderService := svorder.NewOrderService(orderModule, cartModule, notifyModule, gateway, log)

	engine := SetupRoutes(&Handlers{
		Cart:   cart.NewCartHandler(svcart.NewCartService(cartModule, log)),
		Order:  order.NewOrderHandler(checkoutService, paymentService, orderService),
		Admin:  admin.NewAdminHandler(orderService, notifyModule, log),
		Notify: notify.NewNotifyHandler(paymentService, nil, log),
	}, log)
	return &testServer{engine: engine, pub: pub}
}

func (s *testServer) do(t *testing.T, method, path string, header string, actorID int64, body interface{}) (int, *envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(header, strconv.FormatInt(actorID, 10))
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, &env
}

func (s *testServer) user(t *testing.T, method, path string, body interface{}) (int, *envelope) {
	return s.do(t, method, path, middlewares.HeaderUserID, 7, body)
}

func (s *testServer) staff(t *testing.T, method, path string, body interface{}) (int, *envelope) {
	return s.do(t, method, path, middlewares.HeaderEmployeeID, 1, body)
}

func decode(t *testing.T, env *envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, mdpayment.NewMockGateway(logger.NewNopLogger()))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middlewares.HeaderRequestID))
}

func TestActorHeaderRequired(t *testing.T) {
	s := newTestServer(t, mdpayment.NewMockGateway(logger.NewNopLogger()))

	code, _ := s.do(t, http.MethodGet, "/api/v1/user/shoppingCart/list", "", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// 用户身份不能访问管理端
	code, _ = s.user(t, http.MethodGet, "/api/v1/admin/order/statistics", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, mdpayment.NewMockGateway(logger.NewNopLogger()))

	for _, dishID := range []int64{1, 1, 2} {
		code, _ := s.user(t, http.MethodPost, "/api/v1/user/shoppingCart/add", map[string]interface{}{"dish_id": dishID})
		require.Equal(t, http.StatusOK, code)
	}

	code, env := s.user(t, http.MethodGet, "/api/v1/user/shoppingCart/list", nil)
	require.Equal(t, http.StatusOK, code)
	var items []struct {
		Name   string `json:"name"`
		Number int    `json:"number"`
	}
	decode(t, env, &items)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Number)

	code, env = s.user(t, http.MethodPost, "/api/v1/user/order/submit", map[string]interface{}{"address_book_id": 1, "remark": "no chili"})
	require.Equal(t, http.StatusOK, code)
	var submitted struct {
		ID          int64           `json:"id"`
		OrderNumber string          `json:"order_number"`
		OrderAmount decimal.Decimal `json:"order_amount"`
	}
	decode(t, env, &submitted)
	assert.True(t, decimal.RequireFromString("13.00").Equal(submitted.OrderAmount))

	// 模拟网关直接返回已支付
	code, env = s.user(t, http.MethodPut, "/api/v1/user/order/payment", map[string]interface{}{"order_number": submitted.OrderNumber})
	require.Equal(t, http.StatusOK, code)
	var paid struct {
		Paid bool `json:"paid"`
	}
	decode(t, env, &paid)
	assert.True(t, paid.Paid)
	assert.Equal(t, 1, s.pub.count)

	code, env = s.staff(t, http.MethodGet, "/api/v1/admin/order/statistics", nil)
	require.Equal(t, http.StatusOK, code)
	var stats struct {
		ToBeConfirmed int64 `json:"to_be_confirmed"`
	}
	decode(t, env, &stats)
	assert.Equal(t, int64(1), stats.ToBeConfirmed)

	id := strconv.FormatInt(submitted.ID, 10)
	code, _ = s.staff(t, http.MethodPut, "/api/v1/admin/order/confirm", map[string]interface{}{"id": submitted.ID})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.staff(t, http.MethodPut, "/api/v1/admin/order/delivery/"+id, nil)
	require.Equal(t, http.StatusOK, code)

	// 派送中用户不能取消
	code, _ = s.user(t, http.MethodPut, "/api/v1/user/order/cancel/"+id, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.staff(t, http.MethodPut, "/api/v1/admin/order/complete/"+id, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.staff(t, http.MethodPut, "/api/v1/admin/order/cancel", map[string]interface{}{"id": submitted.ID, "cancel_reason": "late"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.user(t, http.MethodGet, "/api/v1/user/order/orderDetail/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	var detail struct {
		Status       int `json:"status"`
		OrderDetails []struct {
			Name string `json:"name"`
		} `json:"order_details"`
	}
	decode(t, env, &detail)
	assert.Equal(t, 5, detail.Status)
	assert.Len(t, detail.OrderDetails, 2)

	code, env = s.staff(t, http.MethodGet, "/api/v1/admin/order/conditionSearch?number="+submitted.OrderNumber, nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Total   int64 `json:"total"`
		Records []struct {
			OrderDishes string `json:"order_dishes"`
		} `json:"records"`
	}
	decode(t, env, &page)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Rice*2;Soup*1;", page.Records[0].OrderDishes)
}

func TestSubmitErrors(t *testing.T) {
	s := newTestServer(t, mdpayment.NewMockGateway(logger.NewNopLogger()))

	code, env := s.user(t, http.MethodPost, "/api/v1/user/order/submit", map[string]interface{}{"address_book_id": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Meta.Message, "shopping cart is empty")

	code, _ = s.user(t, http.MethodPost, "/api/v1/user/order/submit", map[string]interface{}{"address_book_id": 9})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.user(t, http.MethodPost, "/api/v1/user/order/submit", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOrderOfAnotherUserIsNotFound(t *testing.T) {
	s := newTestServer(t, mdpayment.NewMockGateway(logger.NewNopLogger()))

	code, _ := s.user(t, http.MethodPost, "/api/v1/user/shoppingCart/add", map[string]interface{}{"dish_id": 1})
	require.Equal(t, http.StatusOK, code)
	code, env := s.user(t, http.MethodPost, "/api/v1/user/order/submit", map[string]interface{}{"address_book_id": 1})
	require.Equal(t, http.StatusOK, code)
	var submitted struct {
		ID int64 `json:"id"`
	}
	decode(t, env, &submitted)

	id := strconv.FormatInt(submitted.ID, 10)
	code, _ = s.do(t, http.MethodGet, "/api/v1/user/order/orderDetail/"+id, middlewares.HeaderUserID, 8, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodPut, "/api/v1/user/order/cancel/"+id, middlewares.HeaderUserID, 8, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.user(t, http.MethodGet, "/api/v1/user/order/orderDetail/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPayNotifyConfirmsOnce(t *testing.T) {
	s := newTestServer(t, mdpayment.NewMockGateway(logger.NewNopLogger()))

	code, _ := s.user(t, http.MethodPost, "/api/v1/user/shoppingCart/add", map[string]interface{}{"dish_id": 2})
	require.Equal(t, http.StatusOK, code)
	code, env := s.user(t, http.MethodPost, "/api/v1/user/order/submit", map[string]interface{}{"address_book_id": 1})
	require.Equal(t, http.StatusOK, code)
	var submitted struct {
		OrderNumber string `json:"order_number"`
	}
	decode(t, env, &submitted)

	callback := map[string]interface{}{"out_trade_no": submitted.OrderNumber, "trade_state": "SUCCESS"}
	for i := 0; i < 2; i++ {
		code, _ = s.do(t, http.MethodPost, "/api/v1/notify/paySuccess", "", 0, callback)
		require.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, 1, s.pub.count)

	code, _ = s.do(t, http.MethodPost, "/api/v1/notify/paySuccess", "", 0, map[string]interface{}{"out_trade_no": "missing", "trade_state": "SUCCESS"})
	assert.Equal(t, http.StatusNotFound, code)
}
