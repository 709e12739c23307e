package mdpayment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"takeout/internal/app/pkg/logger"
)

// LiveConfig 真实网关配置
type LiveConfig struct {
	Endpoint  string
	MchID     string
	AppID     string
	APIKey    string
	NotifyURL string
	Timeout   time.Duration
}

// LiveGateway 调用真实支付网关（JSON over HTTP）
type LiveGateway struct {
	cfg        LiveConfig
	httpClient *http.Client
	logger     logger.Logger
}

// NewLiveGateway 创建真实网关客户端
func NewLiveGateway(cfg LiveConfig, log logger.Logger) *LiveGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	return &LiveGateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

type amountBody struct {
	Total    int64  `json:"total,omitempty"`
	Refund   int64  `json:"refund,omitempty"`
	Currency string `json:"currency"`
}

type prepayBody struct {
	AppID       string     `json:"appid"`
	MchID       string     `json:"mchid"`
	Description string     `json:"description"`
	OutTradeNo  string     `json:"out_trade_no"`
	NotifyURL   string     `json:"notify_url"`
	Amount      amountBody `json:"amount"`
	Payer       payerBody  `json:"payer"`
}

type payerBody struct {
	OpenID string `json:"openid"`
}

type refundBody struct {
	OutTradeNo  string     `json:"out_trade_no"`
	OutRefundNo string     `json:"out_refund_no"`
	Amount      amountBody `json:"amount"`
}

type prepayResponse struct {
	PrepayID string `json:"prepay_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (g *LiveGateway) RequestPrepay(ctx context.Context, req *PrepayRequest) (*PrepayResult, error) {
	body := prepayBody{
		AppID:       g.cfg.AppID,
		MchID:       g.cfg.MchID,
		Description: req.Description,
		OutTradeNo:  req.OrderNumber,
		NotifyURL:   g.cfg.NotifyURL,
		Amount:      amountBody{Total: toCents(req.Amount), Currency: "CNY"},
		Payer:       payerBody{OpenID: req.PayerRef},
	}

	var resp prepayResponse
	err := g.post(ctx, "/v3/pay/transactions/jsapi", body, &resp)
	if err == errAlreadyPaid {
		return &PrepayResult{AlreadyPaid: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if resp.PrepayID == "" {
		return nil, fmt.Errorf("prepay response missing prepay_id")
	}
	return &PrepayResult{PrepayToken: resp.PrepayID}, nil
}

func (g *LiveGateway) Refund(ctx context.Context, req *RefundRequest) error {
	body := refundBody{
		OutTradeNo:  req.OrderNumber,
		OutRefundNo: req.RefundNumber,
		Amount: amountBody{
			Refund:   toCents(req.Amount),
			Total:    toCents(req.OriginalAmount),
			Currency: "CNY",
		},
	}
	return g.post(ctx, "/v3/refund/domestic/refunds", body, nil)
}

// post 发送 JSON 请求，2xx 时解析到 out
func (g *LiveGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gateway response failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.Unmarshal(data, &e)
		if e.Code == errAlreadyPaid.Error() {
			return errAlreadyPaid
		}
		g.logger.WarnContext(ctx, "Gateway returned error",
			"path", path,
			"status", resp.StatusCode,
			"code", e.Code,
			"message", e.Message,
		)
		return fmt.Errorf("gateway %s failed: status=%d code=%s", path, resp.StatusCode, e.Code)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal gateway response failed: %w", err)
	}
	return nil
}

// toCents 元转分
func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
