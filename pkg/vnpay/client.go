package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/config"
)

// Protocol constants mandated by VNPay's pay API.
const (
	Version     = "2.1.0"
	CommandPay  = "pay"
	CurrencyVND = "VND"
	LocaleVN    = "vn"
	OrderType   = "other"

	dateFormat = "20060102150405"

	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
	hashType            = "HmacSHA512"

	// ResponseCodeSuccess is the only response code treated as a captured payment.
	ResponseCodeSuccess = "00"
)

// IPN answer codes. The gateway retries until it receives one of these
// verbatim, so they must not change.
const (
	IPNCodeSuccess          = "00"
	IPNCodeNotFound         = "01"
	IPNCodeAlreadyConfirmed = "02"
	IPNCodeInvalidSignature = "97"
)

// Client builds signed redirect URLs and verifies inbound callbacks.
type Client struct {
	tmnCode    string
	hashSecret string
	payURL     string
	expiry     time.Duration
}

// NewClient validates the merchant credentials and returns a gateway client.
func NewClient(cfg config.VNPayConfig) (*Client, error) {
	if strings.TrimSpace(cfg.TmnCode) == "" {
		return nil, fmt.Errorf("vnpay merchant code is required")
	}
	if strings.TrimSpace(cfg.HashSecret) == "" {
		return nil, fmt.Errorf("vnpay hash secret is required")
	}
	if strings.TrimSpace(cfg.PayURL) == "" {
		return nil, fmt.Errorf("vnpay pay url is required")
	}
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Client{
		tmnCode:    cfg.TmnCode,
		hashSecret: cfg.HashSecret,
		payURL:     cfg.PayURL,
		expiry:     expiry,
	}, nil
}

// PaymentRequest carries the fields embedded into a redirect URL.
type PaymentRequest struct {
	PaymentID uuid.UUID
	Amount    decimal.Decimal
	OrderInfo string
	ClientIP  string
	ReturnURL string
	CreatedAt time.Time
}

// BuildPaymentURL constructs the signed gateway redirect for one payment.
// The amount is scaled by 100 and truncated to an integer per the protocol.
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if req.PaymentID == uuid.Nil {
		return "", fmt.Errorf("payment id is required")
	}
	if req.ReturnURL == "" {
		return "", fmt.Errorf("return url is required")
	}
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	params := map[string]string{
		"vnp_Version":    Version,
		"vnp_Command":    CommandPay,
		"vnp_TmnCode":    c.tmnCode,
		"vnp_Amount":     req.Amount.Shift(2).Truncate(0).String(),
		"vnp_CreateDate": createdAt.Format(dateFormat),
		"vnp_CurrCode":   CurrencyVND,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_Locale":     LocaleVN,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  OrderType,
		"vnp_ReturnUrl":  req.ReturnURL,
		"vnp_TxnRef":     req.PaymentID.String(),
		"vnp_ExpireDate": createdAt.Add(c.expiry).Format(dateFormat),
	}

	chain := canonicalChain(params)
	signature := c.sign(chain)

	var query strings.Builder
	query.WriteString(chain)
	query.WriteString("&")
	query.WriteString(paramSecureHashType)
	query.WriteString("=")
	query.WriteString(hashType)
	query.WriteString("&")
	query.WriteString(paramSecureHash)
	query.WriteString("=")
	query.WriteString(signature)

	return c.payURL + "?" + query.String(), nil
}

// VerifyResult reports the outcome of a callback signature check.
type VerifyResult struct {
	Verified      bool
	PaymentID     uuid.UUID
	TransactionID string
	ResponseCode  string
	Message       string
}

// IsSuccess reports whether the verified callback indicates a captured payment.
func (v VerifyResult) IsSuccess() bool {
	return v.Verified && v.ResponseCode == ResponseCodeSuccess
}

// VerifyCallback recomputes the signature over all received parameters except
// the secure-hash fields and compares it to the received hash. It fails closed:
// a missing or mismatched hash means no other field is trusted.
func (c *Client) VerifyCallback(params url.Values) VerifyResult {
	received := params.Get(paramSecureHash)
	if received == "" {
		return VerifyResult{Message: "Missing signature"}
	}

	flat := make(map[string]string, len(params))
	for k := range params {
		if k == paramSecureHash || k == paramSecureHashType {
			continue
		}
		flat[k] = params.Get(k)
	}

	computed := c.sign(canonicalChain(flat))
	if !strings.EqualFold(computed, received) {
		return VerifyResult{Message: "Invalid signature"}
	}

	result := VerifyResult{
		Verified:      true,
		TransactionID: params.Get("vnp_TransactionNo"),
		ResponseCode:  params.Get("vnp_ResponseCode"),
	}
	if id, err := uuid.Parse(params.Get("vnp_TxnRef")); err == nil {
		result.PaymentID = id
	}
	return result
}

// canonicalChain serializes params in lexicographic key order as an
// URL-encoded key=value chain. Keys and values are encoded independently;
// empty values are omitted on both the signing and verification paths.
func canonicalChain(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("&")
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

func (c *Client) sign(chain string) string {
	mac := hmac.New(sha512.New, []byte(c.hashSecret))
	mac.Write([]byte(chain))
	return hex.EncodeToString(mac.Sum(nil))
}
