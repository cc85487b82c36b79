package vnpay

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/config"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(config.VNPayConfig{
		TmnCode:    "LENSCRAFT",
		HashSecret: "unit-test-hash-secret",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		Expiry:     15 * time.Minute,
	})
	require.NoError(t, err)
	return client
}

func testRequest() PaymentRequest {
	return PaymentRequest{
		PaymentID: uuid.New(),
		Amount:    decimal.RequireFromString("250.00"),
		OrderInfo: "LensCraft order payment",
		ClientIP:  "203.0.113.7",
		ReturnURL: "https://shop.example.com/payments/vnpay/return",
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.VNPayConfig{HashSecret: "x", PayURL: "y"})
	require.Error(t, err)

	_, err = NewClient(config.VNPayConfig{TmnCode: "x", PayURL: "y"})
	require.Error(t, err)
}

func TestBuildPaymentURLScalesAmount(t *testing.T) {
	client := testClient(t)
	built, err := client.BuildPaymentURL(testRequest())
	require.NoError(t, err)

	parsed, err := url.Parse(built)
	require.NoError(t, err)
	query := parsed.Query()
	require.Equal(t, "25000", query.Get("vnp_Amount"))
	require.Equal(t, Version, query.Get("vnp_Version"))
	require.Equal(t, CommandPay, query.Get("vnp_Command"))
	require.Equal(t, CurrencyVND, query.Get("vnp_CurrCode"))
	require.Equal(t, "20260314093000", query.Get("vnp_CreateDate"))
	require.Equal(t, "20260314094500", query.Get("vnp_ExpireDate"))
	require.NotEmpty(t, query.Get("vnp_SecureHash"))
}

func TestBuildPaymentURLTruncatesFractionalScaledAmount(t *testing.T) {
	client := testClient(t)
	req := testRequest()
	req.Amount = decimal.RequireFromString("99.999")

	built, err := client.BuildPaymentURL(req)
	require.NoError(t, err)

	parsed, err := url.Parse(built)
	require.NoError(t, err)
	require.Equal(t, "9999", parsed.Query().Get("vnp_Amount"))
}

func TestBuildPaymentURLSortsParameters(t *testing.T) {
	client := testClient(t)
	built, err := client.BuildPaymentURL(testRequest())
	require.NoError(t, err)

	rawQuery := strings.SplitN(built, "?", 2)[1]
	pairs := strings.Split(rawQuery, "&")
	// Everything before the trailing hash fields must be sorted.
	var keys []string
	for _, pair := range pairs {
		key := strings.SplitN(pair, "=", 2)[0]
		if key == paramSecureHash || key == paramSecureHashType {
			continue
		}
		keys = append(keys, key)
	}
	for i := 1; i < len(keys); i++ {
		require.Less(t, keys[i-1], keys[i])
	}
}

func TestVerifyCallbackRoundTrip(t *testing.T) {
	client := testClient(t)
	req := testRequest()
	built, err := client.BuildPaymentURL(req)
	require.NoError(t, err)

	parsed, err := url.Parse(built)
	require.NoError(t, err)
	params := parsed.Query()
	params.Set("vnp_ResponseCode", ResponseCodeSuccess)
	params.Set("vnp_TransactionNo", "14422574")
	// The gateway signs its own response; emulate it with the shared secret.
	resigned := resign(client, params)

	result := client.VerifyCallback(resigned)
	require.True(t, result.Verified)
	require.True(t, result.IsSuccess())
	require.Equal(t, req.PaymentID, result.PaymentID)
	require.Equal(t, "14422574", result.TransactionID)
}

func TestVerifyCallbackRejectsTamperedAmount(t *testing.T) {
	client := testClient(t)
	built, err := client.BuildPaymentURL(testRequest())
	require.NoError(t, err)

	parsed, err := url.Parse(built)
	require.NoError(t, err)
	params := parsed.Query()
	params.Set("vnp_Amount", "1")

	result := client.VerifyCallback(params)
	require.False(t, result.Verified)
	require.Equal(t, "Invalid signature", result.Message)
	require.Empty(t, result.ResponseCode)
	require.Equal(t, uuid.Nil, result.PaymentID)
}

func TestVerifyCallbackFailsClosedWithoutHash(t *testing.T) {
	client := testClient(t)
	params := url.Values{}
	params.Set("vnp_ResponseCode", ResponseCodeSuccess)

	result := client.VerifyCallback(params)
	require.False(t, result.Verified)
	require.False(t, result.IsSuccess())
}

func TestVerifyCallbackHashComparisonIsCaseInsensitive(t *testing.T) {
	client := testClient(t)
	built, err := client.BuildPaymentURL(testRequest())
	require.NoError(t, err)

	parsed, err := url.Parse(built)
	require.NoError(t, err)
	params := parsed.Query()
	params.Set(paramSecureHash, strings.ToUpper(params.Get(paramSecureHash)))

	result := client.VerifyCallback(params)
	require.True(t, result.Verified)
}

func TestVerifyCallbackUnparseableTxnRefFallsBack(t *testing.T) {
	client := testClient(t)
	params := url.Values{}
	params.Set("vnp_TxnRef", "not-a-uuid")
	params.Set("vnp_ResponseCode", "24")
	resigned := resign(client, params)

	result := client.VerifyCallback(resigned)
	require.True(t, result.Verified)
	require.False(t, result.IsSuccess())
	require.Equal(t, uuid.Nil, result.PaymentID)
}

// resign recomputes the secure hash the way the gateway would before sending
// a callback.
func resign(client *Client, params url.Values) url.Values {
	flat := make(map[string]string, len(params))
	for k := range params {
		if k == paramSecureHash || k == paramSecureHashType {
			continue
		}
		flat[k] = params.Get(k)
	}
	out := url.Values{}
	for k, v := range flat {
		out.Set(k, v)
	}
	out.Set(paramSecureHash, client.sign(canonicalChain(flat)))
	return out
}
