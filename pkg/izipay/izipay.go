// Package izipay holds the Izipay endpoints and the request used to probe the
// charge API.
package izipay

import (
	"fmt"
	"net/http"
	"time"
)

// Endpoints per environment.
const (
	SandboxScriptURL    = "https://sandbox-checkout.izipay.pe/payments/v1/js/index.js"
	ProductionScriptURL = "https://checkout.izipay.pe/payments/v1/js/index.js"

	SandboxChargeURL    = "https://sandbox-checkout.izipay.pe/api-payment/V4/Charge/CreatePayment"
	ProductionChargeURL = "https://checkout.izipay.pe/api-payment/V4/Charge/CreatePayment"
)

// Probe charge parameters.
const (
	ProbeAmount   = 100
	ProbeCurrency = "PEN"

	orderIDLayout = "20060102150405"
)

// ScriptURL returns the checkout script URL for the environment.
func ScriptURL(isSandbox bool) string {
	if isSandbox {
		return SandboxScriptURL
	}
	return ProductionScriptURL
}

// ChargeURL returns the CreatePayment URL for the environment.
func ChargeURL(isSandbox bool) string {
	if isSandbox {
		return SandboxChargeURL
	}
	return ProductionChargeURL
}

// ScriptTag renders the HTML tag that loads the checkout script.
func ScriptTag(scriptURL string) string {
	return fmt.Sprintf(`<script src="%s" defer></script>`, scriptURL)
}

// ChargeRequest is the probe payload. Field order is the signed byte order.
type ChargeRequest struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	OrderID  string `json:"orderId"`
}

// NewProbeCharge builds the probe payload with an order id derived from now in UTC.
func NewProbeCharge(now time.Time) ChargeRequest {
	return ChargeRequest{
		Amount:   ProbeAmount,
		Currency: ProbeCurrency,
		OrderID:  "test-" + now.UTC().Format(orderIDLayout),
	}
}

// ChargeHeaders returns the headers of a signed charge request.
func ChargeHeaders(authorization, signature string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", authorization)
	h.Set("X-Hmac-Sha256", signature)
	return h
}
