package izipay

import (
	"testing"
	"time"
)

func TestScriptURL(t *testing.T) {
	if got := ScriptURL(true); got != "https://sandbox-checkout.izipay.pe/payments/v1/js/index.js" {
		t.Errorf("unexpected sandbox script url %s", got)
	}
	if got := ScriptURL(false); got != "https://checkout.izipay.pe/payments/v1/js/index.js" {
		t.Errorf("unexpected production script url %s", got)
	}
}

func TestChargeURL(t *testing.T) {
	if got := ChargeURL(true); got != SandboxChargeURL {
		t.Errorf("expected sandbox charge url, got %s", got)
	}
	if got := ChargeURL(false); got != ProductionChargeURL {
		t.Errorf("expected production charge url, got %s", got)
	}
}

func TestScriptTag(t *testing.T) {
	want := `<script src="https://checkout.izipay.pe/payments/v1/js/index.js" defer></script>`
	if got := ScriptTag(ProductionScriptURL); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestNewProbeChargeUsesUTC(t *testing.T) {
	lima := time.FixedZone("PET", -5*60*60)
	now := time.Date(2024, 1, 1, 22, 4, 5, 0, lima)

	charge := NewProbeCharge(now)
	if charge.OrderID != "test-20240102030405" {
		t.Errorf("expected UTC order id, got %s", charge.OrderID)
	}
	if charge.Amount != 100 || charge.Currency != "PEN" {
		t.Errorf("unexpected charge %+v", charge)
	}
}

func TestChargeHeaders(t *testing.T) {
	h := ChargeHeaders("Basic abc", "deadbeef")
	if h.Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", h.Get("Content-Type"))
	}
	if h.Get("Authorization") != "Basic abc" {
		t.Errorf("unexpected authorization %q", h.Get("Authorization"))
	}
	if h.Get("X-Hmac-Sha256") != "deadbeef" {
		t.Errorf("unexpected signature header %q", h.Get("X-Hmac-Sha256"))
	}
}
