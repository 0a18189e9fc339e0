package models

import "time"

// IzipayConfig holds the credentials used to talk to the Izipay payment gateway.
// Secrets are never serialized; use Public for read responses.
type IzipayConfig struct {
	ID           int       `db:"id" json:"id"`
	MerchantCode string    `db:"merchant_code" json:"merchant_code"`
	APIKey       string    `db:"api_key" json:"-"`
	HashKey      string    `db:"hash_key" json:"-"`
	PublicKey    string    `db:"public_key" json:"public_key"`
	ScriptURL    string    `db:"script_url" json:"script_url"`
	IsSandbox    bool      `db:"is_sandbox" json:"is_sandbox"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IzipayConfigPublic is the read shape of an Izipay configuration.
type IzipayConfigPublic struct {
	ID           int       `json:"id"`
	MerchantCode string    `json:"merchant_code"`
	PublicKey    string    `json:"public_key"`
	ScriptURL    string    `json:"script_url"`
	IsSandbox    bool      `json:"is_sandbox"`
	IsActive     bool      `json:"is_active"`
	Environment  string    `json:"environment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public projects the configuration without secrets.
func (c *IzipayConfig) Public() IzipayConfigPublic {
	return IzipayConfigPublic{
		ID:           c.ID,
		MerchantCode: c.MerchantCode,
		PublicKey:    c.PublicKey,
		ScriptURL:    c.ScriptURL,
		IsSandbox:    c.IsSandbox,
		IsActive:     c.IsActive,
		Environment:  c.Environment(),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// Environment returns "Sandbox" or "Producción".
func (c *IzipayConfig) Environment() string {
	return EnvironmentLabel(c.IsSandbox)
}

// IzipayScriptInfo describes how a storefront embeds the Izipay widget.
type IzipayScriptInfo struct {
	ScriptTag    string `json:"script_tag"`
	ScriptURL    string `json:"script_url"`
	Environment  string `json:"environment"`
	MerchantCode string `json:"merchant_code"`
}

// IzipayCheckoutConfig is the bootstrap payload consumed by the checkout widget.
type IzipayCheckoutConfig struct {
	MerchantCode string `json:"merchantCode"`
	IsSandbox    bool   `json:"isSandbox"`
	ScriptURL    string `json:"scriptUrl"`
	KeyRSA       string `json:"keyRSA"`
}

// IzipayConfigInput is the write shape of an Izipay configuration. Nil
// fields are absent from the request; script_url is accepted but always
// replaced by the URL of the selected environment.
type IzipayConfigInput struct {
	MerchantCode *string `json:"merchant_code" binding:"omitempty,max=50"`
	APIKey       *string `json:"api_key" binding:"omitempty,max=255"`
	HashKey      *string `json:"hash_key" binding:"omitempty,max=255"`
	PublicKey    *string `json:"public_key"`
	ScriptURL    *string `json:"script_url" binding:"omitempty,url"`
	IsSandbox    *bool   `json:"is_sandbox"`
	IsActive     *bool   `json:"is_active"`
}
