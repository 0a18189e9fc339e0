package models

import "time"

// Shopify authentication methods.
const (
	ShopifyAuthAccessToken = "access_token"
	ShopifyAuthBasic       = "basic"
)

// ShopifyConfig holds the Admin API credentials of a Shopify store.
// Either AccessToken (preferred) or the legacy APIKey/APISecret pair is used.
type ShopifyConfig struct {
	ID          int       `db:"id" json:"id"`
	ShopName    string    `db:"shop_name" json:"shop_name"`
	APIKey      string    `db:"api_key" json:"-"`
	APISecret   string    `db:"api_secret" json:"-"`
	AccessToken string    `db:"access_token" json:"-"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ShopifyConfigPublic is the read shape of a Shopify configuration.
type ShopifyConfigPublic struct {
	ID         int       `json:"id"`
	ShopName   string    `json:"shop_name"`
	IsActive   bool      `json:"is_active"`
	AuthMethod string    `json:"auth_method"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuthMethod reports which credentials requests will carry.
func (c *ShopifyConfig) AuthMethod() string {
	if c.AccessToken != "" {
		return ShopifyAuthAccessToken
	}
	return ShopifyAuthBasic
}

// Public projects the configuration without secrets.
func (c *ShopifyConfig) Public() ShopifyConfigPublic {
	return ShopifyConfigPublic{
		ID:         c.ID,
		ShopName:   c.ShopName,
		IsActive:   c.IsActive,
		AuthMethod: c.AuthMethod(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// ShopifyConfigInput is the write shape of a Shopify configuration.
type ShopifyConfigInput struct {
	ShopName    *string `json:"shop_name" binding:"omitempty,max=255"`
	APIKey      *string `json:"api_key" binding:"omitempty,max=255"`
	APISecret   *string `json:"api_secret" binding:"omitempty,max=255"`
	AccessToken *string `json:"access_token" binding:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active"`
}
