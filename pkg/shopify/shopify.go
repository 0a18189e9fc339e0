// Package shopify builds Shopify Admin API requests for a stored store configuration.
package shopify

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/go-playground/validator/v10"
)

// APIVersion is the Admin API version used for every request.
const APIVersion = "2024-04"

// UnknownShopName is reported when shop.json carries no name.
const UnknownShopName = "Unknown"

// Credentials are the authentication material of one store.
type Credentials struct {
	AccessToken string
	APIKey      string
	APISecret   string
}

var hostValidator = validator.New()

// ValidShopName reports whether shop is a bare host name such as
// "store.myshopify.com": no scheme, userinfo, port, path or query.
func ValidShopName(shop string) bool {
	if len(shop) > 253 || strings.HasSuffix(shop, ".") {
		return false
	}
	return hostValidator.Var(shop, "fqdn") == nil
}

// APIURL returns the Admin API URL of endpoint on shop.
func APIURL(shop, endpoint string) string {
	u := url.URL{
		Scheme: "https",
		Host:   shop,
		Path:   "/admin/api/" + APIVersion + "/" + endpoint,
	}
	return u.String()
}

// Headers returns the request headers for creds. The access token is
// preferred; otherwise the legacy key pair is sent as Basic auth. Credentials
// are never placed in the URL.
func Headers(creds Credentials, basicAuth func(user, pass string) string) http.Header {
	h := http.Header{}
	if creds.AccessToken != "" {
		h.Set("X-Shopify-Access-Token", creds.AccessToken)
	} else {
		h.Set("Authorization", basicAuth(creds.APIKey, creds.APISecret))
	}
	h.Set("Content-Type", "application/json")
	return h
}

type shopResource struct {
	Shop *goshopify.Shop `json:"shop"`
}

// ShopName extracts shop.name from a shop.json body, or UnknownShopName.
func ShopName(body []byte) string {
	var res shopResource
	if err := json.Unmarshal(body, &res); err == nil {
		if res.Shop != nil && res.Shop.Name != "" {
			return res.Shop.Name
		}
		return UnknownShopName
	}

	// Some fields of the full resource may not match the typed model.
	var loose struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := json.Unmarshal(body, &loose); err == nil && loose.Shop.Name != "" {
		return loose.Shop.Name
	}
	return UnknownShopName
}
