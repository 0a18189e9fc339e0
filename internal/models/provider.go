package models

// Provider identifies a third-party integration whose credentials are stored.
type Provider string

const (
	ProviderIzipay  Provider = "izipay"
	ProviderShopify Provider = "shopify"
)

// Providers lists every supported provider in routing order.
var Providers = []Provider{ProviderIzipay, ProviderShopify}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderIzipay, ProviderShopify:
		return true
	}
	return false
}

// Environment labels shown for Izipay configurations.
const (
	EnvironmentSandbox    = "Sandbox"
	EnvironmentProduction = "Producción"
)

// EnvironmentLabel returns the human label for the sandbox flag.
func EnvironmentLabel(isSandbox bool) string {
	if isSandbox {
		return EnvironmentSandbox
	}
	return EnvironmentProduction
}
