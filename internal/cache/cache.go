package cache

import "time"

const (
	ProductCacheTTL     = 10 * time.Minute
	ProductListCacheTTL = 5 * time.Minute

	productListKey = "products:all"
)

func ProductKey(productID string) string {
	return "product:" + productID
}

func ProductListKey() string {
	return productListKey
}
