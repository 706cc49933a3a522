package cache

import (
	"fmt"
	"net/url"
)

const (
	KeyCatalogSnapshot = "catalog:snapshot"
	KeyCatalogVersion  = "catalog:version"
)

// KeyFare scopes a fare result to the catalog version it was computed from.
// Stop names are escaped so a ':' inside a name cannot shift the boundary.
func KeyFare(version, start, end string) string {
	return fmt.Sprintf("fare:%s:%s:%s", version, url.QueryEscape(start), url.QueryEscape(end))
}

// KeyFarePattern matches every fare cached for version.
func KeyFarePattern(version string) string {
	return fmt.Sprintf("fare:%s:*", version)
}
