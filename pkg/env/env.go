// Package env reads raw process environment variables. Application
// configuration goes through envconfig; these helpers exist for the few
// knobs needed before config is loaded, such as logger bootstrap and
// instance identity.
package env

import "os"

// Get returns the named variable, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// First returns the first non-empty value among keys, or fallback when
// none of them are set.
func First(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return fallback
}
