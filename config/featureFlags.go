package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y" || v == "on"
}

// ReportCacheEnabled turns on Redis caching of stored report reads.
//
// Set via env:
// - ENABLE_REPORT_CACHE=true
func ReportCacheEnabled() bool {
	return boolFromEnv("ENABLE_REPORT_CACHE")
}

// ReportCacheTTL is REPORT_CACHE_TTL_SECONDS (default 120s).
func ReportCacheTTL() time.Duration {
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

// ReportSlowMs is REPORT_SLOW_MS (default 500ms).
func ReportSlowMs() int64 {
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

// ReportLockEnabled serialises report writes per report id through Redis.
// Defaults to on; REPORT_LOCK_ENABLED=false gives plain last-write-wins.
func ReportLockEnabled() bool {
	if strings.TrimSpace(os.Getenv("REPORT_LOCK_ENABLED")) == "" {
		return true
	}
	return boolFromEnv("REPORT_LOCK_ENABLED")
}

// BusinessTimezone is used for day boundaries of reports (BUSINESS_TIMEZONE, default UTC).
func BusinessTimezone() *time.Location {
	name := strings.TrimSpace(os.Getenv("BUSINESS_TIMEZONE"))
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
