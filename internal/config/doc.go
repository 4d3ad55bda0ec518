// Package config provides 12-factor configuration for the console core.
//
// Configuration is loaded from environment variables with sensible
// defaults. The backend base address is resolved once at startup: the
// production URL is selected when ENV=production unless API_URL is set
// explicitly.
//
// Environment Variables:
//   - API_URL, ENV, API_TIMEOUT, API_RATE_LIMIT
//   - SESSION_STORE, ALLOWLIST_PATH
//   - LOG_LEVEL, LOG_DEV
//   - POLL_INTERVAL, POLL_ENABLED
package config
