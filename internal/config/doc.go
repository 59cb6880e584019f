// Package config manages application configuration for the DareMatch API.
//
// The config package loads and validates configuration from environment
// variables. All configuration is centralized here to provide a single
// source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: token verification settings
//   - GameConfig: game surface tunables (heartbeats, rate limits)
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT             - HTTP server port (default: 8080)
//	SERVER_ENV              - development, production, or test
//	DB_HOST                 - SurrealDB host
//	DB_NAMESPACE            - Database namespace (default: darematch)
//	JWT_PUBLIC_KEY_PATH     - Verification key for externally issued tokens
//	GAME_HEARTBEAT_INTERVAL - Keepalive cadence on SSE and WebSocket feeds
//
// Tokens are issued by the identity provider, so production only requires
// the public verification key. The private key path exists for local
// development tooling.
//
// # Default Values
//
// Sensible defaults are provided for development; Load never fails, and
// Validate reports every problem at once via errors.Join.
package config
