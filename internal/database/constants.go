package database

import "time"

// Connection pool settings
const (
	// DefaultMinConnections keeps a couple of warm connections so the first
	// request after an idle period doesn't pay the handshake.
	DefaultMinConnections = 2

	// ConnectPingTimeout bounds the startup connectivity check.
	ConnectPingTimeout = 5 * time.Second
)

// Error messages
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
)

// Log messages
const (
	LogMsgConnected = "Connected to the database"
)
