package logging

import (
	"log/slog"
)

// WithSession creates a logger with session context.
// Use this to automatically include the session id in all logs.
//
// Example:
//
//	log := logging.WithSession(sessionID)
//	log.Info("starting operation")
//	log.Debug("processing", "rows", count)
func WithSession(sessionID uint64) *slog.Logger {
	return GetLogger().With("session_id", sessionID)
}

// WithTable creates a logger with table context.
// Use this for catalog and table operations.
//
// Example:
//
//	log := logging.WithTable("users")
//	log.Info("table operation", "action", "create")
func WithTable(tableName string) *slog.Logger {
	return GetLogger().With("table", tableName)
}

// WithTableSession creates a logger with both session and table context.
//
// Example:
//
//	log := logging.WithTableSession(sessionID, "orders")
//	log.Info("inserting rows", "count", 10)
func WithTableSession(sessionID uint64, tableName string) *slog.Logger {
	return GetLogger().With("session_id", sessionID, "table", tableName)
}

// WithIndex creates a logger with index context.
//
// Example:
//
//	log := logging.WithIndex("idx_user_email")
//	log.Debug("index lookup", "key", email)
func WithIndex(indexName string) *slog.Logger {
	return GetLogger().With("index", indexName)
}

// WithLock creates a logger with lock context.
// Useful for lock manager operations.
//
// Example:
//
//	log := logging.WithLock(sessionID, tableName)
//	log.Info("lock acquired", "lock_type", "exclusive")
func WithLock(sessionID uint64, tableName string) *slog.Logger {
	return GetLogger().With("session_id", sessionID, "table", tableName)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("catalog")
//	log.Info("component initialized")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
// Use this when logging errors to include the error in structured format.
//
// Example:
//
//	log := logging.WithError(err)
//	log.Error("operation failed", "operation", "insert")
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
