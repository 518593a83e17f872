// Package store provides the relational Audit and Entity store behind
// auditlens.
//
// The store holds current-state rows for Users, Customers, Products, Orders
// and Payments, the four per-entity audit tables (Audit_Products,
// Audit_Orders, Audit_Customers, Audit_Payments) and the generic field-level
// Audit_Log.
//
// # Critical Patterns
//
// Append-only audit trail
//   - Audit tables expose append operations only; database triggers abort
//     any UPDATE or DELETE against them
//   - AppendAudit writes a typed audit row and its Audit_Log decomposition
//     in one transaction
//   - A no-op UPDATE is rejected with ErrNoOpUpdate
//
// Query interface
//   - Readers depend on Querier, not on *Store, so tests and alternative
//     backends can supply their own
//   - Select and SelectAll compile query IR for the store's dialect;
//     RecordColumns and ScanRecord share one column layout per audit table
//   - Every failure leaving the store is a *StoreError carrying either
//     CodeUnavailable or CodeQueryFailure
//
// # Database Configuration
//
// SQLite (driver "sqlite3", the default):
//   - WAL mode, synchronous=NORMAL, busy_timeout=5000, foreign_keys=ON
//   - Single connection; SQLite allows one writer at a time
//
// Postgres (driver "pgx", via the pgx stdlib adapter).
//
// Schemas for both dialects are embedded goose migrations applied by Open.
package store
