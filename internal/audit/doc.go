// Package audit provides the typed audit-record model shared by every other
// auditlens package.
//
// This package contains type definitions and pure helpers only. It imports
// nothing internal, so the store, the provenance views, the lineage merge
// and the trace renderer can all depend on it without cycles.
//
// Key design constraints:
//   - One Go struct per audited entity (ProductAudit, OrderAudit,
//     CustomerAudit, PaymentAudit); each carries only its own old/new pairs
//   - Every nullable snapshot uses an explicit Null* type, never a pointer
//   - Money is integer cents; arithmetic on prices is exact
//   - Timestamps are normalized to UTC before they are stored or compared
//   - Records are ordered by (ChangedAt, AuditID); see Header.Before
package audit
