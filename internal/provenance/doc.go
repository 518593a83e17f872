// Package provenance derives the WHY, HOW and WHERE views over the audit
// trail, plus per-table histories and change summaries.
//
// Every view is one compiled query followed by an in-memory pass. Views are
// read-only and re-entrant; an Engine holds nothing but its querier.
//
//   - WhyView: justification-bearing product price updates, newest first
//   - HowView: order status transitions grouped by order, with the hours
//     each order spent in its previous status
//   - WhereView: field-level Audit_Log entries with the acting user
//
// A DateRange narrows each view before any derived value is computed, so
// dwell times are measured between consecutive rows inside the window.
package provenance
