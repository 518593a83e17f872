// Package lineage assembles a customer's journey: the customer's own audit
// records merged with every linked order and payment record into one
// chronological sequence.
//
// Journey fetches the three streams concurrently and waits for all of them
// before merging; the first failure cancels the others and no partial
// journey is returned.
//
// Merge is a stable k-way merge ordered by (ChangedAt, EntityType rank).
// Streams must already be sorted; within a stream, input order is kept.
package lineage
