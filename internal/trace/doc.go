// Package trace returns the full audit history of a single entity and
// renders it as a human-readable change narrative.
//
// Trace reads one audit table, oldest first, joined to Users for the acting
// username. Narrate is pure: it only looks at the entries it is given, so
// the CLI and HTTP layers can render the same history both ways.
package trace
