// Package synclogs persists the audit trail of sync passes: one row per
// pass with its time, outcome and a short summary message.
package synclogs
