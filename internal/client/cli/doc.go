// Package cli provides the travel journal command-line client.
//
// Every command works against the local store, so the journal is fully usable
// offline. Rows written here are pushed to the backend by "sync" or, in the
// interactive shell, automatically when connectivity returns.
//
// Two ways to run it:
//
//	journal place add --title Cafe --lat 1 --lon 2 --photo ~/a.jpg
//	journal                       # interactive shell; same commands, one per line
//
// One-shot commands act for the account named by --email (or user.email):
// with api.token set the token is adopted, otherwise the local password is
// prompted for. The shell additionally offers signup and login.
package cli
