// Package favorites provides local persistence for user favorites.
//
// A favorite is a (user, place) pair; the pair is unique, so Add is
// idempotent and returns the existing row's id on repeats.
package favorites
