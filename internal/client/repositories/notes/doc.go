// Package notes provides local persistence for journal notes.
//
// Notes belong to a user and a place and sync independently of their place.
// Content updates reset synched to 0.
package notes
