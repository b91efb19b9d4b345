// Package visits provides local persistence for planned visits.
package visits
