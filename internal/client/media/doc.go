// Package media stages captured images into a durable directory before any
// network attempt, so capture, local insertion and upload are decoupled.
//
// Staged files live under <root>/images/<table>/<recordID>/ and are named
// <type>_<unixmillis>_<id8>.<ext>. Staging is atomic: either the file exists
// at the returned path or a *common.MediaStagingError is returned and nothing
// is left behind. Deleting an absent file is not an error.
package media
