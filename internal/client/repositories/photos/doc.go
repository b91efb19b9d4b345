// Package photos provides local persistence for place_photos and note_photos.
//
// Both tables share one shape and one repository type; NewPlacePhotos and
// NewNotePhotos bind it to the right table and owner column.
//
// # Upload state
//
// A photo starts with local_path set (the staged asset) and no photo_url. The
// sync engine uploads the asset, records the URL with SetPhotoURL (which does
// not touch synched), pushes the row and finally calls MarkSynched. Rows that
// are synched and have a URL can have their local asset evicted: see
// ListEvictable and ClearLocalPath.
//
// Update bumps the row version. Replacing local_path without a URL also clears
// photo_url, so the new asset counts as pending upload again.
package photos
