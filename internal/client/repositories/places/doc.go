// Package places provides local persistence for captured places.
//
// # Sync state
//
// Every place carries a synched flag. Create stores 0; MarkSynched flips it
// to 1 once the backend accepted the row; any content Update puts it back to
// 0 and bumps the version column, so the edit is pushed on the next pass
// even when it lands while an older copy of the row is being pushed. Deleting a place cascades to its
// photos, notes, favorites and planned visits at the schema level.
//
// Typical Usage
//
//	repo := places.NewSQLiteRepository(db)
//	id, _ := repo.Create(ctx, &models.Place{Title: "Cafe", Latitude: 1, Longitude: 2})
//	_ = repo.Update(ctx, id, models.PlacePatch{Title: &title})
//	pending, _ := repo.ListUnsynched(ctx)
package places
