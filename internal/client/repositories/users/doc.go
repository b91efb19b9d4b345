// Package users provides local persistence for user accounts.
//
// Accounts are created on signup, online or offline. Offline signups carry an
// argon2id password hash so the user can log in again without a network; see
// internal/cryptox. Users are never part of a sync pass.
//
// Typical Usage
//
//	repo := users.NewSQLiteRepository(db)
//	id, err := repo.Create(ctx, &models.User{FullName: "Ana", Email: "ana@example.com"})
//	u, err := repo.GetByEmail(ctx, "ana@example.com") // nil, nil when absent
package users
