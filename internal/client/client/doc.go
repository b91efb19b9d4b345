// Package client is the remote gateway: a thin typed wrapper over the
// backend's REST surface.
//
// # Overview
//
// HTTPClient attaches a bearer token (when the token source yields one) to
// every call and turns non-2xx responses into *common.ApiError built from the
// {message, errors[]} body, falling back to a generic message when the body
// is not JSON. Transport failures wrap common.ErrNetworkUnavailable. The
// gateway never retries; retry policy belongs to the sync engine.
//
// Resources
//
//   - Places, Notes, Favorites, PlannedVisits: list/get/create/put/patch/delete
//   - SyncRow: POST /{table}/sync, used only by the sync engine
//   - UploadImage: multipart POST /upload
//   - Ping: GET /health
package client
