package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/franckludovic/travelbuddy/internal/client/models"
)

// Resource is the CRUD surface of one backend collection.
type Resource[T any] struct {
	c    *HTTPClient
	path string
}

func newResource[T any](c *HTTPClient, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (c *HTTPClient) Places() *Resource[models.Place] { return newResource[models.Place](c, "places") }
func (c *HTTPClient) Notes() *Resource[models.Note]   { return newResource[models.Note](c, "notes") }
func (c *HTTPClient) Favorites() *Resource[models.Favorite] {
	return newResource[models.Favorite](c, "favorites")
}
func (c *HTTPClient) PlannedVisits() *Resource[models.PlannedVisit] {
	return newResource[models.PlannedVisit](c, "planned-visits")
}

func (r *Resource[T]) item(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// List returns the collection, optionally filtered (e.g. place_id=3).
func (r *Resource[T]) List(ctx context.Context, filter url.Values) ([]T, error) {
	var out []T
	if err := r.c.doJSON(ctx, http.MethodGet, r.path, filter, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodGet, r.item(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts body, the collection's create shape.
func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodPost, r.path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Update(ctx context.Context, id int64, body any) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodPut, r.item(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Patch(ctx context.Context, id int64, body any) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodPatch, r.item(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.doJSON(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}
