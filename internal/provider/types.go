// Package provider abstracts the external catalog the curation API enriches
// itself from. Results come back in the public transfer shapes, never as
// stored rows.
package provider

import (
	"context"

	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/routes/movies"
	"worthwatch.me/watchlists/internal/routes/shows"
)

type ContentProvider interface {
	SearchMovies(ctx context.Context, text string) (data.QueryResults[movies.Movie], error)
	LookupMovie(ctx context.Context, id string) (movies.Movie, error)
	SearchShows(ctx context.Context, text string) (data.QueryResults[shows.Show], error)
	LookupShow(ctx context.Context, id string) (shows.Show, error)
}
