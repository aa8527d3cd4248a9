package data

import "context"

type MovieDTO struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"entityType"`

	MovieId     string   `dynamodbav:"movieId"`
	Title       string   `dynamodbav:"title"`
	ReleaseYear *int     `dynamodbav:"releaseYear"`
	Genres      []string `dynamodbav:"genres"`
	Directors   []string `dynamodbav:"directors"`
	Cast        []string `dynamodbav:"cast"`
	Synopsis    *string  `dynamodbav:"synopsis"`
	PosterUrl   *string  `dynamodbav:"posterUrl"`
	Runtime     *int     `dynamodbav:"runtime"`
	Rating      *float64 `dynamodbav:"rating"`
	TmdbId      *string  `dynamodbav:"tmdbId"`
	ImdbId      *string  `dynamodbav:"imdbId"`

	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

type MovieInputDTO struct {
	Title       *string
	ReleaseYear *int
	Genres      *[]string
	Directors   *[]string
	Cast        *[]string
	Synopsis    *string
	PosterUrl   *string
	Runtime     *int
	Rating      *float64
	TmdbId      *string
	ImdbId      *string
}

type MovieDataService interface {
	CreateMovie(ctx context.Context, input MovieInputDTO) (MovieDTO, error)
	GetMovieById(ctx context.Context, movieId string) (MovieDTO, error)
	// GetMovieByTmdbId resolves an external catalog id. Backed by a filtered
	// scan, not an index; the contract stays even if the mechanism changes.
	GetMovieByTmdbId(ctx context.Context, tmdbId string) (MovieDTO, error)
	ListMovies(ctx context.Context, params QueryParams) (QueryResults[MovieDTO], error)
	UpdateMovie(ctx context.Context, movieId string, input MovieInputDTO) (MovieDTO, error)
	DeleteMovie(ctx context.Context, movieId string) error
}
