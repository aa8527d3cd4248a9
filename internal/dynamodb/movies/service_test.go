package movies_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/movies"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/exceptions"
	"worthwatch.me/watchlists/internal/test"
)

func newMovieService() data.MovieDataService {
	return movies.NewMovieService(test.LocalTableName, test.NewMemoryDynamoDB(), token.NewGCM())
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func TestMovies(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		movieData := newMovieService()
		created, err := movieData.CreateMovie(ctx, data.MovieInputDTO{
			Title:       strPtr("Stalker"),
			ReleaseYear: intPtr(1979),
			Genres:      &[]string{"Science Fiction", "Drama"},
			Directors:   &[]string{"Andrei Tarkovsky"},
			TmdbId:      strPtr("1398"),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.MovieId)
		assert.Equal(t, "MOVIE#"+created.MovieId, created.PK)
		assert.Equal(t, "METADATA", created.SK)
		require.NotNil(t, created.ReleaseYear)
		assert.Equal(t, 1979, *created.ReleaseYear)

		found, err := movieData.GetMovieById(ctx, created.MovieId)
		require.NoError(t, err)
		assert.Equal(t, "Stalker", found.Title)
		assert.Equal(t, []string{"Andrei Tarkovsky"}, found.Directors)
	})

	t.Run("CreateRequiresTitle", func(t *testing.T) {
		movieData := newMovieService()
		_, err := movieData.CreateMovie(ctx, data.MovieInputDTO{ReleaseYear: intPtr(1979)})
		var invalid *exceptions.InvalidInputError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("GetByTmdbId", func(t *testing.T) {
		movieData := newMovieService()
		created, err := movieData.CreateMovie(ctx, data.MovieInputDTO{
			Title:  strPtr("Stalker"),
			TmdbId: strPtr("1398"),
		})
		require.NoError(t, err)
		_, err = movieData.CreateMovie(ctx, data.MovieInputDTO{
			Title:  strPtr("Solaris"),
			TmdbId: strPtr("593"),
		})
		require.NoError(t, err)

		found, err := movieData.GetMovieByTmdbId(ctx, "1398")
		require.NoError(t, err)
		assert.Equal(t, created.MovieId, found.MovieId)

		var notFound *exceptions.NotFoundError
		_, err = movieData.GetMovieByTmdbId(ctx, "999999")
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("List", func(t *testing.T) {
		movieData := newMovieService()
		for _, title := range []string{"Stalker", "Solaris", "Mirror"} {
			name := title
			_, err := movieData.CreateMovie(ctx, data.MovieInputDTO{Title: &name})
			require.NoError(t, err)
		}
		results, err := movieData.ListMovies(ctx, data.QueryParams{})
		require.NoError(t, err)
		assert.Len(t, results.Items, 3)
	})

	t.Run("Update", func(t *testing.T) {
		movieData := newMovieService()
		created, err := movieData.CreateMovie(ctx, data.MovieInputDTO{Title: strPtr("Stalkr")})
		require.NoError(t, err)

		updated, err := movieData.UpdateMovie(ctx, created.MovieId, data.MovieInputDTO{
			Title:   strPtr("Stalker"),
			Runtime: intPtr(162),
		})
		require.NoError(t, err)
		assert.Equal(t, "Stalker", updated.Title)
		require.NotNil(t, updated.Runtime)
		assert.Equal(t, 162, *updated.Runtime)

		var notFound *exceptions.NotFoundError
		_, err = movieData.UpdateMovie(ctx, "missing", data.MovieInputDTO{Title: strPtr("Ghost")})
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		movieData := newMovieService()
		created, err := movieData.CreateMovie(ctx, data.MovieInputDTO{Title: strPtr("Stalker")})
		require.NoError(t, err)

		require.NoError(t, movieData.DeleteMovie(ctx, created.MovieId))
		require.NoError(t, movieData.DeleteMovie(ctx, created.MovieId))

		var notFound *exceptions.NotFoundError
		_, err = movieData.GetMovieById(ctx, created.MovieId)
		require.ErrorAs(t, err, &notFound)
	})
}
