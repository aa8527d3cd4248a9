package movies

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/google/uuid"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/keys"
	"worthwatch.me/watchlists/internal/dynamodb/services"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/exceptions"
)

type MovieDynamoDBService struct {
	table *services.TableDynamoDBService[data.MovieDTO, data.MovieInputDTO]
}

func NewMovieService(tableName string, client services.DynamoDBApi, marshaler token.TokenMarshaler) data.MovieDataService {
	return &MovieDynamoDBService{
		table: &services.TableDynamoDBService[data.MovieDTO, data.MovieInputDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "Movie",
			Shim: func(pk, sk string) data.MovieDTO {
				return data.MovieDTO{PK: pk, SK: sk}
			},
			OnCreate: func(input data.MovieInputDTO, now, pk, sk string) data.MovieDTO {
				movie := data.MovieDTO{
					PK:          pk,
					SK:          sk,
					EntityType:  string(keys.KindMovie),
					Title:       *input.Title,
					ReleaseYear: input.ReleaseYear,
					Synopsis:    input.Synopsis,
					PosterUrl:   input.PosterUrl,
					Runtime:     input.Runtime,
					Rating:      input.Rating,
					TmdbId:      input.TmdbId,
					ImdbId:      input.ImdbId,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if _, id, err := keys.Decode(pk); err == nil {
					movie.MovieId = id
				}
				if input.Genres != nil {
					movie.Genres = *input.Genres
				}
				if input.Directors != nil {
					movie.Directors = *input.Directors
				}
				if input.Cast != nil {
					movie.Cast = *input.Cast
				}
				return movie
			},
			OnUpdate: func(input data.MovieInputDTO, update expression.UpdateBuilder) {
				if input.Title != nil {
					update.Set(expression.Name("title"), expression.Value(input.Title))
				}
				if input.ReleaseYear != nil {
					update.Set(expression.Name("releaseYear"), expression.Value(input.ReleaseYear))
				}
				if input.Genres != nil {
					update.Set(expression.Name("genres"), expression.Value(input.Genres))
				}
				if input.Directors != nil {
					update.Set(expression.Name("directors"), expression.Value(input.Directors))
				}
				if input.Cast != nil {
					update.Set(expression.Name("cast"), expression.Value(input.Cast))
				}
				if input.Synopsis != nil {
					update.Set(expression.Name("synopsis"), expression.Value(input.Synopsis))
				}
				if input.PosterUrl != nil {
					update.Set(expression.Name("posterUrl"), expression.Value(input.PosterUrl))
				}
				if input.Runtime != nil {
					update.Set(expression.Name("runtime"), expression.Value(input.Runtime))
				}
				if input.Rating != nil {
					update.Set(expression.Name("rating"), expression.Value(input.Rating))
				}
				if input.TmdbId != nil {
					update.Set(expression.Name("tmdbId"), expression.Value(input.TmdbId))
				}
				if input.ImdbId != nil {
					update.Set(expression.Name("imdbId"), expression.Value(input.ImdbId))
				}
			},
		},
	}
}

func movieAddress(movieId string) (services.Address, error) {
	pk, err := keys.Encode(keys.KindMovie, movieId)
	if err != nil {
		return services.Address{}, err
	}
	return services.Address{Id: movieId, PK: pk, SK: keys.MetadataSK}, nil
}

func (ms *MovieDynamoDBService) CreateMovie(ctx context.Context, input data.MovieInputDTO) (data.MovieDTO, error) {
	if input.Title == nil {
		return data.MovieDTO{}, exceptions.InvalidInput("A movie requires a title.")
	}
	addr, err := movieAddress(uuid.NewString())
	if err != nil {
		return data.MovieDTO{}, err
	}
	return ms.table.Create(ctx, addr, input)
}

func (ms *MovieDynamoDBService) GetMovieById(ctx context.Context, movieId string) (data.MovieDTO, error) {
	addr, err := movieAddress(movieId)
	if err != nil {
		return data.MovieDTO{}, err
	}
	return ms.table.Get(ctx, addr)
}

// GetMovieByTmdbId walks filtered scan pages until the id turns up. No index
// covers external catalog ids; a sparse GSI on tmdbId would retire this scan.
func (ms *MovieDynamoDBService) GetMovieByTmdbId(ctx context.Context, tmdbId string) (data.MovieDTO, error) {
	filter := expression.Name("entityType").Equal(expression.Value(string(keys.KindMovie))).
		And(expression.Name("tmdbId").Equal(expression.Value(tmdbId)))
	params := data.QueryParams{}
	for {
		page, err := ms.table.ScanFilter(ctx, "movie-tmdb:"+tmdbId, filter, params)
		if err != nil {
			return data.MovieDTO{}, err
		}
		if len(page.Items) > 0 {
			return page.Items[0], nil
		}
		if len(page.NextToken) == 0 {
			return data.MovieDTO{}, exceptions.NotFound("movie", tmdbId)
		}
		params.NextToken = page.NextToken
	}
}

func (ms *MovieDynamoDBService) ListMovies(ctx context.Context, params data.QueryParams) (data.QueryResults[data.MovieDTO], error) {
	return ms.table.Query(ctx, services.Query{
		IndexName:    services.TypeIndex,
		Scope:        "movie-catalog",
		KeyCondition: expression.Key(services.TypeIndexAttr).Equal(expression.Value(string(keys.KindMovie))),
	}, params)
}

func (ms *MovieDynamoDBService) UpdateMovie(ctx context.Context, movieId string, input data.MovieInputDTO) (data.MovieDTO, error) {
	addr, err := movieAddress(movieId)
	if err != nil {
		return data.MovieDTO{}, err
	}
	return ms.table.Update(ctx, addr, input)
}

func (ms *MovieDynamoDBService) DeleteMovie(ctx context.Context, movieId string) error {
	addr, err := movieAddress(movieId)
	if err != nil {
		return err
	}
	return ms.table.Delete(ctx, addr)
}
