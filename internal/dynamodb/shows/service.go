package shows

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

type ShowDynamoDBService struct {
	table *services.TableDynamoDBService[data.ShowDTO, data.ShowInputDTO]
}

func NewShowService(tableName string, client services.DynamoDBApi, marshaler token.TokenMarshaler) data.ShowDataService {
	return &ShowDynamoDBService{
		table: &services.TableDynamoDBService[data.ShowDTO, data.ShowInputDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "Show",
			Shim: func(pk, sk string) data.ShowDTO {
				return data.ShowDTO{PK: pk, SK: sk}
			},
			OnCreate: func(input data.ShowInputDTO, now, pk, sk string) data.ShowDTO {
				show := data.ShowDTO{
					PK:               pk,
					SK:               sk,
					EntityType:       string(keys.KindShow),
					Title:            *input.Title,
					StartYear:        input.StartYear,
					Synopsis:         input.Synopsis,
					PosterUrl:        input.PosterUrl,
					NumberOfSeasons:  input.NumberOfSeasons,
					NumberOfEpisodes: input.NumberOfEpisodes,
					Status:           data.ShowOngoing,
					Rating:           input.Rating,
					TmdbId:           input.TmdbId,
					ImdbId:           input.ImdbId,
					CreatedAt:        now,
					UpdatedAt:        now,
				}
				if _, id, err := keys.Decode(pk); err == nil {
					show.ShowId = id
				}
				if input.EndYear != nil {
					show.EndYear = *input.EndYear
				}
				if input.Status != nil {
					show.Status = *input.Status
				}
				if input.Genres != nil {
					show.Genres = *input.Genres
				}
				if input.Creators != nil {
					show.Creators = *input.Creators
				}
				if input.Cast != nil {
					show.Cast = *input.Cast
				}
				return show
			},
			OnUpdate: func(input data.ShowInputDTO, update expression.UpdateBuilder) {
				if input.Title != nil {
					update.Set(expression.Name("title"), expression.Value(input.Title))
				}
				if input.StartYear != nil {
					update.Set(expression.Name("startYear"), expression.Value(input.StartYear))
				}
				if input.EndYear != nil {
					// An inner nil writes an explicit null, marking the show as
					// back in production rather than leaving a stale year.
					update.Set(expression.Name("endYear"), expression.Value(*input.EndYear))
				}
				if input.Genres != nil {
					update.Set(expression.Name("genres"), expression.Value(input.Genres))
				}
				if input.Creators != nil {
					update.Set(expression.Name("creators"), expression.Value(input.Creators))
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
				if input.NumberOfSeasons != nil {
					update.Set(expression.Name("numberOfSeasons"), expression.Value(input.NumberOfSeasons))
				}
				if input.NumberOfEpisodes != nil {
					update.Set(expression.Name("numberOfEpisodes"), expression.Value(input.NumberOfEpisodes))
				}
				if input.Status != nil {
					update.Set(expression.Name("status"), expression.Value(input.Status))
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

func showAddress(showId string) (services.Address, error) {
	pk, err := keys.Encode(keys.KindShow, showId)
	if err != nil {
		return services.Address{}, err
	}
	return services.Address{Id: showId, PK: pk, SK: keys.MetadataSK}, nil
}

func validStatus(status data.ShowStatus) bool {
	switch status {
	case data.ShowOngoing, data.ShowEnded, data.ShowCancelled:
		return true
	}
	return false
}

func (ss *ShowDynamoDBService) CreateShow(ctx context.Context, input data.ShowInputDTO) (data.ShowDTO, error) {
	if input.Title == nil {
		return data.ShowDTO{}, exceptions.InvalidInput("A show requires a title.")
	}
	if input.Status != nil && !validStatus(*input.Status) {
		return data.ShowDTO{}, exceptions.InvalidInput("Show status must be ongoing, ended, or cancelled.")
	}
	addr, err := showAddress(uuid.NewString())
	if err != nil {
		return data.ShowDTO{}, err
	}
	return ss.table.Create(ctx, addr, input)
}

func (ss *ShowDynamoDBService) GetShowById(ctx context.Context, showId string) (data.ShowDTO, error) {
	addr, err := showAddress(showId)
	if err != nil {
		return data.ShowDTO{}, err
	}
	return ss.table.Get(ctx, addr)
}

func (ss *ShowDynamoDBService) GetShowByTmdbId(ctx context.Context, tmdbId string) (data.ShowDTO, error) {
	filter := expression.Name("entityType").Equal(expression.Value(string(keys.KindShow))).
		And(expression.Name("tmdbId").Equal(expression.Value(tmdbId)))
	params := data.QueryParams{}
	for {
		page, err := ss.table.ScanFilter(ctx, "show-tmdb:"+tmdbId, filter, params)
		if err != nil {
			return data.ShowDTO{}, err
		}
		if len(page.Items) > 0 {
			return page.Items[0], nil
		}
		if len(page.NextToken) == 0 {
			return data.ShowDTO{}, exceptions.NotFound("show", tmdbId)
		}
		params.NextToken = page.NextToken
	}
}

func (ss *ShowDynamoDBService) ListShows(ctx context.Context, params data.QueryParams) (data.QueryResults[data.ShowDTO], error) {
	return ss.table.Query(ctx, services.Query{
		IndexName:    services.TypeIndex,
		Scope:        "show-catalog",
		KeyCondition: expression.Key(services.TypeIndexAttr).Equal(expression.Value(string(keys.KindShow))),
	}, params)
}

func (ss *ShowDynamoDBService) UpdateShow(ctx context.Context, showId string, input data.ShowInputDTO) (data.ShowDTO, error) {
	if input.Status != nil && !validStatus(*input.Status) {
		return data.ShowDTO{}, exceptions.InvalidInput("Show status must be ongoing, ended, or cancelled.")
	}
	addr, err := showAddress(showId)
	if err != nil {
		return data.ShowDTO{}, err
	}
	return ss.table.Update(ctx, addr, input)
}

func (ss *ShowDynamoDBService) DeleteShow(ctx context.Context, showId string) error {
	addr, err := showAddress(showId)
	if err != nil {
		return err
	}
	return ss.table.Delete(ctx, addr)
}
