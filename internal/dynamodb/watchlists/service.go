package watchlists

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/google/uuid"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/keys"
	"worthwatch.me/watchlists/internal/dynamodb/services"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/exceptions"
)

type WatchlistDynamoDBService struct {
	table *services.TableDynamoDBService[data.WatchlistDTO, data.WatchlistInputDTO]
	items *services.TableDynamoDBService[data.WatchlistItemDTO, data.WatchlistItemInputDTO]
}

func NewWatchlistService(tableName string, client services.DynamoDBApi, marshaler token.TokenMarshaler) data.WatchlistDataService {
	return &WatchlistDynamoDBService{
		table: &services.TableDynamoDBService[data.WatchlistDTO, data.WatchlistInputDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "Watchlist",
			Shim: func(pk, sk string) data.WatchlistDTO {
				return data.WatchlistDTO{PK: pk, SK: sk}
			},
			OnCreate: func(input data.WatchlistInputDTO, now, pk, sk string) data.WatchlistDTO {
				// Visibility defaults to public; the string shadow feeds GS3.
				isPublic := true
				if input.IsPublic != nil {
					isPublic = *input.IsPublic
				}
				var tags []string
				if input.Tags != nil {
					tags = *input.Tags
				}
				return data.WatchlistDTO{
					PK:            pk,
					SK:            sk,
					EntityType:    string(keys.KindWatchlist),
					CuratorIndex:  *input.CuratorId,
					IsPublicStr:   strconv.FormatBool(isPublic),
					WatchlistId:   mustDecodeId(pk),
					CuratorId:     *input.CuratorId,
					Title:         *input.Title,
					Description:   input.Description,
					CoverImageUrl: input.CoverImageUrl,
					IsPublic:      isPublic,
					Tags:          tags,
					ItemCount:     0,
					LikeCount:     0,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
			},
			OnUpdate: func(input data.WatchlistInputDTO, update expression.UpdateBuilder) {
				if input.Title != nil {
					update.Set(expression.Name("title"), expression.Value(input.Title))
				}
				if input.Description != nil {
					update.Set(expression.Name("description"), expression.Value(input.Description))
				}
				if input.CoverImageUrl != nil {
					update.Set(expression.Name("coverImageUrl"), expression.Value(input.CoverImageUrl))
				}
				if input.IsPublic != nil {
					update.Set(expression.Name("isPublic"), expression.Value(input.IsPublic))
					update.Set(expression.Name(services.VisibilityIndexAttr), expression.Value(strconv.FormatBool(*input.IsPublic)))
				}
				if input.Tags != nil {
					update.Set(expression.Name("tags"), expression.Value(input.Tags))
				}
			},
		},
		items: &services.TableDynamoDBService[data.WatchlistItemDTO, data.WatchlistItemInputDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "WatchlistItem",
			Shim: func(pk, sk string) data.WatchlistItemDTO {
				return data.WatchlistItemDTO{PK: pk, SK: sk}
			},
		},
	}
}

func mustDecodeId(pk string) string {
	_, id, err := keys.Decode(pk)
	if err != nil {
		return pk
	}
	return id
}

func metadataAddress(watchlistId string) (services.Address, error) {
	pk, err := keys.Encode(keys.KindWatchlist, watchlistId)
	if err != nil {
		return services.Address{}, err
	}
	return services.Address{Id: watchlistId, PK: pk, SK: keys.MetadataSK}, nil
}

func (ws *WatchlistDynamoDBService) CreateWatchlist(ctx context.Context, input data.WatchlistInputDTO) (data.WatchlistDTO, error) {
	if input.CuratorId == nil || input.Title == nil {
		return data.WatchlistDTO{}, exceptions.InvalidInput("A watchlist requires curatorId and title.")
	}
	addr, err := metadataAddress(uuid.NewString())
	if err != nil {
		return data.WatchlistDTO{}, err
	}
	return ws.table.Create(ctx, addr, input)
}

func (ws *WatchlistDynamoDBService) GetWatchlistById(ctx context.Context, watchlistId string) (data.WatchlistDTO, error) {
	addr, err := metadataAddress(watchlistId)
	if err != nil {
		return data.WatchlistDTO{}, err
	}
	return ws.table.Get(ctx, addr)
}

func (ws *WatchlistDynamoDBService) ListWatchlistsByCurator(ctx context.Context, curatorId string, params data.QueryParams) (data.QueryResults[data.WatchlistDTO], error) {
	// The owner index partition is shared with likes, hence the entityType
	// refinement after the key condition.
	filter := expression.Name("entityType").Equal(expression.Value(string(keys.KindWatchlist)))
	return ws.table.Query(ctx, services.Query{
		IndexName:    services.OwnerIndex,
		Scope:        "curator:" + curatorId,
		KeyCondition: expression.Key(services.OwnerIndexAttr).Equal(expression.Value(curatorId)),
		Filter:       &filter,
	}, params)
}

func (ws *WatchlistDynamoDBService) ListPublicWatchlists(ctx context.Context, params data.QueryParams) (data.QueryResults[data.WatchlistDTO], error) {
	return ws.table.Query(ctx, services.Query{
		IndexName:    services.VisibilityIndex,
		Scope:        "public-feed",
		KeyCondition: expression.Key(services.VisibilityIndexAttr).Equal(expression.Value("true")),
	}, params)
}

func (ws *WatchlistDynamoDBService) UpdateWatchlist(ctx context.Context, watchlistId string, input data.WatchlistInputDTO) (data.WatchlistDTO, error) {
	addr, err := metadataAddress(watchlistId)
	if err != nil {
		return data.WatchlistDTO{}, err
	}
	return ws.table.Update(ctx, addr, input)
}

// DeleteWatchlist is a step sequence, not a transaction: enumerate child item
// rows, delete each, then drop the metadata row. A failure partway surfaces
// as PartialFailure listing the steps left; every step is an idempotent
// delete, so retrying the whole operation converges.
func (ws *WatchlistDynamoDBService) DeleteWatchlist(ctx context.Context, watchlistId string) error {
	addr, err := metadataAddress(watchlistId)
	if err != nil {
		return err
	}
	for {
		page, err := ws.items.Query(ctx, services.Query{
			Scope: "cascade:" + watchlistId,
			KeyCondition: expression.Key("PK").Equal(expression.Value(addr.PK)).
				And(expression.Key("SK").BeginsWith(keys.ItemSKPrefix)),
			ScanForward: true,
		}, data.QueryParams{})
		if err != nil {
			return err
		}
		if len(page.Items) == 0 {
			break
		}
		for index, item := range page.Items {
			itemAddr := services.Address{Id: item.ContentId, PK: item.PK, SK: item.SK}
			if err := ws.items.Delete(ctx, itemAddr); err != nil {
				remaining := make([]string, 0, len(page.Items)-index+1)
				for _, left := range page.Items[index:] {
					remaining = append(remaining, left.SK)
				}
				remaining = append(remaining, keys.MetadataSK)
				return exceptions.PartialFailure("watchlist cascading delete", remaining, err)
			}
		}
	}
	if err := ws.table.Delete(ctx, addr); err != nil {
		return exceptions.PartialFailure("watchlist cascading delete", []string{keys.MetadataSK}, err)
	}
	return nil
}
