package items

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/keys"
	"worthwatch.me/watchlists/internal/dynamodb/services"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/exceptions"
)

type WatchlistItemDynamoDBService struct {
	table      *services.TableDynamoDBService[data.WatchlistItemDTO, data.WatchlistItemInputDTO]
	watchlists *services.TableDynamoDBService[data.WatchlistDTO, data.WatchlistInputDTO]
}

func NewWatchlistItemService(tableName string, client services.DynamoDBApi, marshaler token.TokenMarshaler) data.WatchlistItemDataService {
	return &WatchlistItemDynamoDBService{
		table: &services.TableDynamoDBService[data.WatchlistItemDTO, data.WatchlistItemInputDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "WatchlistItem",
			Shim: func(pk, sk string) data.WatchlistItemDTO {
				return data.WatchlistItemDTO{PK: pk, SK: sk}
			},
			OnCreate: func(input data.WatchlistItemInputDTO, now, pk, sk string) data.WatchlistItemDTO {
				position := 0
				if input.Position != nil {
					position = *input.Position
				}
				return data.WatchlistItemDTO{
					PK:          pk,
					SK:          sk,
					EntityType:  string(keys.KindWatchlistItem),
					ContentType: *input.ContentType,
					ContentId:   *input.ContentId,
					Position:    position,
					CuratorNote: input.CuratorNote,
					AddedAt:     now,
					UpdatedAt:   now,
				}
			},
			OnUpdate: func(input data.WatchlistItemInputDTO, update expression.UpdateBuilder) {
				if input.Position != nil {
					update.Set(expression.Name("position"), expression.Value(input.Position))
				}
				if input.CuratorNote != nil {
					update.Set(expression.Name("curatorNote"), expression.Value(input.CuratorNote))
				}
			},
		},
		watchlists: &services.TableDynamoDBService[data.WatchlistDTO, data.WatchlistInputDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "Watchlist",
			Shim: func(pk, sk string) data.WatchlistDTO {
				return data.WatchlistDTO{PK: pk, SK: sk}
			},
		},
	}
}

func itemAddress(watchlistId string, contentType keys.ContentType, contentId string) (services.Address, error) {
	pk, err := keys.Encode(keys.KindWatchlist, watchlistId)
	if err != nil {
		return services.Address{}, err
	}
	sk, err := keys.ItemSK(contentType, contentId)
	if err != nil {
		return services.Address{}, err
	}
	return services.Address{Id: contentId, PK: pk, SK: sk}, nil
}

func watchlistAddress(watchlistId string) (services.Address, error) {
	pk, err := keys.Encode(keys.KindWatchlist, watchlistId)
	if err != nil {
		return services.Address{}, err
	}
	return services.Address{Id: watchlistId, PK: pk, SK: keys.MetadataSK}, nil
}

// AddItem creates the item row conditionally, then bumps the parent's
// itemCount. Adding content already on the list is AlreadyExists and leaves
// the counter untouched.
func (is *WatchlistItemDynamoDBService) AddItem(ctx context.Context, watchlistId string, input data.WatchlistItemInputDTO) (data.WatchlistItemDTO, error) {
	if input.ContentType == nil || input.ContentId == nil {
		return data.WatchlistItemDTO{}, exceptions.InvalidInput("A watchlist item requires contentType and contentId.")
	}
	addr, err := itemAddress(watchlistId, keys.ContentType(*input.ContentType), *input.ContentId)
	if err != nil {
		return data.WatchlistItemDTO{}, err
	}
	parent, err := watchlistAddress(watchlistId)
	if err != nil {
		return data.WatchlistItemDTO{}, err
	}
	item, err := is.table.Create(ctx, addr, input)
	if err != nil {
		return item, err
	}
	if err := is.watchlists.AddToCounter(ctx, parent, "itemCount", 1); err != nil {
		// The parent vanished between the writes. Roll the orphan row back.
		if removeErr := is.table.Delete(ctx, addr); removeErr != nil {
			return item, exceptions.PartialFailure("watchlist item add", []string{addr.SK}, removeErr)
		}
		return item, err
	}
	return item, nil
}

// RemoveItem deletes the row and decrements itemCount only when a row was
// actually there, keeping the counter in step under repeated removals.
func (is *WatchlistItemDynamoDBService) RemoveItem(ctx context.Context, watchlistId string, contentType string, contentId string) error {
	addr, err := itemAddress(watchlistId, keys.ContentType(contentType), contentId)
	if err != nil {
		return err
	}
	parent, err := watchlistAddress(watchlistId)
	if err != nil {
		return err
	}
	_, existed, err := is.table.DeleteReturning(ctx, addr)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	return is.watchlists.AddToCounter(ctx, parent, "itemCount", -1)
}

func (is *WatchlistItemDynamoDBService) ListItemsByWatchlist(ctx context.Context, watchlistId string, params data.QueryParams) (data.QueryResults[data.WatchlistItemDTO], error) {
	addr, err := watchlistAddress(watchlistId)
	if err != nil {
		return data.QueryResults[data.WatchlistItemDTO]{}, err
	}
	query := services.Query{
		Scope: "items:" + watchlistId,
		KeyCondition: expression.Key("PK").Equal(expression.Value(addr.PK)).
			And(expression.Key("SK").BeginsWith(keys.ItemSKPrefix)),
		ScanForward: true,
	}
	// SK order is lexicographic over content keys; curation order lives in
	// the position attribute, so every page is drained before sorting. A
	// per-page sort would interleave positions across page boundaries.
	var results data.QueryResults[data.WatchlistItemDTO]
	page := params
	for {
		batch, err := is.table.Query(ctx, query, page)
		if err != nil {
			return data.QueryResults[data.WatchlistItemDTO]{}, err
		}
		results.Items = append(results.Items, batch.Items...)
		if batch.NextToken == nil {
			break
		}
		page = data.QueryParams{Limit: params.Limit, NextToken: batch.NextToken}
	}
	sort.SliceStable(results.Items, func(i, j int) bool {
		return results.Items[i].Position < results.Items[j].Position
	})
	return results, nil
}

// ReorderItems rewrites the position of every referenced item. Each write is
// conditional on the row existing; a reference to content not on the list
// stops the sweep and reports the untouched remainder.
func (is *WatchlistItemDynamoDBService) ReorderItems(ctx context.Context, watchlistId string, ordering []data.ItemRef) error {
	for index, ref := range ordering {
		addr, err := itemAddress(watchlistId, keys.ContentType(ref.ContentType), ref.ContentId)
		if err != nil {
			return err
		}
		position := index
		input := data.WatchlistItemInputDTO{Position: &position}
		if _, err := is.table.Update(ctx, addr, input); err != nil {
			remaining := make([]string, 0, len(ordering)-index)
			for _, left := range ordering[index:] {
				remaining = append(remaining, left.ContentType+keys.Separator+left.ContentId)
			}
			return exceptions.PartialFailure("watchlist item reorder", remaining, err)
		}
	}
	return nil
}
