package likes

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/keys"
	"worthwatch.me/watchlists/internal/dynamodb/services"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/exceptions"
)

type likeInput struct {
	UserId      string
	WatchlistId string
}

type LikeDynamoDBService struct {
	table      *services.TableDynamoDBService[data.LikeDTO, likeInput]
	watchlists *services.TableDynamoDBService[data.WatchlistDTO, data.WatchlistInputDTO]
}

func NewLikeService(tableName string, client services.DynamoDBApi, marshaler token.TokenMarshaler) data.LikeDataService {
	return &LikeDynamoDBService{
		table: &services.TableDynamoDBService[data.LikeDTO, likeInput]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "Like",
			Shim: func(pk, sk string) data.LikeDTO {
				return data.LikeDTO{PK: pk, SK: sk}
			},
			OnCreate: func(input likeInput, now, pk, sk string) data.LikeDTO {
				return data.LikeDTO{
					PK:             pk,
					SK:             sk,
					EntityType:     string(keys.KindLike),
					UserIndex:      input.UserId,
					WatchlistIndex: input.WatchlistId,
					UserId:         input.UserId,
					WatchlistId:    input.WatchlistId,
					CreatedAt:      now,
					UpdatedAt:      now,
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

func likeAddress(userId string, watchlistId string) (services.Address, error) {
	key, err := keys.LikeKey(userId, watchlistId)
	if err != nil {
		return services.Address{}, err
	}
	return services.Address{Id: userId + keys.Separator + watchlistId, PK: key, SK: key}, nil
}

func watchlistAddress(watchlistId string) (services.Address, error) {
	pk, err := keys.Encode(keys.KindWatchlist, watchlistId)
	if err != nil {
		return services.Address{}, err
	}
	return services.Address{Id: watchlistId, PK: pk, SK: keys.MetadataSK}, nil
}

// Like creates the like row conditionally and bumps the watchlist's
// likeCount. A second like from the same user hits the occupied address and
// returns the existing row with no counter movement.
func (ls *LikeDynamoDBService) Like(ctx context.Context, userId string, watchlistId string) (data.LikeDTO, error) {
	addr, err := likeAddress(userId, watchlistId)
	if err != nil {
		return data.LikeDTO{}, err
	}
	parent, err := watchlistAddress(watchlistId)
	if err != nil {
		return data.LikeDTO{}, err
	}
	like, err := ls.table.Create(ctx, addr, likeInput{UserId: userId, WatchlistId: watchlistId})
	if err != nil {
		var conflict *exceptions.ConflictError
		if errors.As(err, &conflict) {
			return ls.table.Get(ctx, addr)
		}
		return like, err
	}
	if err := ls.watchlists.AddToCounter(ctx, parent, "likeCount", 1); err != nil {
		if removeErr := ls.table.Delete(ctx, addr); removeErr != nil {
			return like, exceptions.PartialFailure("watchlist like", []string{addr.PK}, removeErr)
		}
		return like, err
	}
	return like, nil
}

// Unlike deletes the like row and decrements likeCount only when a row was
// actually removed, so repeated unlikes never drive the counter negative.
func (ls *LikeDynamoDBService) Unlike(ctx context.Context, userId string, watchlistId string) error {
	addr, err := likeAddress(userId, watchlistId)
	if err != nil {
		return err
	}
	parent, err := watchlistAddress(watchlistId)
	if err != nil {
		return err
	}
	_, existed, err := ls.table.DeleteReturning(ctx, addr)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	return ls.watchlists.AddToCounter(ctx, parent, "likeCount", -1)
}

func (ls *LikeDynamoDBService) HasLiked(ctx context.Context, userId string, watchlistId string) (bool, error) {
	addr, err := likeAddress(userId, watchlistId)
	if err != nil {
		return false, err
	}
	_, err = ls.table.Get(ctx, addr)
	if err != nil {
		var notFound *exceptions.NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (ls *LikeDynamoDBService) ListLikesByUser(ctx context.Context, userId string, params data.QueryParams) (data.QueryResults[data.LikeDTO], error) {
	// The owner index partition is shared with watchlists, hence the
	// entityType refinement.
	filter := expression.Name("entityType").Equal(expression.Value(string(keys.KindLike)))
	return ls.table.Query(ctx, services.Query{
		IndexName:    services.OwnerIndex,
		Scope:        "likes-by-user:" + userId,
		KeyCondition: expression.Key(services.OwnerIndexAttr).Equal(expression.Value(userId)),
		Filter:       &filter,
	}, params)
}

func (ls *LikeDynamoDBService) PurgeWatchlistLikes(ctx context.Context, watchlistId string) (int, error) {
	purged := 0
	for {
		page, err := ls.ListLikesByWatchlist(ctx, watchlistId, data.QueryParams{})
		if err != nil {
			return purged, err
		}
		if len(page.Items) == 0 {
			return purged, nil
		}
		for _, like := range page.Items {
			addr := services.Address{Id: like.UserId + keys.Separator + like.WatchlistId, PK: like.PK, SK: like.SK}
			if err := ls.table.Delete(ctx, addr); err != nil {
				return purged, err
			}
			purged++
		}
	}
}

func (ls *LikeDynamoDBService) PurgeUserLikes(ctx context.Context, userId string) (int, error) {
	purged := 0
	for {
		page, err := ls.ListLikesByUser(ctx, userId, data.QueryParams{})
		if err != nil {
			return purged, err
		}
		if len(page.Items) == 0 {
			return purged, nil
		}
		for _, like := range page.Items {
			err := ls.Unlike(ctx, like.UserId, like.WatchlistId)
			if err != nil {
				// The liked watchlist is already gone; drop the row anyway.
				var notFound *exceptions.NotFoundError
				if !errors.As(err, &notFound) {
					return purged, err
				}
				addr := services.Address{Id: like.UserId + keys.Separator + like.WatchlistId, PK: like.PK, SK: like.SK}
				if err := ls.table.Delete(ctx, addr); err != nil {
					return purged, err
				}
			}
			purged++
		}
	}
}

func (ls *LikeDynamoDBService) ListLikesByWatchlist(ctx context.Context, watchlistId string, params data.QueryParams) (data.QueryResults[data.LikeDTO], error) {
	filter := expression.Name("entityType").Equal(expression.Value(string(keys.KindLike)))
	return ls.table.Query(ctx, services.Query{
		IndexName:    services.VisibilityIndex,
		Scope:        "likes-by-watchlist:" + watchlistId,
		KeyCondition: expression.Key(services.VisibilityIndexAttr).Equal(expression.Value(watchlistId)),
		Filter:       &filter,
	}, params)
}
