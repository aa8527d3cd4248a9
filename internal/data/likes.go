package data

import "context"

// LikeDTO's composite key is its identity: PK and SK both carry the
// user+watchlist pair, so a duplicate like lands on the same address. The
// GS2/GS3 shadows feed the per-user and per-watchlist listings.
type LikeDTO struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	EntityType     string `dynamodbav:"entityType"`
	UserIndex      string `dynamodbav:"GS2-PK"`
	WatchlistIndex string `dynamodbav:"GS3-PK"`

	UserId      string `dynamodbav:"userId"`
	WatchlistId string `dynamodbav:"watchlistId"`

	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

type LikeDataService interface {
	// Like is idempotent: liking twice is the same as liking once, and the
	// watchlist's likeCount only moves when a new like row is created.
	Like(ctx context.Context, userId string, watchlistId string) (LikeDTO, error)
	Unlike(ctx context.Context, userId string, watchlistId string) error
	HasLiked(ctx context.Context, userId string, watchlistId string) (bool, error)
	ListLikesByUser(ctx context.Context, userId string, params QueryParams) (QueryResults[LikeDTO], error)
	ListLikesByWatchlist(ctx context.Context, watchlistId string, params QueryParams) (QueryResults[LikeDTO], error)
	// PurgeWatchlistLikes drops every like row pointing at a watchlist whose
	// metadata row is already gone. No counter maintenance.
	PurgeWatchlistLikes(ctx context.Context, watchlistId string) (int, error)
	// PurgeUserLikes unlikes everything a departing user liked, keeping the
	// affected watchlists' likeCount in step.
	PurgeUserLikes(ctx context.Context, userId string) (int, error)
}
