package data

import "context"

// WatchlistDTO is the metadata row of a watchlist. CuratorIndex feeds the GS2
// owner listing; IsPublicStr duplicates the boolean into a string-typed GS3
// partition key because the index cannot hash a native boolean.
type WatchlistDTO struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"entityType"`
	CuratorIndex string `dynamodbav:"GS2-PK"`
	IsPublicStr  string `dynamodbav:"GS3-PK"`

	WatchlistId   string   `dynamodbav:"watchlistId"`
	CuratorId     string   `dynamodbav:"curatorId"`
	Title         string   `dynamodbav:"title"`
	Description   *string  `dynamodbav:"description"`
	CoverImageUrl *string  `dynamodbav:"coverImageUrl"`
	IsPublic      bool     `dynamodbav:"isPublic"`
	Tags          []string `dynamodbav:"tags"`
	ItemCount     int      `dynamodbav:"itemCount"`
	LikeCount     int      `dynamodbav:"likeCount"`

	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

type WatchlistInputDTO struct {
	CuratorId     *string
	Title         *string
	Description   *string
	CoverImageUrl *string
	IsPublic      *bool
	Tags          *[]string
}

type WatchlistDataService interface {
	CreateWatchlist(ctx context.Context, input WatchlistInputDTO) (WatchlistDTO, error)
	GetWatchlistById(ctx context.Context, watchlistId string) (WatchlistDTO, error)
	ListWatchlistsByCurator(ctx context.Context, curatorId string, params QueryParams) (QueryResults[WatchlistDTO], error)
	ListPublicWatchlists(ctx context.Context, params QueryParams) (QueryResults[WatchlistDTO], error)
	UpdateWatchlist(ctx context.Context, watchlistId string, input WatchlistInputDTO) (WatchlistDTO, error)
	// DeleteWatchlist removes every child item row before the metadata row.
	DeleteWatchlist(ctx context.Context, watchlistId string) error
}
