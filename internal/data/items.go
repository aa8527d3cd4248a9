package data

import "context"

// WatchlistItemDTO is a child row of a watchlist, co-located by sharing the
// parent partition key with an ITEM#-prefixed sort key.
type WatchlistItemDTO struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"entityType"`

	ContentType string  `dynamodbav:"contentType"`
	ContentId   string  `dynamodbav:"contentId"`
	Position    int     `dynamodbav:"position"`
	CuratorNote *string `dynamodbav:"curatorNote"`
	AddedAt     string  `dynamodbav:"addedAt"`
	UpdatedAt   string  `dynamodbav:"updatedAt"`
}

type WatchlistItemInputDTO struct {
	ContentType *string
	ContentId   *string
	Position    *int
	CuratorNote *string
}

// ItemRef addresses one item within a watchlist.
type ItemRef struct {
	ContentType string `json:"contentType"`
	ContentId   string `json:"contentId"`
}

type WatchlistItemDataService interface {
	// AddItem writes the item row and atomically increments the parent's
	// itemCount.
	AddItem(ctx context.Context, watchlistId string, input WatchlistItemInputDTO) (WatchlistItemDTO, error)
	// RemoveItem deletes the item row and decrements itemCount only when the
	// row actually existed, keeping the counter symmetric with AddItem.
	RemoveItem(ctx context.Context, watchlistId string, contentType string, contentId string) error
	ListItemsByWatchlist(ctx context.Context, watchlistId string, params QueryParams) (QueryResults[WatchlistItemDTO], error)
	// ReorderItems rewrites position for the given ordered refs. Not atomic
	// across items: a partial failure is retryable as a whole.
	ReorderItems(ctx context.Context, watchlistId string, ordered []ItemRef) error
}
