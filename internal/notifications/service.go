// Package notifications is the outbound fan-out contract for curator-facing
// events. Delivery is best effort; request handling never waits on or fails
// from a notification.
package notifications

import "context"

type WatchlistLikedEvent struct {
	WatchlistId string `json:"watchlistId"`
	Title       string `json:"title"`
	CuratorId   string `json:"curatorId"`
	LikedBy     string `json:"likedBy"`
	LikeCount   int    `json:"likeCount"`
}

type CuratorNotifier interface {
	WatchlistLiked(ctx context.Context, event WatchlistLikedEvent) error
}
