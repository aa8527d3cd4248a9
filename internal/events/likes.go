package events

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/keys"
)

func removedRowKeys(record events.DynamoDBEventRecord) (string, string, bool) {
	if record.EventName != "REMOVE" {
		return "", "", false
	}
	pk, okPK := record.Change.Keys["PK"]
	sk, okSK := record.Change.Keys["SK"]
	if !okPK || !okSK {
		return "", "", false
	}
	return pk.String(), sk.String(), true
}

// WatchlistRemovedHandler purges the like rows left behind when a watchlist
// metadata row is removed. Item rows are deleted in-line by the cascading
// delete; likes live outside the watchlist partition, so the stream sweeps
// them up instead.
type WatchlistRemovedHandler struct {
	Logger zerolog.Logger
	Likes  data.LikeDataService
}

func (wh *WatchlistRemovedHandler) Filter(record events.DynamoDBEventRecord) bool {
	pk, sk, removed := removedRowKeys(record)
	if !removed || sk != keys.MetadataSK {
		return false
	}
	kind, _, err := keys.Decode(pk)
	return err == nil && kind == keys.KindWatchlist
}

func (wh *WatchlistRemovedHandler) Apply(record events.DynamoDBEventRecord) error {
	pk, _, _ := removedRowKeys(record)
	_, watchlistId, err := keys.Decode(pk)
	if err != nil {
		return err
	}
	purged, err := wh.Likes.PurgeWatchlistLikes(context.Background(), watchlistId)
	if err != nil {
		return err
	}
	wh.Logger.Info().
		Str("watchlistId", watchlistId).
		Int("purged", purged).
		Msg("purged likes of removed watchlist")
	return nil
}

// UserRemovedHandler unlikes everything a removed user had liked so the
// affected watchlists' like counts do not drift.
type UserRemovedHandler struct {
	Logger zerolog.Logger
	Likes  data.LikeDataService
}

func (uh *UserRemovedHandler) Filter(record events.DynamoDBEventRecord) bool {
	pk, sk, removed := removedRowKeys(record)
	if !removed || sk != keys.ProfileSK {
		return false
	}
	// A like key also starts with USER#; the PROFILE sort key plus a clean
	// decode pins this to the profile row.
	if strings.Count(pk, keys.Separator) != 1 {
		return false
	}
	kind, _, err := keys.Decode(pk)
	return err == nil && kind == keys.KindUser
}

func (uh *UserRemovedHandler) Apply(record events.DynamoDBEventRecord) error {
	pk, _, _ := removedRowKeys(record)
	_, userId, err := keys.Decode(pk)
	if err != nil {
		return err
	}
	purged, err := uh.Likes.PurgeUserLikes(context.Background(), userId)
	if err != nil {
		return err
	}
	uh.Logger.Info().
		Str("userId", userId).
		Int("purged", purged).
		Msg("purged likes of removed user")
	return nil
}
