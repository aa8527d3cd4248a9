// Package keys is the composite-key codec for the single watchlist table.
// Every row is addressed by a partition key carrying an entity-kind prefix
// and a sort key that is either a fixed discriminator or an encoded child
// identity. Encoding is deterministic and reversible.
package keys

import (
	"fmt"
	"regexp"
	"strings"

	"worthwatch.me/watchlists/internal/exceptions"
)

// Kind tags the logical entity a row represents. The same value is stored on
// the row as the entityType discriminator attribute.
type Kind string

const (
	KindUser          Kind = "USER"
	KindWatchlist     Kind = "WATCHLIST"
	KindMovie         Kind = "MOVIE"
	KindShow          Kind = "SHOW"
	KindWatchlistItem Kind = "WATCHLIST_ITEM"
	KindLike          Kind = "LIKE"
)

// ContentType discriminates what a watchlist item points at.
type ContentType string

const (
	ContentMovie ContentType = "MOVIE"
	ContentShow  ContentType = "SHOW"
)

const (
	Separator = "#"

	// Fixed sort keys for single-row entities.
	ProfileSK  = "PROFILE"
	MetadataSK = "METADATA"

	// ItemSKPrefix prefixes every child row of a watchlist so the whole
	// family can be range-queried with begins_with.
	ItemSKPrefix = "ITEM" + Separator
)

var pkKinds = map[Kind]bool{
	KindUser:      true,
	KindWatchlist: true,
	KindMovie:     true,
	KindShow:      true,
}

var (
	itemSKPattern = regexp.MustCompile(`^ITEM#(MOVIE|SHOW)#(.+)$`)
	likePattern   = regexp.MustCompile(`^USER#(.+)#LIKE#WATCHLIST#(.+)$`)
)

// Encode builds the partition key for a single-id entity, e.g.
// Encode(KindMovie, "m1") == "MOVIE#m1".
func Encode(kind Kind, id string) (string, error) {
	if !pkKinds[kind] {
		return "", exceptions.InvalidId(id, fmt.Sprintf("entity kind %s has no simple partition key", kind))
	}
	if id == "" {
		return "", exceptions.InvalidId(id, "identifier is empty")
	}
	if strings.Contains(id, Separator) {
		return "", exceptions.InvalidId(id, "identifier contains the key separator")
	}
	return string(kind) + Separator + id, nil
}

// Decode is the inverse of Encode.
func Decode(pk string) (Kind, string, error) {
	prefix, id, found := strings.Cut(pk, Separator)
	if !found || id == "" {
		return "", "", exceptions.MalformedKey(pk)
	}
	kind := Kind(prefix)
	if !pkKinds[kind] || strings.Contains(id, Separator) {
		return "", "", exceptions.MalformedKey(pk)
	}
	return kind, id, nil
}

// ItemSK encodes a watchlist child row's sort key, e.g. "ITEM#MOVIE#m1".
func ItemSK(contentType ContentType, contentId string) (string, error) {
	if contentType != ContentMovie && contentType != ContentShow {
		return "", exceptions.InvalidId(string(contentType), "content type must be MOVIE or SHOW")
	}
	if contentId == "" {
		return "", exceptions.InvalidId(contentId, "content identifier is empty")
	}
	if strings.Contains(contentId, Separator) {
		return "", exceptions.InvalidId(contentId, "content identifier contains the key separator")
	}
	return ItemSKPrefix + string(contentType) + Separator + contentId, nil
}

// ParseItemSK is the inverse of ItemSK. A non-matching sort key is a
// MalformedKey error, never a partial result.
func ParseItemSK(sk string) (ContentType, string, error) {
	match := itemSKPattern.FindStringSubmatch(sk)
	if match == nil {
		return "", "", exceptions.MalformedKey(sk)
	}
	return ContentType(match[1]), match[2], nil
}

// LikeKey builds the composite identity of a like. The key doubles as both
// partition and sort key: the user+watchlist pair is the identity, so a
// repeated like lands on the same address.
func LikeKey(userId string, watchlistId string) (string, error) {
	if userId == "" || strings.Contains(userId, Separator) {
		return "", exceptions.InvalidId(userId, "user identifier is empty or contains the key separator")
	}
	if watchlistId == "" || strings.Contains(watchlistId, Separator) {
		return "", exceptions.InvalidId(watchlistId, "watchlist identifier is empty or contains the key separator")
	}
	return "USER" + Separator + userId + Separator + "LIKE" + Separator + "WATCHLIST" + Separator + watchlistId, nil
}

// ParseLikeKey is the inverse of LikeKey.
func ParseLikeKey(key string) (string, string, error) {
	match := likePattern.FindStringSubmatch(key)
	if match == nil {
		return "", "", exceptions.MalformedKey(key)
	}
	if strings.Contains(match[1], Separator) || strings.Contains(match[2], Separator) {
		return "", "", exceptions.MalformedKey(key)
	}
	return match[1], match[2], nil
}
