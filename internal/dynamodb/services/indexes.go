package services

// The four secondary indexes of the single table. GS1 hashes the shadowed
// email attribute for the unique-user lookup. GS2 and GS3 are shared, sparse
// owner/visibility indexes: watchlists project their curator and public flag
// into them, likes project their user and watchlist. Shared partitions are
// disambiguated by an entityType filter after the key condition narrows the
// set. GS4 hashes the entityType discriminator for per-kind listings. All
// four indexes project full items so listings never need a follow-up get.
const (
	EmailIndex      = "GS1"
	OwnerIndex      = "GS2"
	VisibilityIndex = "GS3"
	TypeIndex       = "GS4"
)

// Physical attribute names backing the index hash keys. createdAt is the
// range key of GS2, GS3 and GS4, which is why reverse-chronological listings
// are plain descending queries.
const (
	EmailIndexAttr      = "GS1-PK"
	OwnerIndexAttr      = "GS2-PK"
	VisibilityIndexAttr = "GS3-PK"
	TypeIndexAttr       = "entityType"
)
