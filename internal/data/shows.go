package data

import "context"

type ShowStatus string

const (
	ShowOngoing   ShowStatus = "ongoing"
	ShowEnded     ShowStatus = "ended"
	ShowCancelled ShowStatus = "cancelled"
)

// ShowDTO stores EndYear as a nullable attribute: nil means the show is still
// running and is written as an explicit NULL, never skipped.
type ShowDTO struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"entityType"`

	ShowId           string     `dynamodbav:"showId"`
	Title            string     `dynamodbav:"title"`
	StartYear        *int       `dynamodbav:"startYear"`
	EndYear          *int       `dynamodbav:"endYear"`
	Genres           []string   `dynamodbav:"genres"`
	Creators         []string   `dynamodbav:"creators"`
	Cast             []string   `dynamodbav:"cast"`
	Synopsis         *string    `dynamodbav:"synopsis"`
	PosterUrl        *string    `dynamodbav:"posterUrl"`
	NumberOfSeasons  *int       `dynamodbav:"numberOfSeasons"`
	NumberOfEpisodes *int       `dynamodbav:"numberOfEpisodes"`
	Status           ShowStatus `dynamodbav:"status"`
	Rating           *float64   `dynamodbav:"rating"`
	TmdbId           *string    `dynamodbav:"tmdbId"`
	ImdbId           *string    `dynamodbav:"imdbId"`

	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// ShowInputDTO distinguishes "absent" from "explicit null" for EndYear with a
// double pointer: a nil outer pointer leaves the attribute untouched, a
// non-nil outer pointer wrapping nil writes an explicit null.
type ShowInputDTO struct {
	Title            *string
	StartYear        *int
	EndYear          **int
	Genres           *[]string
	Creators         *[]string
	Cast             *[]string
	Synopsis         *string
	PosterUrl        *string
	NumberOfSeasons  *int
	NumberOfEpisodes *int
	Status           *ShowStatus
	Rating           *float64
	TmdbId           *string
	ImdbId           *string
}

type ShowDataService interface {
	CreateShow(ctx context.Context, input ShowInputDTO) (ShowDTO, error)
	GetShowById(ctx context.Context, showId string) (ShowDTO, error)
	GetShowByTmdbId(ctx context.Context, tmdbId string) (ShowDTO, error)
	ListShows(ctx context.Context, params QueryParams) (QueryResults[ShowDTO], error)
	UpdateShow(ctx context.Context, showId string, input ShowInputDTO) (ShowDTO, error)
	DeleteShow(ctx context.Context, showId string) error
}
