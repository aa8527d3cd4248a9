package shows

import (
	"bytes"
	"encoding/json"

	"worthwatch.me/watchlists/internal/data"
)

// OptionalInt distinguishes a field that was absent from one set to null. An
// explicit null on endYear clears the stored value; absence leaves it alone.
type OptionalInt struct {
	Defined bool
	Value   *int
}

func (o *OptionalInt) UnmarshalJSON(raw []byte) error {
	o.Defined = true
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(raw, &o.Value)
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

type ShowInput struct {
	Title            *string          `json:"title" validate:"omitempty,min=1,max=512"`
	StartYear        *int             `json:"startYear" validate:"omitempty,gte=1928"`
	EndYear          OptionalInt      `json:"endYear"`
	Genres           *[]string        `json:"genres" validate:"omitempty,dive,min=1"`
	Creators         *[]string        `json:"creators" validate:"omitempty,dive,min=1"`
	Cast             *[]string        `json:"cast" validate:"omitempty,dive,min=1"`
	Synopsis         *string          `json:"synopsis" validate:"omitempty,max=8192"`
	PosterUrl        *string          `json:"posterUrl" validate:"omitempty,url"`
	NumberOfSeasons  *int             `json:"numberOfSeasons" validate:"omitempty,gt=0"`
	NumberOfEpisodes *int             `json:"numberOfEpisodes" validate:"omitempty,gt=0"`
	Status           *data.ShowStatus `json:"status" validate:"omitempty,oneof=ongoing ended cancelled"`
	Rating           *float64         `json:"rating" validate:"omitempty,gte=0,lte=10"`
	TmdbId           *string          `json:"tmdbId" validate:"omitempty,min=1"`
	ImdbId           *string          `json:"imdbId" validate:"omitempty,min=1"`
}

func (s *ShowInput) ToData() data.ShowInputDTO {
	dto := data.ShowInputDTO{
		Title:            s.Title,
		StartYear:        s.StartYear,
		Genres:           s.Genres,
		Creators:         s.Creators,
		Cast:             s.Cast,
		Synopsis:         s.Synopsis,
		PosterUrl:        s.PosterUrl,
		NumberOfSeasons:  s.NumberOfSeasons,
		NumberOfEpisodes: s.NumberOfEpisodes,
		Status:           s.Status,
		Rating:           s.Rating,
		TmdbId:           s.TmdbId,
		ImdbId:           s.ImdbId,
	}
	if s.EndYear.Defined {
		dto.EndYear = &s.EndYear.Value
	}
	return dto
}

type Show struct {
	Id               string          `json:"showId"`
	Title            string          `json:"title"`
	StartYear        *int            `json:"startYear"`
	EndYear          *int            `json:"endYear"`
	Genres           []string        `json:"genres"`
	Creators         []string        `json:"creators"`
	Cast             []string        `json:"cast"`
	Synopsis         *string         `json:"synopsis"`
	PosterUrl        *string         `json:"posterUrl"`
	NumberOfSeasons  *int            `json:"numberOfSeasons"`
	NumberOfEpisodes *int            `json:"numberOfEpisodes"`
	Status           data.ShowStatus `json:"status"`
	Rating           *float64        `json:"rating"`
	TmdbId           *string         `json:"tmdbId"`
	ImdbId           *string         `json:"imdbId"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

func NewShow(dto data.ShowDTO) Show {
	return Show{
		Id:               dto.ShowId,
		Title:            dto.Title,
		StartYear:        dto.StartYear,
		EndYear:          dto.EndYear,
		Genres:           dto.Genres,
		Creators:         dto.Creators,
		Cast:             dto.Cast,
		Synopsis:         dto.Synopsis,
		PosterUrl:        dto.PosterUrl,
		NumberOfSeasons:  dto.NumberOfSeasons,
		NumberOfEpisodes: dto.NumberOfEpisodes,
		Status:           dto.Status,
		Rating:           dto.Rating,
		TmdbId:           dto.TmdbId,
		ImdbId:           dto.ImdbId,
		CreatedAt:        dto.CreatedAt,
		UpdatedAt:        dto.UpdatedAt,
	}
}
