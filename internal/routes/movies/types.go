package movies

import "worthwatch.me/watchlists/internal/data"

type MovieInput struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=512"`
	ReleaseYear *int      `json:"releaseYear" validate:"omitempty,gte=1878"`
	Genres      *[]string `json:"genres" validate:"omitempty,dive,min=1"`
	Directors   *[]string `json:"directors" validate:"omitempty,dive,min=1"`
	Cast        *[]string `json:"cast" validate:"omitempty,dive,min=1"`
	Synopsis    *string   `json:"synopsis" validate:"omitempty,max=8192"`
	PosterUrl   *string   `json:"posterUrl" validate:"omitempty,url"`
	Runtime     *int      `json:"runtime" validate:"omitempty,gt=0"`
	Rating      *float64  `json:"rating" validate:"omitempty,gte=0,lte=10"`
	TmdbId      *string   `json:"tmdbId" validate:"omitempty,min=1"`
	ImdbId      *string   `json:"imdbId" validate:"omitempty,min=1"`
}

func (m *MovieInput) ToData() data.MovieInputDTO {
	return data.MovieInputDTO{
		Title:       m.Title,
		ReleaseYear: m.ReleaseYear,
		Genres:      m.Genres,
		Directors:   m.Directors,
		Cast:        m.Cast,
		Synopsis:    m.Synopsis,
		PosterUrl:   m.PosterUrl,
		Runtime:     m.Runtime,
		Rating:      m.Rating,
		TmdbId:      m.TmdbId,
		ImdbId:      m.ImdbId,
	}
}

type Movie struct {
	Id          string   `json:"movieId"`
	Title       string   `json:"title"`
	ReleaseYear *int     `json:"releaseYear"`
	Genres      []string `json:"genres"`
	Directors   []string `json:"directors"`
	Cast        []string `json:"cast"`
	Synopsis    *string  `json:"synopsis"`
	PosterUrl   *string  `json:"posterUrl"`
	Runtime     *int     `json:"runtime"`
	Rating      *float64 `json:"rating"`
	TmdbId      *string  `json:"tmdbId"`
	ImdbId      *string  `json:"imdbId"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func NewMovie(dto data.MovieDTO) Movie {
	return Movie{
		Id:          dto.MovieId,
		Title:       dto.Title,
		ReleaseYear: dto.ReleaseYear,
		Genres:      dto.Genres,
		Directors:   dto.Directors,
		Cast:        dto.Cast,
		Synopsis:    dto.Synopsis,
		PosterUrl:   dto.PosterUrl,
		Runtime:     dto.Runtime,
		Rating:      dto.Rating,
		TmdbId:      dto.TmdbId,
		ImdbId:      dto.ImdbId,
		CreatedAt:   dto.CreatedAt,
		UpdatedAt:   dto.UpdatedAt,
	}
}
