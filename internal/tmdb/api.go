// Package tmdb talks to The Movie Database API v3 as a catalog source for
// movies and shows.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/exceptions"
	"worthwatch.me/watchlists/internal/provider"
	"worthwatch.me/watchlists/internal/routes/movies"
	"worthwatch.me/watchlists/internal/routes/shows"
)

const (
	DefaultBaseUrl = "https://api.themoviedb.org/3"
	posterBaseUrl  = "https://image.tmdb.org/t/p/w500"
)

type CatalogAPI struct {
	BaseUrl string
	Token   string
	Client  *http.Client
}

func NewCatalogAPI(token string) *CatalogAPI {
	return &CatalogAPI{
		BaseUrl: DefaultBaseUrl,
		Token:   token,
		Client:  &http.Client{},
	}
}

func (ca *CatalogAPI) request(ctx context.Context, resource string, params map[string]string, out interface{}) error {
	query := url.Values{}
	for name, value := range params {
		query.Set(name, value)
	}
	endpoint := ca.BaseUrl + resource
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+ca.Token)
	req.Header.Set("Accept", "application/json")
	resp, err := ca.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return exceptions.NotFound("catalog entry", resource)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned %d for %s", resp.StatusCode, resource)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func yearOf(date string) *int {
	prefix, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(prefix)
	if err != nil {
		return nil
	}
	return &year
}

func posterUrl(path string) *string {
	if path == "" {
		return nil
	}
	full := posterBaseUrl + path
	return &full
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func genreNames(genres []genre) []string {
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	return names
}

func (ca *CatalogAPI) SearchMovies(ctx context.Context, text string) (data.QueryResults[movies.Movie], error) {
	var response movieSearchResponse
	err := ca.request(ctx, "/search/movie", map[string]string{"query": text}, &response)
	if err != nil {
		return data.QueryResults[movies.Movie]{}, err
	}
	results := make([]movies.Movie, len(response.Results))
	for i, result := range response.Results {
		tmdbId := strconv.Itoa(result.Id)
		results[i] = movies.Movie{
			Title:       result.Title,
			ReleaseYear: yearOf(result.ReleaseDate),
			Synopsis:    optional(result.Overview),
			PosterUrl:   posterUrl(result.PosterPath),
			Rating:      &result.VoteAverage,
			TmdbId:      &tmdbId,
		}
	}
	return data.QueryResults[movies.Movie]{Items: results}, nil
}

func (ca *CatalogAPI) LookupMovie(ctx context.Context, id string) (movies.Movie, error) {
	var detail movieDetail
	err := ca.request(ctx, "/movie/"+url.PathEscape(id), nil, &detail)
	if err != nil {
		return movies.Movie{}, err
	}
	tmdbId := strconv.Itoa(detail.Id)
	movie := movies.Movie{
		Title:       detail.Title,
		ReleaseYear: yearOf(detail.ReleaseDate),
		Genres:      genreNames(detail.Genres),
		Synopsis:    optional(detail.Overview),
		PosterUrl:   posterUrl(detail.PosterPath),
		Rating:      &detail.VoteAverage,
		TmdbId:      &tmdbId,
		ImdbId:      optional(detail.ImdbId),
	}
	if detail.Runtime > 0 {
		movie.Runtime = &detail.Runtime
	}
	return movie, nil
}

func (ca *CatalogAPI) SearchShows(ctx context.Context, text string) (data.QueryResults[shows.Show], error) {
	var response showSearchResponse
	err := ca.request(ctx, "/search/tv", map[string]string{"query": text}, &response)
	if err != nil {
		return data.QueryResults[shows.Show]{}, err
	}
	results := make([]shows.Show, len(response.Results))
	for i, result := range response.Results {
		tmdbId := strconv.Itoa(result.Id)
		results[i] = shows.Show{
			Title:     result.Name,
			StartYear: yearOf(result.FirstAirDate),
			Synopsis:  optional(result.Overview),
			PosterUrl: posterUrl(result.PosterPath),
			Rating:    &result.VoteAverage,
			TmdbId:    &tmdbId,
		}
	}
	return data.QueryResults[shows.Show]{Items: results}, nil
}

func (ca *CatalogAPI) LookupShow(ctx context.Context, id string) (shows.Show, error) {
	var detail showDetail
	err := ca.request(ctx, "/tv/"+url.PathEscape(id), nil, &detail)
	if err != nil {
		return shows.Show{}, err
	}
	tmdbId := strconv.Itoa(detail.Id)
	creators := make([]string, len(detail.CreatedBy))
	for i, c := range detail.CreatedBy {
		creators[i] = c.Name
	}
	show := shows.Show{
		Title:     detail.Name,
		StartYear: yearOf(detail.FirstAirDate),
		Genres:    genreNames(detail.Genres),
		Creators:  creators,
		Synopsis:  optional(detail.Overview),
		PosterUrl: posterUrl(detail.PosterPath),
		Rating:    &detail.VoteAverage,
		TmdbId:    &tmdbId,
		Status:    showStatus(detail),
	}
	if detail.NumberOfSeasons > 0 {
		show.NumberOfSeasons = &detail.NumberOfSeasons
	}
	if detail.NumberOfEpisodes > 0 {
		show.NumberOfEpisodes = &detail.NumberOfEpisodes
	}
	if !detail.InProduction {
		show.EndYear = yearOf(detail.LastAirDate)
	}
	return show, nil
}

func showStatus(detail showDetail) data.ShowStatus {
	if detail.Status == "Canceled" {
		return data.ShowCancelled
	}
	if detail.InProduction {
		return data.ShowOngoing
	}
	return data.ShowEnded
}

var _ provider.ContentProvider = (*CatalogAPI)(nil)
