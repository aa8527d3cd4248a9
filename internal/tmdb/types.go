package tmdb

type genre struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type creator struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type movieDetail struct {
	Id          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	Genres      []genre `json:"genres"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
	ImdbId      string  `json:"imdb_id"`
}

type movieSearchResult struct {
	Id          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
}

type movieSearchResponse struct {
	Page    int                 `json:"page"`
	Results []movieSearchResult `json:"results"`
}

type showDetail struct {
	Id               int       `json:"id"`
	Name             string    `json:"name"`
	Overview         string    `json:"overview"`
	FirstAirDate     string    `json:"first_air_date"`
	LastAirDate      string    `json:"last_air_date"`
	InProduction     bool      `json:"in_production"`
	Status           string    `json:"status"`
	Genres           []genre   `json:"genres"`
	CreatedBy        []creator `json:"created_by"`
	NumberOfSeasons  int       `json:"number_of_seasons"`
	NumberOfEpisodes int       `json:"number_of_episodes"`
	VoteAverage      float64   `json:"vote_average"`
	PosterPath       string    `json:"poster_path"`
}

type showSearchResult struct {
	Id           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	PosterPath   string  `json:"poster_path"`
}

type showSearchResponse struct {
	Page    int                `json:"page"`
	Results []showSearchResult `json:"results"`
}
