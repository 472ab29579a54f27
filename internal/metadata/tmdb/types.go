package tmdb

// MaxPages is the highest page TMDb serves for any search.
const MaxPages = 500

// Movie represents a movie from TMDb search results.
// Fields are decoded verbatim; no local validation is applied.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	GenreIDs         []int   `json:"genre_ids"`
}

// Year returns the four-digit release year, or "" when unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// MovieDetails represents detailed movie information.
type MovieDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Runtime     int     `json:"runtime"`
	Status      string  `json:"status"`
	Tagline     string  `json:"tagline"`
	IMDbID      string  `json:"imdb_id"`
	Homepage    string  `json:"homepage"`
	Genres      []Genre `json:"genres"`
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SearchPage is one page of TMDb search results plus pagination metadata.
type SearchPage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// EmptyPage is the page reported when no search is active.
func EmptyPage() *SearchPage {
	return &SearchPage{Page: 1, Results: []Movie{}}
}

// NavigablePages returns TotalPages capped at MaxPages.
func (p *SearchPage) NavigablePages() int {
	if p == nil {
		return 0
	}
	return min(p.TotalPages, MaxPages)
}

// apiError is the TMDb error envelope.
type apiError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
