package tmdb

type resultPayload struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

type searchResponse struct {
	Page         int             `json:"page"`
	Results      []resultPayload `json:"results"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
}

type companySearchResponse struct {
	Results []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}

type collectionResponse struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Parts []resultPayload `json:"parts"`
}

type imagesResponse struct {
	Posters   []imagePayload `json:"posters"`
	Backdrops []imagePayload `json:"backdrops"`
}

type imagePayload struct {
	FilePath string `json:"file_path"`
}
