package dto

import "github.com/skillbridge-app/skillbridge-api/internal/models"

// SearchResponse is the aggregated result payload for a search request.
type SearchResponse struct {
	Query   string               `json:"query"`
	Tab     models.SearchTab     `json:"tab"`
	Entries []models.SearchEntry `json:"entries"`
}

// SuggestionResponse carries autocomplete strings for the dropdown.
type SuggestionResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}
