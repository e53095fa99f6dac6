package pagination

import "rssreader/internal/models"

type Pagination struct {
	TotalResults int                   `json:"total_results"`
	TotalPages   int                   `json:"total_pages"`
	CurrentPage  int                   `json:"current_page"`
	PerPage      int                   `json:"per_page"`
	Results      []models.FetchOutcome `json:"results"`
}

const FETCHES_PER_PAGE = 20

// New приводит номер страницы к допустимому диапазону [1, TotalPages].
func New(totalResults int, currentPage int) *Pagination {
	totalPages := PageCounter(totalResults)
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}
	return &Pagination{
		TotalResults: totalResults,
		TotalPages:   totalPages,
		CurrentPage:  currentPage,
		PerPage:      FETCHES_PER_PAGE,
		Results:      []models.FetchOutcome{},
	}
}

func (p *Pagination) Offset() int {
	return (p.CurrentPage - 1) * p.PerPage
}

func PageCounter(totalResults int) int {
	totalPages := totalResults / FETCHES_PER_PAGE
	if totalPages*FETCHES_PER_PAGE < totalResults {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}
	return totalPages
}
