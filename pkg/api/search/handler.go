package search

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kanekanefy/StockReport/pkg/core/resolver"
	"github.com/kanekanefy/StockReport/pkg/models"
)

type Request struct {
	Query    string `json:"query"`
	Exchange string `json:"exchange"`
}

type Response struct {
	Success bool                         `json:"success"`
	Data    []models.CompanySearchResult `json:"data"`
	Total   int                          `json:"total"`
	Query   string                       `json:"query"`
}

// Handler holds dependencies for company search endpoints
type Handler struct {
	Registry *resolver.Registry
}

// NewHandler creates a new search handler
func NewHandler(registry *resolver.Registry) *Handler {
	return &Handler{Registry: registry}
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req Request
	if r.Method == "GET" {
		req.Query = r.URL.Query().Get("q")
		req.Exchange = r.URL.Query().Get("exchange")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "Query is required", http.StatusBadRequest)
		return
	}

	var results []models.CompanySearchResult
	exchange := strings.ToLower(strings.TrimSpace(req.Exchange))
	if exchange == "" || exchange == "all" {
		results = h.Registry.SearchAll(r.Context(), req.Query)
	} else {
		market := models.Exchange(exchange)
		if !market.IsValid() {
			http.Error(w, fmt.Sprintf("Unsupported exchange: %s", req.Exchange), http.StatusBadRequest)
			return
		}
		res, err := h.Registry.Get(market)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		results = res.Search(r.Context(), req.Query)
	}

	fmt.Printf("[SEARCH] Query %q on %s returned %d results\n", req.Query, orAll(exchange), len(results))

	json.NewEncoder(w).Encode(Response{
		Success: true,
		Data:    results,
		Total:   len(results),
		Query:   req.Query,
	})
}

func orAll(exchange string) string {
	if exchange == "" {
		return "all"
	}
	return exchange
}
