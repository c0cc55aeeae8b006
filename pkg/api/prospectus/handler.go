package prospectus

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kanekanefy/StockReport/pkg/core/resolver"
	"github.com/kanekanefy/StockReport/pkg/models"
)

type Request struct {
	Ticker   string `json:"ticker"`
	Exchange string `json:"exchange"`
}

type Response struct {
	Success  bool                    `json:"success"`
	Data     []models.ProspectusInfo `json:"data"`
	Total    int                     `json:"total"`
	Ticker   string                  `json:"ticker"`
	Exchange string                  `json:"exchange"`
}

// Handler holds dependencies for prospectus listing endpoints
type Handler struct {
	Registry *resolver.Registry
}

// NewHandler creates a new prospectus handler
func NewHandler(registry *resolver.Registry) *Handler {
	return &Handler{Registry: registry}
}

func (h *Handler) HandleProspectuses(w http.ResponseWriter, r *http.Request) {
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
		req.Ticker = r.URL.Query().Get("ticker")
		req.Exchange = r.URL.Query().Get("exchange")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if strings.TrimSpace(req.Ticker) == "" || strings.TrimSpace(req.Exchange) == "" {
		http.Error(w, "Ticker and exchange are required", http.StatusBadRequest)
		return
	}

	market := models.Exchange(strings.ToLower(strings.TrimSpace(req.Exchange)))
	if !market.IsValid() {
		http.Error(w, fmt.Sprintf("Unsupported exchange: %s", req.Exchange), http.StatusBadRequest)
		return
	}

	res, err := h.Registry.Get(market)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filings := res.ListFilings(r.Context(), strings.TrimSpace(req.Ticker))
	fmt.Printf("[PROSPECTUS] %s/%s returned %d filings\n", market, req.Ticker, len(filings))

	json.NewEncoder(w).Encode(Response{
		Success:  true,
		Data:     filings,
		Total:    len(filings),
		Ticker:   req.Ticker,
		Exchange: string(market),
	})
}
