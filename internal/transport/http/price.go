package http

import (
	"encoding/json"
	"net/http"

	"github.com/nazyhomayoun/learning-software-testing/internal/money"
	"github.com/nazyhomayoun/learning-software-testing/internal/pricing"
)

// HandlePrice serves POST /price: a stateless quote with explicit rates.
// Zero quantity prices to zero; this is a defined case, not an error.
func HandlePrice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req priceRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		unitPrice, err := money.FromString(req.UnitPrice)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid unit_price")
			return
		}
		feeRate, err := money.FromString(req.FeeRatePercent)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid fee_rate_percent")
			return
		}
		discounts := make([]money.Money, 0, len(req.DiscountRatesPercent))
		for _, d := range req.DiscountRatesPercent {
			rate, err := money.FromString(d)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid discount rate")
				return
			}
			discounts = append(discounts, rate)
		}

		quoted, err := pricing.Quote(unitPrice, req.Quantity, feeRate, discounts...)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, priceResponse{
			Total:        quoted.StringFixed(4),
			TotalRounded: quoted.RoundMinor().StringFixed(2),
		})
	}
}

type priceRequest struct {
	UnitPrice            string   `json:"unit_price"`
	Quantity             int      `json:"quantity"`
	FeeRatePercent       string   `json:"fee_rate_percent"`
	DiscountRatesPercent []string `json:"discount_rates_percent,omitempty"`
}

type priceResponse struct {
	Total        string `json:"total"`
	TotalRounded string `json:"total_rounded"`
}
