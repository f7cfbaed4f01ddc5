package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/artembek/auction/pkg/model"
	"github.com/artembek/auction/pkg/service"
)

func BidPlace(svc service.Bid) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, err := intParam(r, "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		itemID, err := intParam(r, "item_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		amount, err := intParam(r, "amount")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if amount <= 0 {
			http.Error(w, "amount must be positive", http.StatusBadRequest)
			return
		}

		if err := svc.Place(r.Context(), userID, itemID, amount); err != nil {
			writeError(w, err)
			return
		}
	}
}

func BidListByItem(svc service.Bid) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		itemID, err := intParam(r, "item_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		pageNum, pageSize, err := pageParams(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var resp ListPageResp[model.Bid]

		resp.Page, resp.Total, err = svc.ListByItem(r.Context(), itemID, pageNum, pageSize)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, fmt.Sprintf("can't encode response: %v", err), http.StatusInternalServerError)
			return
		}
	}
}

func BidListByUser(svc service.Bid) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, err := intParam(r, "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		onlyActive := r.URL.Query().Get("only_active") == "true"

		pageNum, pageSize, err := pageParams(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var resp ListPageResp[model.Bid]

		resp.Page, resp.Total, err = svc.ListByUser(r.Context(), userID, onlyActive, pageNum, pageSize)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, fmt.Sprintf("can't encode response: %v", err), http.StatusInternalServerError)
			return
		}
	}
}
