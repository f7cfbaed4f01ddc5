package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/artembek/auction/pkg/model"
	"github.com/artembek/auction/pkg/service"
)

func ItemCreate(svc service.Item) http.HandlerFunc {
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

		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "no name provided", http.StatusBadRequest)
			return
		}

		startPrice, err := intParam(r, "start_price")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		timeWindow, err := intParam(r, "time_window")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		id, err := svc.Create(r.Context(), name, startPrice, timeWindow, userID)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := []byte(fmt.Sprintf(`{"id":%d}`, id))
		if _, err := w.Write(resp); err != nil {
			http.Error(w, fmt.Sprintf("can't write response: %v", err), http.StatusInternalServerError)
			return
		}
	}
}

func ItemPublish(svc service.Item) http.HandlerFunc {
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

		if err := svc.Publish(r.Context(), userID, itemID); err != nil {
			writeError(w, err)
			return
		}
	}
}

func ItemGet(svc service.Item) http.HandlerFunc {
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

		item, err := svc.Get(r.Context(), itemID)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(item); err != nil {
			http.Error(w, fmt.Sprintf("can't encode response: %v", err), http.StatusInternalServerError)
			return
		}
	}
}

func ItemListPage(svc service.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		pageNum, pageSize, err := pageParams(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var resp ListPageResp[model.Item]

		resp.Page, resp.Total, err = svc.ListPage(r.Context(), pageNum, pageSize)
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
