package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/artembek/auction/pkg/service"
)

func UserCreate(svc service.User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		username := r.URL.Query().Get("username")
		if username == "" {
			http.Error(w, "no username provided", http.StatusBadRequest)
			return
		}

		id, err := svc.Create(r.Context(), username)
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

func UserGet(svc service.User) http.HandlerFunc {
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

		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(user); err != nil {
			http.Error(w, fmt.Sprintf("can't encode response: %v", err), http.StatusInternalServerError)
			return
		}
	}
}

func UserDeposit(svc service.User) http.HandlerFunc {
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

		amount, err := intParam(r, "amount")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if amount <= 0 {
			http.Error(w, "amount must be positive", http.StatusBadRequest)
			return
		}

		if err := svc.Deposit(r.Context(), userID, amount); err != nil {
			writeError(w, err)
			return
		}
	}
}
