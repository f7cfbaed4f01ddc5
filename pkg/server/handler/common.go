package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/artembek/auction/pkg/database"
	"github.com/artembek/auction/pkg/model"
	"github.com/artembek/auction/pkg/service"
)

type ListPageResp[T any] struct {
	Page  []T `json:"page"`
	Total int `json:"total"`
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0, fmt.Errorf("can't parse %s: %w", name, err)
	}

	return v, nil
}

func pageParams(r *http.Request) (num, size int, err error) {
	num, size = service.DefaultPageNum, service.DefaultPageSize
	q := r.URL.Query()

	if pn := q.Get("page_num"); pn != "" {
		if num, err = strconv.Atoi(pn); err != nil {
			return 0, 0, fmt.Errorf("can't parse page_num: %w", err)
		}
	}

	if ps := q.Get("page_size"); ps != "" {
		if size, err = strconv.Atoi(ps); err != nil {
			return 0, 0, fmt.Errorf("can't parse page_size: %w", err)
		}
	}

	return num, size, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrItemNotFound),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, database.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, model.ErrOnCooldown):
		http.Error(w, err.Error(), http.StatusTooManyRequests)

	case errors.Is(err, model.ErrItemFinished),
		errors.Is(err, model.ErrOwnItem),
		errors.Is(err, model.ErrBidTooLow),
		errors.Is(err, model.ErrInsufficientBalance),
		errors.Is(err, model.ErrNotOwner),
		errors.Is(err, model.ErrNotDraft):
		http.Error(w, err.Error(), http.StatusPreconditionFailed)

	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
