package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/artembek/auction/pkg/database"
	"github.com/artembek/auction/pkg/model"
)

type User interface {
	Create(ctx context.Context, username string) (int, error)
	Get(ctx context.Context, userID int) (model.User, error)
	Deposit(ctx context.Context, userID, amount int) error
}

type UserGeneric struct {
	UserRepository database.UserRepository
}

func (ug *UserGeneric) Create(ctx context.Context, username string) (int, error) {
	id, err := ug.UserRepository.Create(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("can't create user: %w", err)
	}

	return id, nil
}

func (ug *UserGeneric) Get(ctx context.Context, userID int) (model.User, error) {
	user, err := ug.UserRepository.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("can't get user: %w", err)
	}

	return user, nil
}

func (ug *UserGeneric) Deposit(ctx context.Context, userID, amount int) error {
	if err := ug.UserRepository.Deposit(ctx, userID, amount); err != nil {
		return err
	}

	return nil
}
