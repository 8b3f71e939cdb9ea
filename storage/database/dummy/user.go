package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
	"github.com/shraddhaWorks/new-timelly-sub001/core/user"
)

type UserRepository struct {
	db *DB
}

var _ user.Repository = (*UserRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (repo *UserRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers []user.User, _ ...core.DBExecutor) error {
	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}

	var err error
	repo.db.read(func() {
		for _, usr := range repo.db.users {
			if excluded[usr.ID] {
				continue
			}
			if username != "" && usr.Username == username {
				err = user.ErrUsernameExists
				return
			}
			if email != "" && usr.Email == email {
				err = user.ErrEmailExists
				return
			}
		}
	})
	return err
}

func (repo *UserRepository) CreateUser(_ context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	repo.db.apply(exec, func() {
		u := usr
		repo.db.users[u.ID] = &u
	})
	return usr, nil
}

func (repo *UserRepository) GetUserByID(_ context.Context, id string, _ ...core.DBExecutor) (user.User, error) {
	var (
		found user.User
		err   = user.ErrNotFound
	)
	repo.db.read(func() {
		if usr, ok := repo.db.users[id]; ok {
			found, err = *usr, nil
		}
	})
	return found, err
}

func (repo *UserRepository) GetUserByUsernameOrEmail(_ context.Context, uname string, _ ...core.DBExecutor) (user.User, error) {
	var (
		found user.User
		err   = user.ErrNotFound
	)
	repo.db.read(func() {
		for _, usr := range repo.db.users {
			if usr.Username == uname || usr.Email == uname {
				found, err = *usr, nil
				return
			}
		}
	})
	return found, err
}

func (repo *UserRepository) SetLastLogin(_ context.Context, id string, at time.Time, exec ...core.DBExecutor) error {
	repo.db.apply(exec, func() {
		if usr, ok := repo.db.users[id]; ok {
			usr.LastLogin = at
		}
	})
	return nil
}

func (repo *UserRepository) UpdateUserPassword(_ context.Context, id string, hash []byte, exec ...core.DBExecutor) error {
	repo.db.apply(exec, func() {
		if usr, ok := repo.db.users[id]; ok {
			usr.PasswordHash = hash
			usr.UpdatedAt = time.Now().UTC()
		}
	})
	return nil
}
