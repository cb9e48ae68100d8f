package repository

import (
	"context"
	"fmt"
	"net/http"

	"auren-studio/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type UserRepository interface {
	Create(user *domain.User) error
	FindByEmail(email string) (*domain.User, error)
	EmailExists(email string) (bool, error)
}

type userRepository struct {
	client *kivik.Client
	dbName string
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *userRepository) Create(user *domain.User) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("user:%s", user.ID)
	_, err := db.Put(context.Background(), docID, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"email": email,
		},
		"limit": 1,
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}

	var user domain.User
	if err := rows.ScanDoc(&user); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) EmailExists(email string) (bool, error) {
	_, err := r.FindByEmail(email)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
