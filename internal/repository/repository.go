package repository

import (
	"errors"

	"github.com/jparedesmx/cartera/internal/models"
)

// Sentinel errors shared by all store implementations
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the persistence operations the service layer depends on.
// Implementations must be safe for concurrent use.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id string) (*models.User, error)
	ListUsers() ([]*models.User, error)

	ListCards(userID string) ([]*models.Card, error)
	GetCard(userID, cardID string) (*models.Card, error)
	FindCardByLast4(userID, last4 string) (*models.Card, error)
	SaveCard(card *models.Card) error

	ListTransactions(userID, cardID string) ([]*models.Transaction, error)
	SaveTransaction(tx *models.Transaction) error

	Close() error
}
