package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jparedesmx/cartera/internal/models"
	"github.com/shopspring/decimal"
)

func TestMemory_Users(t *testing.T) {
	m := NewMemory()

	user := &models.User{ID: uuid.NewString(), Email: "ana@example.com", PasswordHash: "hash"}
	if err := m.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if err := m.CreateUser(&models.User{ID: uuid.NewString(), Email: "ana@example.com"}); err != ErrAlreadyExists {
		t.Errorf("Expected ErrAlreadyExists for duplicate email, got %v", err)
	}

	byEmail, err := m.FindUserByEmail("ana@example.com")
	if err != nil || byEmail.ID != user.ID {
		t.Errorf("FindUserByEmail: got %+v, %v", byEmail, err)
	}
	byID, err := m.FindUserByID(user.ID)
	if err != nil || byID.Email != user.Email {
		t.Errorf("FindUserByID: got %+v, %v", byID, err)
	}
	if _, err := m.FindUserByEmail("nobody@example.com"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	users, err := m.ListUsers()
	if err != nil || len(users) != 1 {
		t.Errorf("Expected 1 user, got %d (%v)", len(users), err)
	}
}

func TestMemory_CardUpsert(t *testing.T) {
	m := NewMemory()
	userID := uuid.NewString()

	card := &models.Card{ID: uuid.NewString(), UserID: userID, Name: "Oro", Last4: "4421",
		Balance: decimal.NewFromInt(1000)}
	if err := m.SaveCard(card); err != nil {
		t.Fatalf("Failed to save card: %v", err)
	}

	card.Balance = decimal.NewFromInt(2000)
	if err := m.SaveCard(card); err != nil {
		t.Fatalf("Failed to update card: %v", err)
	}

	cards, _ := m.ListCards(userID)
	if len(cards) != 1 {
		t.Fatalf("Expected upsert to keep 1 card, got %d", len(cards))
	}
	if !cards[0].Balance.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Expected updated balance 2000, got %s", cards[0].Balance)
	}

	byLast4, err := m.FindCardByLast4(userID, "4421")
	if err != nil || byLast4.ID != card.ID {
		t.Errorf("FindCardByLast4: got %+v, %v", byLast4, err)
	}
	if _, err := m.GetCard(userID, "missing"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemory_TransactionDedup(t *testing.T) {
	m := NewMemory()
	userID := uuid.NewString()
	cardID := uuid.NewString()

	tx := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		CardID:      cardID,
		Date:        "2026-08-01",
		Description: "Supermercado",
		Amount:      decimal.NewFromFloat(842.50),
		Type:        models.TransactionTypeCharge,
	}
	if err := m.SaveTransaction(tx); err != nil {
		t.Fatalf("Failed to save transaction: %v", err)
	}

	dup := *tx
	dup.ID = uuid.NewString()
	dup.Description = "  SUPERMERCADO " // same after trim/fold
	if err := m.SaveTransaction(&dup); err != ErrAlreadyExists {
		t.Errorf("Expected ErrAlreadyExists for statement duplicate, got %v", err)
	}

	other := *tx
	other.ID = uuid.NewString()
	other.Date = "2026-08-02"
	if err := m.SaveTransaction(&other); err != nil {
		t.Errorf("Expected different-date transaction to save: %v", err)
	}

	txs, _ := m.ListTransactions(userID, cardID)
	if len(txs) != 2 {
		t.Errorf("Expected 2 stored transactions, got %d", len(txs))
	}
	scoped, _ := m.ListTransactions(userID, "other-card")
	if len(scoped) != 0 {
		t.Errorf("Expected card scoping to filter, got %d", len(scoped))
	}
}
