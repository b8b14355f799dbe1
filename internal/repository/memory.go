package repository

import (
	"strings"
	"sync"
	"time"

	"github.com/jparedesmx/cartera/internal/models"
)

// Memory is a volatile in-process store. It backs the prototype mode (no
// DB_CONN configured) and the test suite; everything resets on restart.
type Memory struct {
	mu           sync.RWMutex
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	cards        map[string][]*models.Card        // userID -> cards
	transactions map[string][]*models.Transaction // userID -> transactions
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[string]*models.User),
		cards:        make(map[string][]*models.Card),
		transactions: make(map[string][]*models.Transaction),
	}
}

// CreateUser stores a new user, rejecting duplicate emails
func (m *Memory) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByEmail[user.Email]; ok {
		return ErrAlreadyExists
	}
	if user.CreatedAt == "" {
		user.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	u := *user
	m.usersByEmail[u.Email] = &u
	m.usersByID[u.ID] = &u
	return nil
}

// FindUserByEmail retrieves a user by email
func (m *Memory) FindUserByEmail(email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

// FindUserByID retrieves a user by id
func (m *Memory) FindUserByID(id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

// ListUsers retrieves every registered user
func (m *Memory) ListUsers() ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]*models.User, 0, len(m.usersByID))
	for _, user := range m.usersByID {
		u := *user
		users = append(users, &u)
	}
	return users, nil
}

// ListCards retrieves all cards owned by a user
func (m *Memory) ListCards(userID string) ([]*models.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cards := make([]*models.Card, 0, len(m.cards[userID]))
	for _, c := range m.cards[userID] {
		card := *c
		cards = append(cards, &card)
	}
	return cards, nil
}

// GetCard retrieves a single card owned by a user
func (m *Memory) GetCard(userID, cardID string) (*models.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.cards[userID] {
		if c.ID == cardID {
			card := *c
			return &card, nil
		}
	}
	return nil, ErrNotFound
}

// FindCardByLast4 retrieves a user's card by its last four digits
func (m *Memory) FindCardByLast4(userID, last4 string) (*models.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.cards[userID] {
		if c.Last4 == last4 {
			card := *c
			return &card, nil
		}
	}
	return nil, ErrNotFound
}

// SaveCard upserts a card
func (m *Memory) SaveCard(card *models.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *card
	for i, existing := range m.cards[card.UserID] {
		if existing.ID == card.ID {
			m.cards[card.UserID][i] = &c
			return nil
		}
	}
	m.cards[card.UserID] = append(m.cards[card.UserID], &c)
	return nil
}

// ListTransactions retrieves a user's transactions, optionally scoped to a card
func (m *Memory) ListTransactions(userID, cardID string) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txs []*models.Transaction
	for _, t := range m.transactions[userID] {
		if cardID != "" && t.CardID != cardID {
			continue
		}
		tx := *t
		txs = append(txs, &tx)
	}
	return txs, nil
}

// SaveTransaction appends a transaction, skipping statement duplicates
// (same date, amount, and case-insensitive description on the same card)
func (m *Memory) SaveTransaction(tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.transactions[tx.UserID] {
		if existing.CardID == tx.CardID &&
			existing.Date == tx.Date &&
			existing.Amount.Equal(tx.Amount) &&
			strings.EqualFold(strings.TrimSpace(existing.Description), strings.TrimSpace(tx.Description)) {
			return ErrAlreadyExists
		}
	}
	t := *tx
	m.transactions[tx.UserID] = append(m.transactions[tx.UserID], &t)
	return nil
}

// Close is a no-op for the in-memory store
func (m *Memory) Close() error {
	return nil
}
