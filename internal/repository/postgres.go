package repository

import (
	"database/sql"
	"fmt"

	"github.com/jparedesmx/cartera/internal/models"
)

// Postgres provides database-backed storage
type Postgres struct {
	db *sql.DB
}

// NewPostgres initializes the store and bootstraps the schema
func NewPostgres(db *sql.DB) (*Postgres, error) {
	s := &Postgres{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the tables if they don't already exist. Money columns
// are NUMERIC so amounts survive round trips without float drift.
func (s *Postgres) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		issuer TEXT NOT NULL,
		last4 TEXT NOT NULL,
		credit_limit NUMERIC NOT NULL DEFAULT 0,
		balance NUMERIC NOT NULL DEFAULT 0,
		due_date_day INTEGER NOT NULL DEFAULT 15,
		minimum_payment NUMERIC NOT NULL DEFAULT 0,
		no_interest_payment NUMERIC NOT NULL DEFAULT 0,
		cat NUMERIC NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		card_id TEXT NOT NULL REFERENCES cards(id),
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		type TEXT NOT NULL,
		installments INTEGER NOT NULL DEFAULT 0,
		months_paid INTEGER NOT NULL DEFAULT 0
	);`
	_, err := s.db.Exec(schema)
	return err
}

// CreateUser inserts a new user
func (s *Postgres) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := s.db.QueryRow(query, user.ID, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (s *Postgres) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1`
	err := s.db.QueryRow(query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (s *Postgres) FindUserByID(id string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1`
	err := s.db.QueryRow(query, id).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers retrieves every registered user
func (s *Postgres) ListUsers() ([]*models.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		ORDER BY created_at`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ListCards retrieves all cards owned by a user
func (s *Postgres) ListCards(userID string) ([]*models.Card, error) {
	query := `
		SELECT id, user_id, name, issuer, last4, credit_limit, balance,
		       due_date_day, minimum_payment, no_interest_payment, cat
		FROM cards
		WHERE user_id = $1
		ORDER BY name`
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card := &models.Card{}
		if err := rows.Scan(&card.ID, &card.UserID, &card.Name, &card.Issuer, &card.Last4,
			&card.CreditLimit, &card.Balance, &card.DueDateDay,
			&card.MinimumPayment, &card.NoInterestPayment, &card.CAT); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// GetCard retrieves a single card owned by a user
func (s *Postgres) GetCard(userID, cardID string) (*models.Card, error) {
	card := &models.Card{}
	query := `
		SELECT id, user_id, name, issuer, last4, credit_limit, balance,
		       due_date_day, minimum_payment, no_interest_payment, cat
		FROM cards
		WHERE user_id = $1 AND id = $2`
	err := s.db.QueryRow(query, userID, cardID).
		Scan(&card.ID, &card.UserID, &card.Name, &card.Issuer, &card.Last4,
			&card.CreditLimit, &card.Balance, &card.DueDateDay,
			&card.MinimumPayment, &card.NoInterestPayment, &card.CAT)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

// FindCardByLast4 retrieves a user's card by its last four digits
func (s *Postgres) FindCardByLast4(userID, last4 string) (*models.Card, error) {
	card := &models.Card{}
	query := `
		SELECT id, user_id, name, issuer, last4, credit_limit, balance,
		       due_date_day, minimum_payment, no_interest_payment, cat
		FROM cards
		WHERE user_id = $1 AND last4 = $2`
	err := s.db.QueryRow(query, userID, last4).
		Scan(&card.ID, &card.UserID, &card.Name, &card.Issuer, &card.Last4,
			&card.CreditLimit, &card.Balance, &card.DueDateDay,
			&card.MinimumPayment, &card.NoInterestPayment, &card.CAT)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card: %w", err)
	}
	return card, nil
}

// SaveCard upserts a card
func (s *Postgres) SaveCard(card *models.Card) error {
	query := `
		INSERT INTO cards (id, user_id, name, issuer, last4, credit_limit, balance,
		                   due_date_day, minimum_payment, no_interest_payment, cat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			issuer = EXCLUDED.issuer,
			last4 = EXCLUDED.last4,
			credit_limit = EXCLUDED.credit_limit,
			balance = EXCLUDED.balance,
			due_date_day = EXCLUDED.due_date_day,
			minimum_payment = EXCLUDED.minimum_payment,
			no_interest_payment = EXCLUDED.no_interest_payment,
			cat = EXCLUDED.cat`
	_, err := s.db.Exec(query, card.ID, card.UserID, card.Name, card.Issuer, card.Last4,
		card.CreditLimit, card.Balance, card.DueDateDay,
		card.MinimumPayment, card.NoInterestPayment, card.CAT)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// ListTransactions retrieves a user's transactions, optionally scoped to a card
func (s *Postgres) ListTransactions(userID, cardID string) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, card_id, date, description, category, amount, type,
		       installments, months_paid
		FROM transactions
		WHERE user_id = $1 AND ($2 = '' OR card_id = $2)
		ORDER BY date DESC`
	rows, err := s.db.Query(query, userID, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.CardID, &tx.Date, &tx.Description,
			&tx.Category, &tx.Amount, &tx.Type, &tx.Installments, &tx.MonthsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SaveTransaction inserts a transaction
func (s *Postgres) SaveTransaction(tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, card_id, date, description, category,
		                          amount, type, installments, months_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.Exec(query, tx.ID, tx.UserID, tx.CardID, tx.Date, tx.Description,
		tx.Category, tx.Amount, tx.Type, tx.Installments, tx.MonthsPaid)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *Postgres) Close() error {
	return s.db.Close()
}
