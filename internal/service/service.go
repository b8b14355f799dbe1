package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jparedesmx/cartera/internal/config"
	"github.com/jparedesmx/cartera/internal/integrations/gemini"
	"github.com/jparedesmx/cartera/internal/models"
	"github.com/jparedesmx/cartera/internal/projection"
	"github.com/jparedesmx/cartera/internal/repository"
	"github.com/jparedesmx/cartera/internal/statement"
	"github.com/jparedesmx/cartera/internal/utils/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrChatUnavailable is returned when the AI assistant is not configured
var ErrChatUnavailable = errors.New("chat assistant unavailable")

// Service handles business logic
type Service struct {
	store  repository.Store
	ai     *gemini.Client
	mailer *email.Sender
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(store repository.Store, ai *gemini.Client, mailer *email.Sender, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, ai: ai, mailer: mailer, log: log, config: cfg}
}

// DashboardSummary is the account-wide dashboard payload
type DashboardSummary struct {
	TotalDebt        decimal.Decimal            `json:"total_debt"`
	Cards            []models.CardSummary       `json:"cards"`
	UpcomingPayments []UpcomingPayment          `json:"upcoming_payments"`
	Projections      []models.MonthlyProjection `json:"projections"`
}

// UpcomingPayment is one pending card payment on the dashboard
type UpcomingPayment struct {
	CardID           string          `json:"card_id"`
	CardName         string          `json:"card_name"`
	DueDate          string          `json:"due_date"`
	EstimatedMinimum decimal.Decimal `json:"estimated_minimum"`
}

// CardDetails is the per-card dashboard payload
type CardDetails struct {
	Card               *models.Card               `json:"card"`
	Transactions       []*models.Transaction      `json:"transactions"`
	CategoryAggregates []models.CategoryAggregate `json:"category_aggregates"`
	Projections        []models.MonthlyProjection `json:"projections"`
}

// ImportResult summarizes a statement upload
type ImportResult struct {
	Added        int                   `json:"added"`
	CardID       string                `json:"card_id"`
	CardName     string                `json:"card_name"`
	Transactions []*models.Transaction `json:"transactions"`
}

// ChatAnswer is the assistant response plus how many cards grounded it
type ChatAnswer struct {
	Role         string `json:"role"`
	Content      string `json:"content"`
	ContextCards int    `json:"context_cards"`
}

// Register creates a new user and returns an access token
func (s *Service) Register(emailAddr, password string) (string, error) {
	if _, err := s.store.FindUserByEmail(emailAddr); err == nil {
		return "", repository.ErrAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hashedPassword),
	}
	if err := s.store.CreateUser(user); err != nil {
		return "", err
	}

	s.log.Infof("User registered: %s", user.Email)
	return s.signToken(user.ID)
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(emailAddr, password string) (string, error) {
	user, err := s.store.FindUserByEmail(emailAddr)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	s.log.Infof("User logged in: %s", user.Email)
	return s.signToken(user.ID)
}

func (s *Service) signToken(userID string) (string, error) {
	expires := time.Duration(s.config.JWTExpiresMinutes) * time.Minute
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expires)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

func (s *Service) currentUser(ctx context.Context) (*models.User, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("user ID not found in context")
	}
	return s.store.FindUserByID(userID)
}

// ListCards returns the authenticated user's cards
func (s *Service) ListCards(ctx context.Context) ([]*models.Card, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListCards(user.ID)
}

// GetCard returns one of the authenticated user's cards
func (s *Service) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetCard(user.ID, cardID)
}

// Summary builds the account-wide dashboard: per-card summaries, upcoming
// payments, and the aggregated 6-month projection. Total debt comes from the
// month-0 projection so it includes all pending MSI obligations.
func (s *Service) Summary(ctx context.Context) (*DashboardSummary, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.ListCards(user.ID)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		TotalDebt:        decimal.Zero,
		Cards:            []models.CardSummary{},
		UpcomingPayments: []UpcomingPayment{},
	}

	perCard := make([][]models.MonthlyProjection, 0, len(cards))
	for _, card := range cards {
		projections, err := s.projectCard(user.ID, card)
		if err != nil {
			return nil, err
		}
		perCard = append(perCard, projections)
		summary.TotalDebt = summary.TotalDebt.Add(projections[0].TotalDebt)

		summary.Cards = append(summary.Cards, models.CardSummary{
			ID:                  card.ID,
			Name:                card.Name,
			Balance:             projections[0].ProjectedBalance,
			UpcomingPaymentDate: nextDueDate(card.DueDateDay, time.Now().UTC()),
			MinimumDue:          card.MinimumPayment,
		})
		summary.UpcomingPayments = append(summary.UpcomingPayments, UpcomingPayment{
			CardID:           card.ID,
			CardName:         card.Name,
			DueDate:          nextDueDate(card.DueDateDay, time.Now().UTC()),
			EstimatedMinimum: card.MinimumPayment,
		})
	}

	summary.Projections = projection.AggregateProjections(perCard...)
	return summary, nil
}

// CardDetails builds the per-card dashboard view
func (s *Service) CardDetails(ctx context.Context, cardID string) (*CardDetails, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	card, err := s.store.GetCard(user.ID, cardID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(user.ID, cardID)
	if err != nil {
		return nil, err
	}

	projections, err := s.projectCard(user.ID, card)
	if err != nil {
		return nil, err
	}

	return &CardDetails{
		Card:               card,
		Transactions:       txs,
		CategoryAggregates: categoryAggregates(txs),
		Projections:        projections,
	}, nil
}

// InstallmentReport builds the MSI interest report across all cards
func (s *Service) InstallmentReport(ctx context.Context) (*models.InstallmentReport, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	cardPtrs, err := s.store.ListCards(user.ID)
	if err != nil {
		return nil, err
	}

	cards := make([]models.Card, 0, len(cardPtrs))
	txsByCard := make(map[string][]models.Transaction, len(cardPtrs))
	for _, card := range cardPtrs {
		cards = append(cards, *card)
		txs, err := s.store.ListTransactions(user.ID, card.ID)
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			txsByCard[card.ID] = append(txsByCard[card.ID], *tx)
		}
	}

	report := projection.GroupByCard(cards, txsByCard)
	return &report, nil
}

// projectCard recomputes the forward schedule for one card. Projections are
// never stored; they are always derived from current transaction state.
func (s *Service) projectCard(userID string, card *models.Card) ([]models.MonthlyProjection, error) {
	txPtrs, err := s.store.ListTransactions(userID, card.ID)
	if err != nil {
		return nil, err
	}
	txs := make([]models.Transaction, 0, len(txPtrs))
	for _, tx := range txPtrs {
		txs = append(txs, *tx)
	}

	// The statement's no-interest payment is the month-0 obligation when
	// present; otherwise fall back to the running balance.
	payNow := card.NoInterestPayment
	if payNow.IsZero() {
		payNow = card.Balance
	}
	return projection.ProjectBalances(payNow, s.config.MinimumDueRate, txs, projection.DefaultHorizonMonths), nil
}

// ImportStatement parses an uploaded statement, upserts the card it belongs
// to, and stores the movements that are not already known.
func (s *Service) ImportStatement(ctx context.Context, filename, contentType string, content []byte) (*ImportResult, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	extract, err := s.parseStatement(ctx, filename, contentType, content)
	if err != nil {
		return nil, err
	}

	card, err := s.upsertCard(user.ID, extract.Summary)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.ListTransactions(user.ID, card.ID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{CardID: card.ID, CardName: card.Name, Transactions: []*models.Transaction{}}
	newCharges := decimal.Zero
	for _, et := range extract.Transactions {
		tx := &models.Transaction{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			CardID:       card.ID,
			Date:         et.Date,
			Description:  et.Description,
			Category:     et.Category,
			Amount:       et.Amount,
			Type:         transactionType(et.Amount),
			Installments: et.Installments,
			MonthsPaid:   et.MonthsPaid,
		}
		if isDuplicate(existing, tx) {
			continue
		}
		if err := s.store.SaveTransaction(tx); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			return nil, err
		}
		existing = append(existing, tx)
		result.Transactions = append(result.Transactions, tx)
		result.Added++
		if tx.Type == models.TransactionTypeCharge {
			newCharges = newCharges.Add(tx.Amount)
		}
	}

	// Only newly imported charges move the balance; duplicates are already
	// reflected in it.
	if result.Added > 0 && !newCharges.IsZero() {
		card.Balance = card.Balance.Add(newCharges)
		if err := s.store.SaveCard(card); err != nil {
			return nil, err
		}
	}

	s.log.Infof("Imported %d transactions for card %s", result.Added, card.ID)
	return result, nil
}

// parseStatement routes the upload to the right parser: XML exports are
// parsed directly, PDFs and images go through the AI extractor, and anything
// else falls back to a placeholder import.
func (s *Service) parseStatement(ctx context.Context, filename, contentType string, content []byte) (*models.StatementExtract, error) {
	lower := strings.ToLower(filename)
	switch {
	case contentType == "text/xml" || contentType == "application/xml" || strings.HasSuffix(lower, ".xml"):
		return statement.ParseXML(content)
	case contentType == "application/pdf" || strings.HasSuffix(lower, ".pdf"),
		strings.HasPrefix(contentType, "image/"):
		extract, err := s.ai.ExtractStatement(ctx, content, contentType)
		if errors.Is(err, gemini.ErrDisabled) {
			s.log.Warn("Gemini disabled, using fallback statement import")
			return fallbackExtract(filename), nil
		}
		if err != nil {
			return nil, err
		}
		return extract, nil
	default:
		return fallbackExtract(filename), nil
	}
}

// upsertCard matches the statement to an existing card by last4, updating
// its statement fields, or creates a new card with sane defaults.
func (s *Service) upsertCard(userID string, summary *models.StatementSummary) (*models.Card, error) {
	if summary == nil {
		summary = &models.StatementSummary{}
	}

	var card *models.Card
	if summary.Last4 != "" {
		existing, err := s.store.FindCardByLast4(userID, summary.Last4)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		card = existing
	}

	if card == nil {
		card = &models.Card{
			ID:          uuid.NewString(),
			UserID:      userID,
			Name:        "Imported Card",
			Issuer:      "Unknown Bank",
			Last4:       "0000",
			CreditLimit: decimal.NewFromInt(10000),
			DueDateDay:  15,
		}
	}

	if summary.CardName != "" {
		card.Name = summary.CardName
	} else if summary.Issuer != "" && card.Name == "Imported Card" {
		card.Name = summary.Issuer
	}
	if summary.Issuer != "" {
		card.Issuer = summary.Issuer
	}
	if summary.Last4 != "" {
		card.Last4 = summary.Last4
	}
	if !summary.CreditLimit.IsZero() {
		card.CreditLimit = summary.CreditLimit
	}
	if !summary.TotalBalance.IsZero() {
		card.Balance = summary.TotalBalance
	}
	if !summary.MinimumPayment.IsZero() {
		card.MinimumPayment = summary.MinimumPayment
	}
	if !summary.NoInterestPayment.IsZero() {
		card.NoInterestPayment = summary.NoInterestPayment
	}
	if !summary.CAT.IsZero() {
		card.CAT = summary.CAT
	}
	if day := dueDayFromISO(summary.DueDate); day > 0 {
		card.DueDateDay = day
	}

	if err := s.store.SaveCard(card); err != nil {
		return nil, err
	}
	return card, nil
}

// Chat answers a finance question grounded in the user's card data
func (s *Service) Chat(ctx context.Context, question string) (*ChatAnswer, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.ListCards(user.ID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return &ChatAnswer{
			Role:    "assistant",
			Content: "No tienes tarjetas registradas. Por favor, carga un estado de cuenta primero.",
		}, nil
	}

	doc, err := s.buildFinancialContext(user.ID, cards)
	if err != nil {
		return nil, err
	}

	answer, err := s.ai.Chat(ctx, question, doc)
	if errors.Is(err, gemini.ErrDisabled) {
		return nil, ErrChatUnavailable
	}
	if err != nil {
		return nil, err
	}

	return &ChatAnswer{Role: "assistant", Content: answer, ContextCards: len(cards)}, nil
}

// buildFinancialContext renders the user's cards and MSI plans as a compact
// document the assistant can ground its answers in.
func (s *Service) buildFinancialContext(userID string, cards []*models.Card) (string, error) {
	var b strings.Builder
	b.WriteString("# Resumen de Tarjetas y Deudas\n")
	for i, card := range cards {
		fmt.Fprintf(&b, "\n## Tarjeta %d: %s (%s)\n", i+1, card.Name, card.Last4)
		fmt.Fprintf(&b, "- Saldo: $%s\n", card.Balance.StringFixed(2))
		fmt.Fprintf(&b, "- Pago minimo: $%s\n", card.MinimumPayment.StringFixed(2))
		fmt.Fprintf(&b, "- Vencimiento: %s\n", nextDueDate(card.DueDateDay, time.Now().UTC()))

		txPtrs, err := s.store.ListTransactions(userID, card.ID)
		if err != nil {
			return "", err
		}
		txs := make([]models.Transaction, 0, len(txPtrs))
		for _, tx := range txPtrs {
			txs = append(txs, *tx)
		}
		details := projection.ComputeAllInstallmentDetails(txs)
		if len(details) > 0 {
			b.WriteString("\n### MSI:\n")
			for _, d := range details {
				fmt.Fprintf(&b, "- %s: $%s (%d/%d), interes estimado si pagas solo el minimo: $%s\n",
					d.Description, d.Amount.StringFixed(2), d.MonthsCompleted, d.TotalMonths,
					d.TotalInterest.StringFixed(2))
			}
		}
	}
	return b.String(), nil
}

// SendDueReminders emails every user whose card payment is due within the
// configured window. Invoked daily by the scheduler.
func (s *Service) SendDueReminders() {
	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}

	users, err := s.store.ListUsers()
	if err != nil {
		s.log.Errorf("Failed to list users for reminders: %v", err)
		return
	}

	now := time.Now().UTC()
	for _, user := range users {
		cards, err := s.store.ListCards(user.ID)
		if err != nil {
			s.log.Errorf("Failed to list cards for %s: %v", user.Email, err)
			continue
		}
		for _, card := range cards {
			due := nextDueDate(card.DueDateDay, now)
			dueTime, err := time.Parse("2006-01-02", due)
			if err != nil {
				continue
			}
			daysLeft := int(dueTime.Sub(now).Hours() / 24)
			if daysLeft > s.config.ReminderDays {
				continue
			}
			if err := s.mailer.SendPaymentReminder(user.Email, card.Name, due,
				card.MinimumPayment, card.NoInterestPayment); err != nil {
				s.log.Errorf("Failed to send reminder for card %s: %v", card.ID, err)
			}
		}
	}
}

func categoryAggregates(txs []*models.Transaction) []models.CategoryAggregate {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != models.TransactionTypeCharge {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}

	categories := make([]string, 0, len(totals))
	for c := range totals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	aggregates := make([]models.CategoryAggregate, 0, len(categories))
	for _, c := range categories {
		aggregates = append(aggregates, models.CategoryAggregate{Category: c, Total: totals[c]})
	}
	return aggregates
}

func transactionType(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return models.TransactionTypePayment
	}
	return models.TransactionTypeCharge
}

func isDuplicate(existing []*models.Transaction, tx *models.Transaction) bool {
	for _, e := range existing {
		if e.Date == tx.Date && e.Amount.Equal(tx.Amount) &&
			strings.EqualFold(strings.TrimSpace(e.Description), strings.TrimSpace(tx.Description)) {
			return true
		}
	}
	return false
}

// nextDueDate returns the next occurrence of the card's due day as an ISO
// date, rolling into the following month once today's due day has passed and
// clamping days the month doesn't have (e.g. 31 in February).
func nextDueDate(dueDay int, now time.Time) string {
	year, month := now.Year(), now.Month()
	if now.Day() >= dueDay {
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := dueDay
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// fallbackExtract produces a minimal placeholder import when no parser can
// handle the upload.
func fallbackExtract(filename string) *models.StatementExtract {
	base := "Imported statement"
	if filename != "" {
		base = fmt.Sprintf("Imported from %s", filename)
	}
	today := time.Now().UTC().Format("2006-01-02")
	return &models.StatementExtract{
		Transactions: []models.ExtractedTransaction{
			{Date: today, Description: base + " - Grocery", Category: "Groceries", Amount: decimal.NewFromFloat(42.13)},
			{Date: today, Description: base + " - Dining", Category: "Dining", Amount: decimal.NewFromFloat(28.55)},
		},
	}
}

// dueDayFromISO extracts the day of month from an ISO date, 0 when absent
func dueDayFromISO(iso string) int {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return 0
	}
	return t.Day()
}
