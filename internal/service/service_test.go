package service

import (
	"context"
	"testing"
	"time"

	"github.com/jparedesmx/cartera/internal/config"
	"github.com/jparedesmx/cartera/internal/integrations/gemini"
	"github.com/jparedesmx/cartera/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const statementXML = `<?xml version="1.0" encoding="utf-8"?>
<statement>
	<summary>
		<issuer>BBVA</issuer>
		<cardName>Oro</cardName>
		<last4>4421</last4>
		<dueDate>2026-09-05</dueDate>
		<minimumPayment>450.00</minimumPayment>
		<noInterestPayment>3200.00</noInterestPayment>
		<totalBalance>12500.00</totalBalance>
		<creditLimit>50000</creditLimit>
		<cat>38.5</cat>
	</summary>
	<movements>
		<movement installments="12" monthsPaid="3">
			<date>2026-08-01</date>
			<description>Muebleria del Centro</description>
			<category>Shopping</category>
			<amount>12000.00</amount>
		</movement>
		<movement>
			<date>2026-08-10</date>
			<description>Supermercado</description>
			<category>Groceries</category>
			<amount>842.50</amount>
		</movement>
	</movements>
</statement>`

func newTestService() (*Service, repository.Store) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiresMinutes: 60,
		MinimumDueRate:    decimal.NewFromFloat(0.03),
		ReminderDays:      3,
	}
	store := repository.NewMemory()
	ai := gemini.NewClient(cfg, logger) // no API key: disabled
	return NewService(store, ai, nil, logger, cfg), store
}

func registerTestUser(t *testing.T, svc *Service, store repository.Store, email string) context.Context {
	t.Helper()
	if _, err := svc.Register(email, "secret123"); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	user, err := store.FindUserByEmail(email)
	if err != nil {
		t.Fatalf("Failed to find registered user: %v", err)
	}
	return context.WithValue(context.Background(), "userID", user.ID)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()

	token, err := svc.Register("ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a token from registration")
	}

	if _, err := svc.Register("ana@example.com", "other"); err == nil {
		t.Error("Expected duplicate registration to fail")
	}

	if _, err := svc.Login("ana@example.com", "secret123"); err != nil {
		t.Errorf("Expected login to succeed: %v", err)
	}
	if _, err := svc.Login("ana@example.com", "wrong"); err == nil {
		t.Error("Expected login with wrong password to fail")
	}
}

func TestImportStatement_XML(t *testing.T) {
	svc, store := newTestService()
	ctx := registerTestUser(t, svc, store, "ana@example.com")

	result, err := svc.ImportStatement(ctx, "estado.xml", "text/xml", []byte(statementXML))
	if err != nil {
		t.Fatalf("Failed to import statement: %v", err)
	}
	if result.Added != 2 {
		t.Errorf("Expected 2 transactions added, got %d", result.Added)
	}

	cards, err := svc.ListCards(ctx)
	if err != nil {
		t.Fatalf("Failed to list cards: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("Expected 1 card, got %d", len(cards))
	}
	card := cards[0]
	if card.Name != "Oro" || card.Last4 != "4421" || card.DueDateDay != 5 {
		t.Errorf("Unexpected card: %+v", card)
	}
	// Statement balance plus the newly imported charges.
	wantBalance := decimal.NewFromFloat(12500.00 + 12000.00 + 842.50)
	if !card.Balance.Equal(wantBalance) {
		t.Errorf("Expected balance %s, got %s", wantBalance, card.Balance)
	}
}

func TestImportStatement_DuplicatesSkipped(t *testing.T) {
	svc, store := newTestService()
	ctx := registerTestUser(t, svc, store, "ana@example.com")

	if _, err := svc.ImportStatement(ctx, "estado.xml", "text/xml", []byte(statementXML)); err != nil {
		t.Fatalf("First import failed: %v", err)
	}
	cards, _ := svc.ListCards(ctx)

	second, err := svc.ImportStatement(ctx, "estado.xml", "text/xml", []byte(statementXML))
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}
	if second.Added != 0 {
		t.Errorf("Expected no new transactions on re-import, got %d", second.Added)
	}
	if second.CardID != cards[0].ID {
		t.Errorf("Expected re-import to match the same card by last4")
	}

	// Card fields refresh from the statement; with no new charges the
	// balance is exactly the statement balance.
	cards, _ = svc.ListCards(ctx)
	if len(cards) != 1 {
		t.Fatalf("Expected re-import to keep a single card, got %d", len(cards))
	}
	if !cards[0].Balance.Equal(decimal.NewFromFloat(12500.00)) {
		t.Errorf("Expected statement balance 12500.00 after re-import, got %s", cards[0].Balance)
	}
}

func TestImportStatement_FallbackForUnsupportedType(t *testing.T) {
	svc, store := newTestService()
	ctx := registerTestUser(t, svc, store, "ana@example.com")

	result, err := svc.ImportStatement(ctx, "notes.txt", "text/plain", []byte("hello"))
	if err != nil {
		t.Fatalf("Fallback import failed: %v", err)
	}
	if result.Added != 2 {
		t.Errorf("Expected 2 fallback transactions, got %d", result.Added)
	}
	if result.CardName != "Imported Card" {
		t.Errorf("Expected default card, got %q", result.CardName)
	}
}

func TestSummary(t *testing.T) {
	svc, store := newTestService()
	ctx := registerTestUser(t, svc, store, "ana@example.com")

	if _, err := svc.ImportStatement(ctx, "estado.xml", "text/xml", []byte(statementXML)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Failed to build summary: %v", err)
	}
	if len(summary.Cards) != 1 {
		t.Fatalf("Expected 1 card summary, got %d", len(summary.Cards))
	}
	if len(summary.Projections) != 6 {
		t.Errorf("Expected 6 aggregated projection entries, got %d", len(summary.Projections))
	}
	if !summary.TotalDebt.IsPositive() {
		t.Errorf("Expected positive total debt, got %s", summary.TotalDebt)
	}
	if len(summary.UpcomingPayments) != 1 {
		t.Fatalf("Expected 1 upcoming payment, got %d", len(summary.UpcomingPayments))
	}
	if !summary.UpcomingPayments[0].EstimatedMinimum.Equal(decimal.NewFromFloat(450.00)) {
		t.Errorf("Expected statement minimum 450.00, got %s", summary.UpcomingPayments[0].EstimatedMinimum)
	}
}

func TestCardDetails(t *testing.T) {
	svc, store := newTestService()
	ctx := registerTestUser(t, svc, store, "ana@example.com")

	result, err := svc.ImportStatement(ctx, "estado.xml", "text/xml", []byte(statementXML))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	details, err := svc.CardDetails(ctx, result.CardID)
	if err != nil {
		t.Fatalf("Failed to get card details: %v", err)
	}
	if len(details.Transactions) != 2 {
		t.Errorf("Expected 2 transactions, got %d", len(details.Transactions))
	}
	if len(details.Projections) != 6 {
		t.Errorf("Expected 6 projections, got %d", len(details.Projections))
	}
	if len(details.CategoryAggregates) != 2 {
		t.Fatalf("Expected 2 category aggregates, got %d", len(details.CategoryAggregates))
	}
	// Sorted by category name: Groceries before Shopping.
	if details.CategoryAggregates[0].Category != "Groceries" {
		t.Errorf("Expected Groceries first, got %q", details.CategoryAggregates[0].Category)
	}

	if _, err := svc.CardDetails(ctx, "missing"); err == nil {
		t.Error("Expected error for unknown card")
	}
}

func TestInstallmentReport(t *testing.T) {
	svc, store := newTestService()
	ctx := registerTestUser(t, svc, store, "ana@example.com")

	if _, err := svc.ImportStatement(ctx, "estado.xml", "text/xml", []byte(statementXML)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	report, err := svc.InstallmentReport(ctx)
	if err != nil {
		t.Fatalf("Failed to build report: %v", err)
	}
	if len(report.Groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(report.Groups))
	}
	group := report.Groups[0]
	if len(group.Details) != 1 {
		t.Fatalf("Expected 1 installment detail, got %d", len(group.Details))
	}
	if !group.TotalAmount.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("Expected MSI total 12000, got %s", group.TotalAmount)
	}
	if !report.TotalInterest.Equal(group.TotalInterest) {
		t.Errorf("Grand total %s does not match group subtotal %s", report.TotalInterest, group.TotalInterest)
	}
}

func TestChat_NoCards(t *testing.T) {
	svc, store := newTestService()
	ctx := registerTestUser(t, svc, store, "ana@example.com")

	answer, err := svc.Chat(ctx, "¿Cuánto debo?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if answer.ContextCards != 0 {
		t.Errorf("Expected 0 context cards, got %d", answer.ContextCards)
	}
	if answer.Content == "" {
		t.Error("Expected a guidance message")
	}
}

func TestChat_UnavailableWithoutAPIKey(t *testing.T) {
	svc, store := newTestService()
	ctx := registerTestUser(t, svc, store, "ana@example.com")

	if _, err := svc.ImportStatement(ctx, "estado.xml", "text/xml", []byte(statementXML)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if _, err := svc.Chat(ctx, "¿Cuánto debo?"); err != ErrChatUnavailable {
		t.Errorf("Expected ErrChatUnavailable, got %v", err)
	}
}

func TestNextDueDate(t *testing.T) {
	// Before the due day: same month.
	now := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
	if got := nextDueDate(15, now); got != "2026-08-15" {
		t.Errorf("Expected 2026-08-15, got %s", got)
	}
	// On or after the due day: next month.
	now = time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	if got := nextDueDate(15, now); got != "2026-09-15" {
		t.Errorf("Expected 2026-09-15, got %s", got)
	}
	// December rollover.
	now = time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC)
	if got := nextDueDate(15, now); got != "2027-01-15" {
		t.Errorf("Expected 2027-01-15, got %s", got)
	}
	// Day the month doesn't have: clamp to last day.
	now = time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	if got := nextDueDate(31, now); got != "2026-02-28" {
		t.Errorf("Expected 2026-02-28, got %s", got)
	}
}
