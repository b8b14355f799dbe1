// Package gemini extracts card statements and answers finance questions via
// the Google GenAI API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/jparedesmx/cartera/internal/config"
	"github.com/jparedesmx/cartera/internal/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// ErrDisabled is returned when no API key is configured; callers fall back
// to non-AI statement handling.
var ErrDisabled = errors.New("gemini integration disabled")

const extractionPrompt = `You are a financial analyst extracting data from Mexican credit card statements (BBVA, Banamex, Santander, HSBC, Amex, Banorte, Nu). Return ONLY a valid JSON object with this structure:
{
  "statement_summary": {
    "issuer": "bank name",
    "card_name": "commercial name or empty string",
    "last4": "1234",
    "due_date": "YYYY-MM-DD",
    "minimum_payment": 0.0,
    "no_interest_payment": 0.0,
    "total_balance": 0.0,
    "credit_limit": 0.0,
    "cat": 0.0
  },
  "transactions": [
    {
      "date": "YYYY-MM-DD",
      "description": "clean description",
      "category": "Groceries|Dining|Travel|Utilities|Shopping|Gas|Health|Payment|Other",
      "amount": 150.0,
      "installments": 0,
      "months_paid": 0
    }
  ]
}
Rules: amounts are floats, charges positive and payments negative; dates ISO; for MSI plans marked "X de N" set installments=N and months_paid=X; for summary fields look for "Pago minimo", "Pago para no generar intereses", "Saldo total", "Fecha limite de pago", "CAT". Use 0 or empty string for anything not present. No text outside the JSON.`

const chatSystemPrompt = `You are a personal finance assistant for Mexican credit card users. Answer in the language of the question, concisely and grounded strictly in the financial context provided. Explain MSI (meses sin intereses) obligations clearly and never invent figures that are not in the context.`

// Client wraps the GenAI API for statement extraction and chat
type Client struct {
	apiKey string
	model  string
	log    *logrus.Logger
}

// NewClient initializes a new Gemini client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		apiKey: cfg.GeminiAPIKey,
		model:  cfg.GeminiModel,
		log:    log,
	}
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// ExtractStatement sends a PDF or image statement to Gemini and parses the
// JSON extraction. LLM output is mended with json-repair before unmarshaling
// since models occasionally emit trailing commas or markdown fences.
func (c *Client) ExtractStatement(ctx context.Context, content []byte, mimeType string) (*models.StatementExtract, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: extractionPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: content}},
		},
	}}
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}

	result, err := client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("statement extraction failed: %w", err)
	}

	raw := result.Text()
	c.log.Debugf("Gemini extraction response: %s", raw)

	repaired, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to repair extraction JSON: %w", err)
	}

	extract := &models.StatementExtract{}
	if err := json.Unmarshal([]byte(repaired), extract); err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}

	c.log.Infof("Gemini extracted %d transactions", len(extract.Transactions))
	return extract, nil
}

// Chat answers a user question grounded in their financial context
func (c *Client) Chat(ctx context.Context, question, financialContext string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	prompt := fmt.Sprintf("%s\n\n# Question\n%s", financialContext, question)
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.4)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: chatSystemPrompt}},
		},
	}

	result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}
	return result.Text(), nil
}
