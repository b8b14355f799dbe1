// Package statement parses bank statement exports uploaded as XML. Banks
// that offer a structured download use this path instead of the AI extractor.
package statement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/jparedesmx/cartera/internal/models"
	"github.com/shopspring/decimal"
)

// ParseXML reads an XML statement export into a StatementExtract. Expected
// shape: a <statement> root with a <summary> block and a <movements> list.
func ParseXML(raw []byte) (*models.StatementExtract, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := doc.FindElement("//statement")
	if root == nil {
		return nil, fmt.Errorf("no statement element found in XML")
	}

	extract := &models.StatementExtract{}
	if summary := root.FindElement("./summary"); summary != nil {
		extract.Summary = &models.StatementSummary{
			Issuer:            childText(summary, "issuer"),
			CardName:          childText(summary, "cardName"),
			Last4:             childText(summary, "last4"),
			DueDate:           childText(summary, "dueDate"),
			MinimumPayment:    childDecimal(summary, "minimumPayment"),
			NoInterestPayment: childDecimal(summary, "noInterestPayment"),
			TotalBalance:      childDecimal(summary, "totalBalance"),
			CreditLimit:       childDecimal(summary, "creditLimit"),
			CAT:               childDecimal(summary, "cat"),
		}
	}

	for _, movement := range root.FindElements("./movements/movement") {
		tx := models.ExtractedTransaction{
			Date:         childText(movement, "date"),
			Description:  childText(movement, "description"),
			Category:     childText(movement, "category"),
			Amount:       childDecimal(movement, "amount"),
			Installments: attrInt(movement, "installments"),
			MonthsPaid:   attrInt(movement, "monthsPaid"),
		}
		if tx.Category == "" {
			tx.Category = "Other"
		}
		extract.Transactions = append(extract.Transactions, tx)
	}

	if extract.Summary == nil && len(extract.Transactions) == 0 {
		return nil, fmt.Errorf("statement XML contains no summary or movements")
	}
	return extract, nil
}

func childText(parent *etree.Element, name string) string {
	el := parent.FindElement("./" + name)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func childDecimal(parent *etree.Element, name string) decimal.Decimal {
	text := childText(parent, name)
	if text == "" {
		return decimal.Zero
	}
	// Normalize "$ 1,450.50" style amounts.
	text = strings.NewReplacer("$", "", ",", "", " ", "").Replace(text)
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func attrInt(el *etree.Element, name string) int {
	attr := el.SelectAttrValue(name, "")
	if attr == "" {
		return 0
	}
	n, err := strconv.Atoi(attr)
	if err != nil {
		return 0
	}
	return n
}
