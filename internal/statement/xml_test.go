package statement

import (
	"testing"

	"github.com/shopspring/decimal"
)

const sampleXML = `<?xml version="1.0" encoding="utf-8"?>
<statement>
	<summary>
		<issuer>BBVA</issuer>
		<cardName>Oro</cardName>
		<last4>4421</last4>
		<dueDate>2026-09-05</dueDate>
		<minimumPayment>$ 450.00</minimumPayment>
		<noInterestPayment>3,200.00</noInterestPayment>
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
			<amount>842.50</amount>
		</movement>
	</movements>
</statement>`

func TestParseXML(t *testing.T) {
	extract, err := ParseXML([]byte(sampleXML))
	if err != nil {
		t.Fatalf("Failed to parse statement: %v", err)
	}

	if extract.Summary == nil {
		t.Fatal("Expected a summary block")
	}
	if extract.Summary.Issuer != "BBVA" || extract.Summary.Last4 != "4421" {
		t.Errorf("Unexpected summary: %+v", extract.Summary)
	}
	if !extract.Summary.MinimumPayment.Equal(decimal.NewFromFloat(450.00)) {
		t.Errorf("Expected minimum payment 450.00, got %s", extract.Summary.MinimumPayment)
	}
	if !extract.Summary.NoInterestPayment.Equal(decimal.NewFromFloat(3200.00)) {
		t.Errorf("Expected no-interest payment 3200.00, got %s", extract.Summary.NoInterestPayment)
	}

	if len(extract.Transactions) != 2 {
		t.Fatalf("Expected 2 movements, got %d", len(extract.Transactions))
	}
	msi := extract.Transactions[0]
	if msi.Installments != 12 || msi.MonthsPaid != 3 {
		t.Errorf("Expected 12 installments with 3 paid, got %d/%d", msi.MonthsPaid, msi.Installments)
	}
	if extract.Transactions[1].Category != "Other" {
		t.Errorf("Expected default category Other, got %q", extract.Transactions[1].Category)
	}
}

func TestParseXML_Invalid(t *testing.T) {
	if _, err := ParseXML([]byte("<unrelated/>")); err == nil {
		t.Fatal("Expected error for XML without a statement element")
	}
	if _, err := ParseXML([]byte("not xml at all <<")); err == nil {
		t.Fatal("Expected error for malformed XML")
	}
}
