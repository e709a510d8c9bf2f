package accounting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Source types recorded on automatic entries
const (
	SourceInvoice       = "INVOICE"
	SourcePayment       = "PAYMENT"
	SourceSupplierOrder = "SUPPLIER_ORDER"
	SourceManual        = "MANUAL"
)

// SalesEntry posts an issued invoice:
// 411 debit TTC, 706 credit HT, 44571 credit VAT.
func SalesEntry(tenantID, invoiceID uuid.UUID, number string, date time.Time, totalHT, totalVAT, totalTTC decimal.Decimal) (*JournalEntry, error) {
	label := fmt.Sprintf("Facture %s", number)
	entry, err := NewJournalEntry(tenantID, JournalSales, date, label, []EntryLine{
		Debit(AccountClients, totalTTC, label),
		Credit(AccountSalesWorks, totalHT, label),
		Credit(AccountVATCollect, totalVAT, label),
	})
	if err != nil {
		return nil, err
	}
	return entry.FromSource(SourceInvoice, invoiceID), nil
}

// SalesReversalEntry cancels the sales entry of a cancelled invoice
func SalesReversalEntry(tenantID, invoiceID uuid.UUID, number string, date time.Time, totalHT, totalVAT, totalTTC decimal.Decimal) (*JournalEntry, error) {
	label := fmt.Sprintf("Annulation facture %s", number)
	entry, err := NewJournalEntry(tenantID, JournalSales, date, label, []EntryLine{
		Credit(AccountClients, totalTTC, label),
		Debit(AccountSalesWorks, totalHT, label),
		Debit(AccountVATCollect, totalVAT, label),
	})
	if err != nil {
		return nil, err
	}
	return entry.FromSource(SourceInvoice, invoiceID), nil
}

// PaymentEntry posts a client payment: treasury debit, 411 credit.
// Cash goes to 530, everything else to 512.
func PaymentEntry(tenantID, invoiceID uuid.UUID, number string, date time.Time, amount decimal.Decimal, cash bool) (*JournalEntry, error) {
	label := fmt.Sprintf("Règlement facture %s", number)
	treasury := AccountBank
	if cash {
		treasury = AccountCash
	}
	entry, err := NewJournalEntry(tenantID, JournalBank, date, label, []EntryLine{
		Debit(treasury, amount, label),
		Credit(AccountClients, amount, label),
	})
	if err != nil {
		return nil, err
	}
	return entry.FromSource(SourcePayment, invoiceID), nil
}

// PurchaseEntry posts a received supplier order:
// 607 debit HT, 44566 debit VAT, 401 credit TTC.
func PurchaseEntry(tenantID, orderID uuid.UUID, number string, date time.Time, totalHT, totalVAT, totalTTC decimal.Decimal) (*JournalEntry, error) {
	label := fmt.Sprintf("Commande fournisseur %s", number)
	entry, err := NewJournalEntry(tenantID, JournalPurchases, date, label, []EntryLine{
		Debit(AccountPurchases, totalHT, label),
		Debit(AccountVATOnBuys, totalVAT, label),
		Credit(AccountSuppliers, totalTTC, label),
	})
	if err != nil {
		return nil, err
	}
	return entry.FromSource(SourceSupplierOrder, orderID), nil
}
