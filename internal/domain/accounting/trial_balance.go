package accounting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DiscrepancyTolerance is the gap above which an imbalance is critical
var DiscrepancyTolerance = decimal.NewFromFloat(0.01)

// AccountBalance is the movement of one account over a period
type AccountBalance struct {
	Account string          `json:"account"`
	Label   string          `json:"label"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"` // debit - credit
}

// TrialBalance (balance générale) lists every account with its totals
type TrialBalance struct {
	From        *time.Time       `json:"from,omitempty"`
	To          *time.Time       `json:"to,omitempty"`
	Accounts    []AccountBalance `json:"accounts"`
	TotalDebit  decimal.Decimal  `json:"total_debit"`
	TotalCredit decimal.Decimal  `json:"total_credit"`
	Difference  decimal.Decimal  `json:"difference"`
	Balanced    bool             `json:"balanced"`
	Critical    bool             `json:"critical"`
	EntryCount  int              `json:"entry_count"`
}

// ComputeTrialBalance aggregates entries per account
func ComputeTrialBalance(entries []JournalEntry, from, to *time.Time) TrialBalance {
	byAccount := make(map[string]*AccountBalance)
	for _, e := range entries {
		for _, l := range e.Lines {
			ab, ok := byAccount[l.Account]
			if !ok {
				ab = &AccountBalance{Account: l.Account, Label: AccountLabel(l.Account), Debit: decimal.Zero, Credit: decimal.Zero}
				byAccount[l.Account] = ab
			}
			ab.Debit = ab.Debit.Add(l.Debit)
			ab.Credit = ab.Credit.Add(l.Credit)
		}
	}

	tb := TrialBalance{
		From:        from,
		To:          to,
		Accounts:    make([]AccountBalance, 0, len(byAccount)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		EntryCount:  len(entries),
	}
	for _, ab := range byAccount {
		ab.Balance = ab.Debit.Sub(ab.Credit)
		tb.TotalDebit = tb.TotalDebit.Add(ab.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(ab.Credit)
		tb.Accounts = append(tb.Accounts, *ab)
	}
	sort.Slice(tb.Accounts, func(i, j int) bool {
		return tb.Accounts[i].Account < tb.Accounts[j].Account
	})

	tb.Difference = tb.TotalDebit.Sub(tb.TotalCredit)
	tb.Balanced = tb.Difference.IsZero()
	tb.Critical = tb.Difference.Abs().GreaterThan(DiscrepancyTolerance)
	return tb
}

// BalanceOf returns the balance of one account, zero if absent
func (tb TrialBalance) BalanceOf(account string) decimal.Decimal {
	for _, ab := range tb.Accounts {
		if ab.Account == account {
			return ab.Balance
		}
	}
	return decimal.Zero
}
