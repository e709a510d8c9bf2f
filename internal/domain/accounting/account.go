package accounting

// Chart of accounts used by automatic postings (French PCG)
const (
	AccountSuppliers   = "401"   // Fournisseurs
	AccountClients     = "411"   // Clients
	AccountVATOnBuys   = "44566" // TVA déductible sur autres biens et services
	AccountVATCollect  = "44571" // TVA collectée
	AccountBank        = "512"   // Banque
	AccountCash        = "530"   // Caisse
	AccountPurchases   = "607"   // Achats de marchandises
	AccountSalesWorks  = "706"   // Prestations de services
	AccountMiscExpense = "658"   // Charges diverses de gestion courante
)

var accountLabels = map[string]string{
	AccountSuppliers:   "Fournisseurs",
	AccountClients:     "Clients",
	AccountVATOnBuys:   "TVA déductible",
	AccountVATCollect:  "TVA collectée",
	AccountBank:        "Banque",
	AccountCash:        "Caisse",
	AccountPurchases:   "Achats de marchandises",
	AccountSalesWorks:  "Prestations de services",
	AccountMiscExpense: "Charges diverses",
}

// AccountLabel returns the label of a known account, or the account number itself
func AccountLabel(account string) string {
	if label, ok := accountLabels[account]; ok {
		return label
	}
	return account
}

// IsValidAccount checks the account number shape: 3 to 8 digits, class 1 to 7
func IsValidAccount(account string) bool {
	if len(account) < 3 || len(account) > 8 {
		return false
	}
	for _, r := range account {
		if r < '0' || r > '9' {
			return false
		}
	}
	return account[0] >= '1' && account[0] <= '7'
}
