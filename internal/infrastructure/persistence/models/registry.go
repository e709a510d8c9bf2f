package models

// All returns every persisted model, in creation order
func All() []interface{} {
	return []interface{}{
		&ArtisanModel{},
		&UserModel{},
		&DocumentSequenceModel{},
		&ClientModel{},
		&QuoteModel{},
		&InvoiceModel{},
		&InterventionModel{},
		&SupplierModel{},
		&SupplierOrderModel{},
		&ReviewModel{},
		&NotificationModel{},
		&JournalEntryModel{},
		&ImportRunModel{},
	}
}
