package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&Permission{},
		&Profile{},
		&User{},
		&Customer{},
		&Gadget{},
		&RepairTransaction{},
		&CostLog{},
		&Payment{},
		&Receipt{},
		&ReceiptSequence{},
		&Notification{},
	}
}
