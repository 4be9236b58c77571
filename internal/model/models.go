package model

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Admin{},
		&Tenant{},
		&Payment{},
		&Complaint{},
	}
}
