package entity

import "time"

// Supplier proveedor identificado por CNPJ (registro de claves simple).
type Supplier struct {
	CNPJ             string
	Name             string
	ReturnPolicyDays int
	Contact          *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
