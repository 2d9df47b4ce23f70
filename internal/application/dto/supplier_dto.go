package dto

import "time"

// CreateSupplierRequest alta de proveedor.
type CreateSupplierRequest struct {
	CNPJ             string  `json:"cnpj" validate:"required,len=14,numeric"`
	Name             string  `json:"name" validate:"required,min=1,max=100"`
	ReturnPolicyDays int     `json:"return_policy_days" validate:"gte=0"`
	Contact          *string `json:"contact" validate:"omitempty,max=200"`
}

// UpdateSupplierRequest actualización parcial de proveedor.
type UpdateSupplierRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=100"`
	ReturnPolicyDays *int    `json:"return_policy_days" validate:"omitempty,gte=0"`
	Contact          *string `json:"contact" validate:"omitempty,max=200"`
}

// SupplierResponse salida de proveedor.
type SupplierResponse struct {
	CNPJ             string    `json:"cnpj"`
	Name             string    `json:"name"`
	ReturnPolicyDays int       `json:"return_policy_days"`
	Contact          *string   `json:"contact"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
