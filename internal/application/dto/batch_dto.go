package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBatchRequest entrada para registrar un lote. Debe venir expiry_date o shelf_life_months;
// si vienen ambos manda expiry_date.
type CreateBatchRequest struct {
	BatchCode       string `json:"batch_code" validate:"required,max=64"`
	ManufactureDate Date   `json:"manufacture_date"`
	ExpiryDate      *Date  `json:"expiry_date"`
	ShelfLifeMonths *int   `json:"shelf_life_months" validate:"omitempty,gt=0"`
	Quantity        int64  `json:"quantity" validate:"gte=0"`
	Active          *bool  `json:"active"`
}

// UpdateBatchRequest cambios parciales sobre un lote. El código no se puede cambiar.
type UpdateBatchRequest struct {
	ManufactureDate *Date   `json:"manufacture_date"`
	ExpiryDate      *Date   `json:"expiry_date"`
	ShelfLifeMonths *int    `json:"shelf_life_months" validate:"omitempty,gt=0"`
	Quantity        *int64  `json:"quantity" validate:"omitempty,gte=0"`
	Active          *bool   `json:"active"`
	LossReason      *string `json:"loss_reason" validate:"omitempty,max=200"`
}

// DeactivateBatchRequest cuerpo opcional de la baja lógica.
type DeactivateBatchRequest struct {
	LossReason *string `json:"loss_reason" validate:"omitempty,max=200"`
}

// BatchResponse salida de un lote.
type BatchResponse struct {
	BatchCode       string          `json:"batch_code"`
	ManufactureDate time.Time       `json:"manufacture_date"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	ShelfLifeMonths int             `json:"shelf_life_months"`
	Quantity        int64           `json:"quantity"`
	Active          bool            `json:"active"`
	StatusChangedAt time.Time       `json:"status_changed_at"`
	UnitValue       decimal.Decimal `json:"unit_value"`
	LossReason      *string         `json:"loss_reason,omitempty"`
}
