package inventory

import (
	"strings"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/pkg/textnorm"
)

func batchSpec(in dto.CreateBatchRequest) entity.BatchSpec {
	return entity.BatchSpec{
		Code:            in.BatchCode,
		ManufactureDate: in.ManufactureDate.Time,
		ExpiryDate:      in.ExpiryDate.TimePtr(),
		ShelfLifeMonths: in.ShelfLifeMonths,
		Quantity:        in.Quantity,
		Active:          in.Active,
	}
}

// applyProductChanges copia los campos presentes. El precio se aplica aparte (SetUnitPrice).
func applyProductChanges(p *entity.Product, in dto.UpdateProductRequest) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
		p.NameKey = textnorm.Key(p.Name)
		p.RegistrationPending = false
	}
	if in.EAN != nil {
		p.EAN = in.EAN
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.SpecSheetURL != nil {
		p.SpecSheetURL = *in.SpecSheetURL
	}
	if in.ProductURL != nil {
		p.ProductURL = *in.ProductURL
	}
	if in.Color != nil {
		p.Color = *in.Color
	}
	if in.AVS != nil {
		p.AVS = *in.AVS
	}
	if in.ReportedStock != nil {
		p.ReportedStock = in.ReportedStock
	}
	if in.SectionCode != nil {
		p.SectionCode = *in.SectionCode
	}
	if in.SectionName != nil {
		p.SectionName = *in.SectionName
	}
	if in.SubsectionCode != nil {
		p.SubsectionCode = *in.SubsectionCode
	}
	if in.SubsectionName != nil {
		p.SubsectionName = *in.SubsectionName
	}
	if in.SupplierCNPJ != nil {
		p.SupplierCNPJ = in.SupplierCNPJ
	}
}

func toProductResponse(p *entity.Product, supplierName *string) *dto.ProductResponse {
	out := &dto.ProductResponse{
		ProductKey:          p.Key,
		Name:                p.Name,
		EAN:                 p.EAN,
		Brand:               p.Brand,
		SpecSheetURL:        p.SpecSheetURL,
		ProductURL:          p.ProductURL,
		Color:               p.Color,
		AVS:                 p.AVS,
		UnitPrice:           p.UnitPrice,
		ReportedStock:       p.ReportedStock,
		CalculatedStock:     p.CalculatedStock,
		StockValue:          p.StockValue().Round(2),
		StockDiscrepancy:    p.StockDiscrepancy(),
		SectionCode:         p.SectionCode,
		SectionName:         p.SectionName,
		SubsectionCode:      p.SubsectionCode,
		SubsectionName:      p.SubsectionName,
		SupplierCNPJ:        p.SupplierCNPJ,
		SupplierName:        supplierName,
		RegistrationPending: p.RegistrationPending,
		Batches:             make([]dto.BatchResponse, 0, len(p.Batches)),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if v, ok := p.ReportedValue(); ok {
		v = v.Round(2)
		out.ReportedValue = &v
	}
	for _, b := range p.Batches {
		out.Batches = append(out.Batches, toBatchResponse(b))
	}
	return out
}

func toBatchResponse(b *entity.Batch) dto.BatchResponse {
	return dto.BatchResponse{
		BatchCode:       b.Code,
		ManufactureDate: b.ManufactureDate,
		ExpiryDate:      b.ExpiryDate,
		ShelfLifeMonths: b.ShelfLifeMonths,
		Quantity:        b.Quantity,
		Active:          b.Active,
		StatusChangedAt: b.StatusChangedAt,
		UnitValue:       b.UnitValue.Round(2),
		LossReason:      b.LossReason,
	}
}
