package catalog

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	catalogEntity "farmstore.GO/model/entity/catalog"
	catalogService "farmstore.GO/service/catalog"
)

// ToRecord converts a stored product (with options preloaded) to a record.
func ToRecord(p *catalogEntity.Product) (catalogService.Record, error) {
	var images []string
	if len(p.Images) > 0 {
		if err := json.Unmarshal(p.Images, &images); err != nil {
			return nil, fmt.Errorf("images: %w", err)
		}
	}

	if p.Kind == catalogEntity.KindWeight {
		w := &catalogService.WeightProduct{
			ID:     p.ProductID,
			Name:   p.Name,
			Image:  p.Image,
			Images: images,
		}
		for _, c := range p.SizeCategories {
			w.SizeCategories = append(w.SizeCategories, catalogService.SizeCategory{
				ID:                   c.Code,
				Label:                c.Label,
				PricePerKg:           c.PricePerKg,
				Stock:                c.Stock,
				Status:               c.Status,
				MinWeight:            c.MinWeight,
				MaxWeight:            c.MaxWeight,
				MeasurementIncrement: c.MeasurementIncrement,
			})
		}
		if p.PriceMin != nil {
			w.PriceRange = &catalogService.UpstreamPriceRange{Min: p.PriceMin, Max: p.PriceMax}
		}
		return w, nil
	}

	u := &catalogService.UnitProduct{
		ID:     p.ProductID,
		Name:   p.Name,
		Image:  p.Image,
		Images: images,
		Price:  p.Price,
		Stock:  p.Stock,
	}
	for _, v := range p.Variants {
		u.Variants = append(u.Variants, catalogService.Variant{
			ID:        v.Code,
			Label:     v.Label,
			Price:     v.Price,
			SalePrice: v.SalePrice,
			Stock:     v.Stock,
			Status:    v.Status,
		})
	}
	if len(p.VariantSummary) > 0 {
		var s catalogService.VariantSummary
		if err := json.Unmarshal(p.VariantSummary, &s); err != nil {
			return nil, fmt.Errorf("variant summary: %w", err)
		}
		u.VariantSummary = &s
	}
	return u, nil
}

// FromRecord converts a record to a storable product with its options.
func FromRecord(rec catalogService.Record) (*catalogEntity.Product, error) {
	switch r := rec.(type) {
	case *catalogService.WeightProduct:
		p := &catalogEntity.Product{ProductID: r.ID, Kind: catalogEntity.KindWeight, Name: r.Name, Image: r.Image}
		if err := setImages(p, r.Images); err != nil {
			return nil, err
		}
		if r.PriceRange != nil {
			p.PriceMin, p.PriceMax = r.PriceRange.Min, r.PriceRange.Max
		}
		for i, c := range r.SizeCategories {
			p.SizeCategories = append(p.SizeCategories, catalogEntity.SizeCategory{
				Code:                 c.ID,
				Label:                c.Label,
				PricePerKg:           c.PricePerKg,
				Stock:                c.Stock,
				Status:               c.Status,
				MinWeight:            c.MinWeight,
				MaxWeight:            c.MaxWeight,
				MeasurementIncrement: c.MeasurementIncrement,
				Position:             i,
			})
		}
		return p, nil
	case *catalogService.UnitProduct:
		p := &catalogEntity.Product{ProductID: r.ID, Kind: catalogEntity.KindUnit, Name: r.Name, Image: r.Image, Price: r.Price, Stock: r.Stock}
		if err := setImages(p, r.Images); err != nil {
			return nil, err
		}
		if r.VariantSummary != nil {
			b, err := json.Marshal(r.VariantSummary)
			if err != nil {
				return nil, err
			}
			p.VariantSummary = datatypes.JSON(b)
		}
		for i, v := range r.Variants {
			p.Variants = append(p.Variants, catalogEntity.Variant{
				Code:      v.ID,
				Label:     v.Label,
				Price:     v.Price,
				SalePrice: v.SalePrice,
				Stock:     v.Stock,
				Status:    v.Status,
				Position:  i,
			})
		}
		return p, nil
	}
	return nil, fmt.Errorf("unsupported record type %T", rec)
}

func setImages(p *catalogEntity.Product, images []string) error {
	if len(images) == 0 {
		return nil
	}
	b, err := json.Marshal(images)
	if err != nil {
		return err
	}
	p.Images = datatypes.JSON(b)
	return nil
}
