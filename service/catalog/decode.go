package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// rawRecord is the union of every field either listing may send.
type rawRecord struct {
	ID             string              `mapstructure:"id"`
	Name           string              `mapstructure:"name"`
	Image          string              `mapstructure:"image"`
	Images         []string            `mapstructure:"images"`
	Price          float64             `mapstructure:"price"`
	Stock          float64             `mapstructure:"stock"`
	Variants       []Variant           `mapstructure:"variants"`
	VariantSummary *VariantSummary     `mapstructure:"variantSummary"`
	SizeCategories []SizeCategory      `mapstructure:"sizeCategories"`
	PriceRange     *UpstreamPriceRange `mapstructure:"priceRange"`
}

// lenientFloatHook turns anything that is not a usable number into 0 so that a
// bad price or stock never fails the whole record.
func lenientFloatHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.Float64 {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0.0, nil
			}
			return n, nil
		case bool, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return data, nil
		default:
			return 0.0, nil
		}
	}
}

// imageHook accepts image lists given as objects ({"url": ...}) as well as strings.
func imageHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.String {
			return data, nil
		}
		if m, ok := data.(map[string]interface{}); ok {
			for _, k := range []string{"url", "src", "path"} {
				if s, ok := m[k].(string); ok {
					return s, nil
				}
			}
			return "", nil
		}
		return data, nil
	}
}

var recordDecodeHook = mapstructure.ComposeDecodeHookFunc(
	lenientFloatHook(),
	imageHook(),
)

// DecodeRecord converts a raw listing entry (decoded JSON, BSON, etc.) into a
// Record. A record with a non-empty sizeCategories list becomes *WeightProduct,
// everything else *UnitProduct. Numeric fields are coerced; values that cannot
// be read as numbers become 0.
func DecodeRecord(raw map[string]interface{}) (Record, error) {
	if raw == nil {
		return nil, errors.New("catalog: nil record")
	}
	in := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		in[k] = v
	}
	if _, ok := in["id"]; !ok {
		if id, ok := in["_id"]; ok {
			in["id"] = id
		}
	}

	var rr rawRecord
	cfg := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       recordDecodeHook,
		Result:           &rr,
		TagName:          "mapstructure",
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(in); err != nil {
		return nil, fmt.Errorf("catalog: decode record %v: %w", in["id"], err)
	}

	if len(rr.SizeCategories) > 0 {
		return &WeightProduct{
			ID:             rr.ID,
			Name:           rr.Name,
			Image:          rr.Image,
			Images:         rr.Images,
			SizeCategories: rr.SizeCategories,
			PriceRange:     rr.PriceRange,
		}, nil
	}
	return &UnitProduct{
		ID:             rr.ID,
		Name:           rr.Name,
		Image:          rr.Image,
		Images:         rr.Images,
		Price:          rr.Price,
		Stock:          rr.Stock,
		Variants:       rr.Variants,
		VariantSummary: rr.VariantSummary,
	}, nil
}

// DecodeRecords decodes a listing page. Entries that fail are skipped and
// reported as warnings.
func DecodeRecords(raws []map[string]interface{}) ([]Record, []string) {
	out := make([]Record, 0, len(raws))
	var warnings []string
	for i, raw := range raws {
		r, err := DecodeRecord(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		out = append(out, r)
	}
	return out, warnings
}
