package models

type Cart struct {
	Lines []*CartLine
	Total float64
	Count int32
}

type CartLine struct {
	ProductID string
	OptionID  *string
	Quantity  float64
	UnitPrice float64
	PriceKind string
	LineTotal float64
}
