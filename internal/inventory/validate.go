package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PartInput is the field bag decoded from a request body. Nil means the field
// was absent.
type PartInput struct {
	Name        *string
	Price       *decimal.Decimal
	Stock       *int
	Min         *int
	Max         *int
	Type        *string
	MachineID   *string
	CompanyName *string
}

// ProductInput is the product counterpart of PartInput.
type ProductInput struct {
	Name            *string
	Price           *decimal.Decimal
	Stock           *int
	Min             *int
	Max             *int
	AssociatedParts []AssociatedPartInput
}

// AssociatedPartInput is one decoded association entry.
type AssociatedPartInput struct {
	PartID *string
	Name   *string
}

// levelMessages holds the per-entity wording of the shared stock checks.
type levelMessages struct {
	name, price, stock, min, max string
	minBelowMax, maxAboveMin     string
}

var (
	partMessages = levelMessages{
		name:        "Part name is required",
		price:       "Part price is required",
		stock:       "Part stock is required",
		min:         "Part min is required",
		max:         "Part max is required",
		minBelowMax: "Min should be less than max",
		maxAboveMin: "Max should be greater than min",
	}
	productMessages = levelMessages{
		name:        "Product name is required",
		price:       "Product price is required",
		stock:       "Product stock is required",
		min:         "Minimum stock is required",
		max:         "Maximum stock is required",
		minBelowMax: "Min should be less than Max",
		maxAboveMin: "Max should be greater than Min",
	}
)

const (
	msgNegativePrice   = "Price must not be negative"
	msgPriceScale      = "Price must have at most 2 decimal places"
	msgPriceTooLarge   = "Price must be less than 10000000000"
	msgStockOutOfRange = "Stock must be between min and max values"
	msgTypeRequired    = "Part type is required"
	msgTypeInvalid     = "Part type must be InHouse or Outsourced"
	msgMachineID       = "InHouse parts must have a machine ID"
	msgCompanyName     = "Outsourced parts must have a company name"
)

// ValidatePart checks every rule on in and returns the normalized part, or a
// *ValidationError listing all violations.
//
// The field that does not belong to the chosen type is dropped before any
// check runs, so switching a part from InHouse to Outsourced clears its
// machine id instead of leaving it stale.
func ValidatePart(in PartInput) (Part, error) {
	errs := &errorSet{entity: EntityPart}
	name, price, levels := checkCommon(errs, partMessages, in.Name, in.Price, in.Stock, in.Min, in.Max)

	var src Source
	switch {
	case in.Type == nil || strings.TrimSpace(*in.Type) == "":
		errs.add("type", msgTypeRequired)
	case PartType(*in.Type) == InHouseType:
		id := trimmed(in.MachineID)
		if id == "" {
			errs.add("machineId", msgMachineID)
		}
		src = InHouse{MachineID: id}
	case PartType(*in.Type) == OutsourcedType:
		company := trimmed(in.CompanyName)
		if company == "" {
			errs.add("companyName", msgCompanyName)
		}
		src = Outsourced{CompanyName: company}
	default:
		errs.add("type", msgTypeInvalid)
	}

	if err := errs.err(); err != nil {
		return Part{}, err
	}
	return Part{Name: name, Price: price, Levels: levels, Source: src}, nil
}

// ValidateProduct checks every rule on in. Associated parts are checked for
// shape only; whether the referenced parts exist is not this function's
// concern.
func ValidateProduct(in ProductInput) (Product, error) {
	errs := &errorSet{entity: EntityProduct}
	name, price, levels := checkCommon(errs, productMessages, in.Name, in.Price, in.Stock, in.Min, in.Max)

	refs := make([]AssociatedPart, 0, len(in.AssociatedParts))
	for i, ap := range in.AssociatedParts {
		partID, partName := trimmed(ap.PartID), trimmed(ap.Name)
		if partID == "" {
			errs.add(fmt.Sprintf("associatedParts[%d].partId", i),
				fmt.Sprintf("Associated part %d must have a partId", i))
		}
		if partName == "" {
			errs.add(fmt.Sprintf("associatedParts[%d].name", i),
				fmt.Sprintf("Associated part %d must have a name", i))
		}
		refs = append(refs, AssociatedPart{PartID: partID, Name: partName})
	}

	if err := errs.err(); err != nil {
		return Product{}, err
	}
	return Product{Name: name, Price: price, Levels: levels, AssociatedParts: refs}, nil
}

// PriceScale is the number of decimal places a price may carry. Prices are
// stored as numeric(12,2).
const PriceScale = 2

var maxPrice = decimal.New(1, 10)

func checkCommon(errs *errorSet, m levelMessages, name *string, price *decimal.Decimal, stock, min, max *int) (string, decimal.Decimal, Levels) {
	n := trimmed(name)
	if n == "" {
		errs.add("name", m.name)
	}

	var p decimal.Decimal
	switch {
	case price == nil:
		errs.add("price", m.price)
	case price.IsNegative():
		errs.add("price", msgNegativePrice)
	case !price.Equal(price.Round(PriceScale)):
		errs.add("price", msgPriceScale)
	case price.GreaterThanOrEqual(maxPrice):
		errs.add("price", msgPriceTooLarge)
	default:
		p = *price
	}

	if stock == nil {
		errs.add("stock", m.stock)
	}
	if min == nil {
		errs.add("min", m.min)
	}
	if max == nil {
		errs.add("max", m.max)
	}

	var lv Levels
	if min != nil && max != nil {
		lv.Min, lv.Max = *min, *max
		if lv.Min >= lv.Max {
			errs.add("min", m.minBelowMax)
			errs.add("max", m.maxAboveMin)
		}
	}
	if stock != nil {
		lv.Stock = *stock
		if min != nil && max != nil && (lv.Stock < lv.Min || lv.Stock > lv.Max) {
			errs.add("stock", msgStockOutOfRange)
		}
	}
	return n, p, lv
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
