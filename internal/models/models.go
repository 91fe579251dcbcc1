// Package models defines the domain models for the application.
package models

import (
	"time"
)

// PricePer is the unit a category price applies to.
type PricePer string

const (
	PricePerUnit     PricePer = "UNIT"
	PricePerKilogram PricePer = "KILOGRAM"
)

// Valid reports whether p is a known unit.
func (p PricePer) Valid() bool {
	return p == PricePerUnit || p == PricePerKilogram
}

// LocationOSMType is the OpenStreetMap element type of a shop.
type LocationOSMType string

const (
	LocationOSMNode     LocationOSMType = "NODE"
	LocationOSMWay      LocationOSMType = "WAY"
	LocationOSMRelation LocationOSMType = "RELATION"
)

// Valid reports whether t is a known element type.
func (t LocationOSMType) Valid() bool {
	switch t {
	case LocationOSMNode, LocationOSMWay, LocationOSMRelation:
		return true
	}
	return false
}

// NutriscoreGrade is the Nutri-Score of a product.
type NutriscoreGrade string

const (
	NutriscoreA             NutriscoreGrade = "a"
	NutriscoreB             NutriscoreGrade = "b"
	NutriscoreC             NutriscoreGrade = "c"
	NutriscoreD             NutriscoreGrade = "d"
	NutriscoreE             NutriscoreGrade = "e"
	NutriscoreUnknown       NutriscoreGrade = "unknown"
	NutriscoreNotApplicable NutriscoreGrade = "not-applicable"
)

// NutriscoreGrades lists every grade in display order.
var NutriscoreGrades = []NutriscoreGrade{
	NutriscoreA, NutriscoreB, NutriscoreC, NutriscoreD, NutriscoreE,
	NutriscoreUnknown, NutriscoreNotApplicable,
}

// Valid reports whether g is a known grade.
func (g NutriscoreGrade) Valid() bool {
	for _, v := range NutriscoreGrades {
		if g == v {
			return true
		}
	}
	return false
}

// Product is a product identified by its barcode.
type Product struct {
	ID              int64            `json:"id"`
	Code            string           `json:"code"`
	ProductName     *string          `json:"product_name"`
	Brands          *string          `json:"brands"`
	CategoriesTags  Tags             `json:"categories_tags"`
	LabelsTags      Tags             `json:"labels_tags"`
	NutriscoreGrade *NutriscoreGrade `json:"nutriscore_grade"`
	PriceCount      int              `json:"price_count"`
	Created         time.Time        `json:"created"`
	Updated         time.Time        `json:"updated"`
}

// Price is a single price observation, either for a barcoded product or for
// a category of raw products.
type Price struct {
	ID                int64            `json:"id"`
	ProductCode       *string          `json:"product_code"`
	ProductName       *string          `json:"product_name"`
	ProductID         *int64           `json:"product_id"`
	CategoryTag       *string          `json:"category_tag"`
	LabelsTags        Tags             `json:"labels_tags"`
	OriginsTags       Tags             `json:"origins_tags"`
	Price             float64          `json:"price"`
	PriceIsDiscounted bool             `json:"price_is_discounted"`
	PricePer          *PricePer        `json:"price_per"`
	Currency          string           `json:"currency"`
	LocationOSMID     *int64           `json:"location_osm_id"`
	LocationOSMType   *LocationOSMType `json:"location_osm_type"`
	Date              *string          `json:"date"` // YYYY-MM-DD
	Owner             *string          `json:"owner"`
	Created           time.Time        `json:"created"`
	Updated           time.Time        `json:"updated"`
}

// TotalStats holds the site-wide counters. There is a single row (ID 1).
type TotalStats struct {
	PriceCount                  int       `json:"price_count"`
	PriceTypeProductCodeCount   int       `json:"price_type_product_code_count"`
	PriceTypeCategoryTagCount   int       `json:"price_type_category_tag_count"`
	PriceCurrencyCount          int       `json:"price_currency_count"`
	ProductCount                int       `json:"product_count"`
	ProductWithPriceCount       int       `json:"product_with_price_count"`
	LocationCount               int       `json:"location_count"`
	LocationWithPriceCount      int       `json:"location_with_price_count"`
	LocationTypeOSMCountryCount int       `json:"location_type_osm_country_count"`
	ProofCount                  int       `json:"proof_count"`
	UserCount                   int       `json:"user_count"`
	Created                     time.Time `json:"created"`
	Updated                     time.Time `json:"updated"`
}
