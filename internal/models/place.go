// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package models

import (
	"strings"
	"time"
)

// PlaceType classifies a place. A place may have several types.
type PlaceType string

// Place types.
const (
	PlaceTypePlayground        PlaceType = "PLAYGROUND"
	PlaceTypeIndoorPlayground  PlaceType = "INDOOR_PLAYGROUND"
	PlaceTypeKindergarten      PlaceType = "KINDERGARTEN"
	PlaceTypeCafe              PlaceType = "CAFE"
	PlaceTypeRestaurant        PlaceType = "RESTAURANT"
	PlaceTypeShop              PlaceType = "SHOP"
	PlaceTypeAmusementPark     PlaceType = "AMUSEMENT_PARK"
	PlaceTypeMuseum            PlaceType = "MUSEUM"
	PlaceTypeGallery           PlaceType = "GALLERY"
	PlaceTypeZoo               PlaceType = "ZOO"
	PlaceTypeAquapark          PlaceType = "AQUAPARK"
	PlaceTypeCommunityCenter   PlaceType = "COMMUNITY_CENTER"
	PlaceTypeKidsPlayroom      PlaceType = "KIDS_PLAYROOM"
	PlaceTypeCastle            PlaceType = "CASTLE"
	PlaceTypeHotel             PlaceType = "HOTEL"
	PlaceTypeAttraction        PlaceType = "ATTRACTION"
	PlaceTypeNaturalAttraction PlaceType = "NATURAL_ATTRACTION"
)

// AllPlaceTypes lists every place type in display order.
var AllPlaceTypes = []PlaceType{
	PlaceTypePlayground,
	PlaceTypeIndoorPlayground,
	PlaceTypeKindergarten,
	PlaceTypeCafe,
	PlaceTypeRestaurant,
	PlaceTypeShop,
	PlaceTypeAmusementPark,
	PlaceTypeMuseum,
	PlaceTypeGallery,
	PlaceTypeZoo,
	PlaceTypeAquapark,
	PlaceTypeCommunityCenter,
	PlaceTypeKidsPlayroom,
	PlaceTypeCastle,
	PlaceTypeHotel,
	PlaceTypeAttraction,
	PlaceTypeNaturalAttraction,
}

var placeTypeSet = func() map[PlaceType]bool {
	m := make(map[PlaceType]bool, len(AllPlaceTypes))
	for _, t := range AllPlaceTypes {
		m[t] = true
	}
	return m
}()

// Valid reports whether t is a known place type.
func (t PlaceType) Valid() bool {
	return placeTypeSet[t]
}

// ParsePlaceType maps a lowercase or uppercase name to a PlaceType.
// sweet_shop is folded into SHOP.
func ParsePlaceType(s string) (PlaceType, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	if norm == "SWEET_SHOP" {
		return PlaceTypeShop, true
	}
	t := PlaceType(norm)
	return t, t.Valid()
}

// Season is when a place is worth visiting.
type Season string

// Seasons.
const (
	SeasonWinter Season = "WINTER"
	SeasonSummer Season = "SUMMER"
	SeasonAll    Season = "ALL"
)

// ParseSeason maps a case-insensitive season name to a Season.
func ParseSeason(s string) (Season, bool) {
	switch Season(strings.ToUpper(strings.TrimSpace(s))) {
	case SeasonWinter:
		return SeasonWinter, true
	case SeasonSummer:
		return SeasonSummer, true
	case SeasonAll:
		return SeasonAll, true
	default:
		return "", false
	}
}

// Place is a curated point of interest shown to users.
type Place struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Types           []PlaceType `json:"types"`
	Description     string      `json:"description"`
	Latitude        float64     `json:"latitude"`
	Longitude       float64     `json:"longitude"`
	CountryCode     string      `json:"country_code"`
	City            string      `json:"city"`
	Street          string      `json:"street"`
	ZipCode         string      `json:"zip_code"`
	MinAge          *int        `json:"min_age"`
	MaxAge          *int        `json:"max_age"`
	Website         string      `json:"website"`
	Note            string      `json:"note"`
	Season          *Season     `json:"season"`
	IsAdmissionFree *bool       `json:"is_admission_free"`
	IsVisible       bool        `json:"is_visible"`
	ScrapedPlaceID  *int64      `json:"scraped_place_id"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// HasType reports whether the place is tagged with t.
func (p *Place) HasType(t PlaceType) bool {
	for _, pt := range p.Types {
		if pt == t {
			return true
		}
	}
	return false
}

// PlaceInput is the body of POST and PUT /places.
type PlaceInput struct {
	Name            string      `json:"name" validate:"required,max=255"`
	Types           []PlaceType `json:"types" validate:"dive,placetype"`
	Description     string      `json:"description"`
	Latitude        float64     `json:"latitude" validate:"latitude"`
	Longitude       float64     `json:"longitude" validate:"longitude"`
	CountryCode     string      `json:"country_code" validate:"required,countrycode"`
	City            string      `json:"city" validate:"required,max=255"`
	Street          string      `json:"street" validate:"max=255"`
	ZipCode         string      `json:"zip_code" validate:"max=20"`
	MinAge          *int        `json:"min_age" validate:"omitempty,min=0,max=18"`
	MaxAge          *int        `json:"max_age" validate:"omitempty,min=0,max=18"`
	Website         string      `json:"website" validate:"omitempty,url,max=500"`
	Note            string      `json:"note"`
	Season          *Season     `json:"season" validate:"omitempty,season"`
	IsAdmissionFree *bool       `json:"is_admission_free"`
	IsVisible       *bool       `json:"is_visible"`
}

// ToPlace builds a Place from the input. Visibility defaults to true and
// admission to not free.
func (in *PlaceInput) ToPlace() *Place {
	p := &Place{
		Name:            strings.TrimSpace(in.Name),
		Types:           in.Types,
		Description:     in.Description,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		CountryCode:     strings.ToUpper(in.CountryCode),
		City:            in.City,
		Street:          in.Street,
		ZipCode:         in.ZipCode,
		MinAge:          in.MinAge,
		MaxAge:          in.MaxAge,
		Website:         in.Website,
		Note:            in.Note,
		Season:          in.Season,
		IsAdmissionFree: in.IsAdmissionFree,
		IsVisible:       true,
	}
	if p.Types == nil {
		p.Types = []PlaceType{}
	}
	if p.IsAdmissionFree == nil {
		f := false
		p.IsAdmissionFree = &f
	}
	if in.IsVisible != nil {
		p.IsVisible = *in.IsVisible
	}
	return p
}

// PlaceFilter narrows a place listing. Zero values mean "no filter".
type PlaceFilter struct {
	Type          PlaceType
	City          string
	CountryCodes  []string
	Age           *int
	Season        Season
	AdmissionFree *bool
	VisibleOnly   bool
	Search        string
	Limit         int
	Offset        int
}
