package models

import (
	"housefinder/numeric"
)

// Property is a single rental listing as returned by the recommendation API.
// Instances are never mutated in place; coordinate canonicalization copies.
type Property struct {
	PropertyID      int             `json:"property_id"`
	ImgSrc          string          `json:"img_src"`
	Name            string          `json:"name"`
	District        string          `json:"district"`
	Price           string          `json:"price"`
	Beds            int             `json:"beds"`
	Baths           int             `json:"baths"`
	Area            int             `json:"area"`
	BuildTime       string          `json:"build_time"`
	Location        string          `json:"location"`
	TimeToSchool    int             `json:"time_to_school"`
	DistanceToMRT   int             `json:"distance_to_mrt"`
	Latitude        numeric.Decimal `json:"latitude"`
	Longitude       numeric.Decimal `json:"longitude"`
	Facilities      []Facility      `json:"public_facilities"`
	FacilityType    string          `json:"facility_type"`
	RecommendReason string          `json:"recommend_reason"`
}

// Facility is a named nearby amenity with its distance in meters.
type Facility struct {
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

// HasCoordinates reports whether both coordinates carry a usable value.
func (p *Property) HasCoordinates() bool {
	return !p.Latitude.IsZero() && !p.Longitude.IsZero()
}

// Recommendations is an ordered result set. TotalCount is reported by the
// server and may exceed len(Properties).
type Recommendations struct {
	Properties []Property `json:"properties"`
	TotalCount int        `json:"total_count"`
}

// CanonicalizeCoordinates returns a fresh slice in which every latitude and
// longitude has been rebuilt as a canonical decimal. The input is not touched.
func CanonicalizeCoordinates(props []Property) []Property {
	if props == nil {
		return nil
	}
	out := make([]Property, len(props))
	for i, p := range props {
		p.Latitude = numeric.NewDecimal(numeric.ToDecimal(p.Latitude))
		p.Longitude = numeric.NewDecimal(numeric.ToDecimal(p.Longitude))
		out[i] = p
	}
	return out
}

// MapRequest asks the backend to render an embeddable map fragment.
type MapRequest struct {
	PropertyID int             `json:"property_id"`
	Latitude   numeric.Decimal `json:"latitude"`
	Longitude  numeric.Decimal `json:"longitude"`
}

// MapDocument wraps the opaque HTML text of a map fragment.
type MapDocument struct {
	HTML string `json:"html"`
}
