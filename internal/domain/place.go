package domain

import "slices"

// Place is a rentable listing owned by exactly one user.
type Place struct {
	Meta
	Title       string
	Description string
	Price       float64
	Latitude    *float64
	Longitude   *float64
	OwnerID     string
	AmenityIDs  []string
}

// NewPlace validates a place at construction time. Coordinates are optional,
// but each one supplied must be in range.
func NewPlace(title, description string, price float64, latitude, longitude *float64, ownerID string, amenityIDs []string) (*Place, error) {
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	if err := validateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}
	if err := validateID("owner_id", ownerID); err != nil {
		return nil, err
	}
	return &Place{
		Title:       title,
		Description: description,
		Price:       price,
		Latitude:    copyFloat(latitude),
		Longitude:   copyFloat(longitude),
		OwnerID:     ownerID,
		AmenityIDs:  UniqueIDs(amenityIDs),
	}, nil
}

func validateCoordinates(latitude, longitude *float64) error {
	if latitude != nil {
		if err := ValidateLatitude(*latitude); err != nil {
			return err
		}
	}
	if longitude != nil {
		if err := ValidateLongitude(*longitude); err != nil {
			return err
		}
	}
	return nil
}

// HasAmenity reports whether the place references the amenity.
func (p *Place) HasAmenity(amenityID string) bool {
	return slices.Contains(p.AmenityIDs, amenityID)
}

func (p *Place) Matches(attr string, value any) (bool, error) {
	switch attr {
	case "id":
		return matchString(value, p.ID, false), nil
	case "owner_id":
		return matchString(value, p.OwnerID, false), nil
	case "title":
		return matchString(value, p.Title, false), nil
	case "amenity_id":
		s, ok := value.(string)
		return ok && p.HasAmenity(s), nil
	default:
		return false, unknownAttribute("place", attr)
	}
}

func (p *Place) Clone() *Place {
	c := *p
	c.Latitude = copyFloat(p.Latitude)
	c.Longitude = copyFloat(p.Longitude)
	c.AmenityIDs = slices.Clone(p.AmenityIDs)
	return &c
}

// PlacePatch lists the mutable place fields. OwnerID is only set by an ownership transfer.
type PlacePatch struct {
	Title       *string
	Description *string
	Price       *float64
	Latitude    *float64
	Longitude   *float64
	OwnerID     *string
	AmenityIDs  *[]string
}

func (p PlacePatch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := ValidatePrice(*p.Price); err != nil {
			return err
		}
	}
	if err := validateCoordinates(p.Latitude, p.Longitude); err != nil {
		return err
	}
	if p.OwnerID != nil {
		if err := validateID("owner_id", *p.OwnerID); err != nil {
			return err
		}
	}
	return nil
}

func (p PlacePatch) Apply(place *Place) {
	if p.Title != nil {
		place.Title = *p.Title
	}
	if p.Description != nil {
		place.Description = *p.Description
	}
	if p.Price != nil {
		place.Price = *p.Price
	}
	if p.Latitude != nil {
		place.Latitude = copyFloat(p.Latitude)
	}
	if p.Longitude != nil {
		place.Longitude = copyFloat(p.Longitude)
	}
	if p.OwnerID != nil {
		place.OwnerID = *p.OwnerID
	}
	if p.AmenityIDs != nil {
		place.AmenityIDs = UniqueIDs(*p.AmenityIDs)
	}
}

// UniqueIDs drops blanks and duplicates while keeping first-seen order.
func UniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
