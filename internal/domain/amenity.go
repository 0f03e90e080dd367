package domain

import "strings"

// Amenity is a feature places can offer. Names are unique ignoring case.
type Amenity struct {
	Meta
	Name        string
	Description string
}

func NewAmenity(name, description string) (*Amenity, error) {
	name = strings.TrimSpace(name)
	if err := ValidateAmenityName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	return &Amenity{Name: name, Description: description}, nil
}

func (a *Amenity) Matches(attr string, value any) (bool, error) {
	switch attr {
	case "id":
		return matchString(value, a.ID, false), nil
	case "name":
		return matchString(value, a.Name, true), nil
	default:
		return false, unknownAttribute("amenity", attr)
	}
}

func (a *Amenity) Clone() *Amenity {
	c := *a
	return &c
}

type AmenityPatch struct {
	Name        *string
	Description *string
}

func (p AmenityPatch) Validate() error {
	if p.Name != nil {
		if err := ValidateAmenityName(*p.Name); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	return nil
}

func (p AmenityPatch) Apply(a *Amenity) {
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
}
