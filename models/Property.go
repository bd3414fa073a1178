package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

const (
	PropertyTypeRent = "rent"
	PropertyTypeSale = "sale"
)

type Property struct {
	gorm.Model
	OwnerID     uint    `json:"ownerID" gorm:"not null;index"`
	Title       string  `json:"title" gorm:"size:200;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Type        string  `json:"type" gorm:"type:varchar(10);not null;index"` // rent, sale
	Price       float32 `json:"price" gorm:"index"`
	Location    string  `json:"location" gorm:"size:200;index"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   float32 `json:"bathrooms"`
	Area        float32 `json:"area"`     // square meters
	Images      string  `json:"images"`   // JSON array of URLs
	Features    string  `json:"features"` // JSON array of strings

	Owner User `json:"owner" gorm:"foreignKey:OwnerID"`
}

// MarshalJSON converts the Images and Features JSON strings to arrays.
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Images   []string `json:"images"`
		Features []string `json:"features"`
		Owner    *User    `json:"owner,omitempty"`
		*Alias
	}{
		Images:   []string{},
		Features: []string{},
		Alias:    (*Alias)(p),
	}

	if p.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(p.Images), &images); err == nil {
			aux.Images = images
		}
	}

	if p.Features != "" {
		var features []string
		if err := json.Unmarshal([]byte(p.Features), &features); err == nil {
			aux.Features = features
		}
	}

	if p.Owner.ID != 0 {
		aux.Owner = &p.Owner
	}

	return json.Marshal(aux)
}
