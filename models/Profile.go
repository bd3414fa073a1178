package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Badge values drive which sections of the app a profile can use.
const (
	BadgeOwner    = "owner"
	BadgeSeeker   = "seeker"
	BadgeBusiness = "business"
)

// Profile is the public identity of a user. Auth lives on User; everything
// other profiles can see lives here.
type Profile struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	UserID      uint   `json:"userID" gorm:"not null;uniqueIndex"`
	User        User   `json:"-" gorm:"foreignKey:UserID"`
	Name        string `json:"name" gorm:"size:200;not null"`
	AvatarURL   string `json:"avatarURL" gorm:"size:512"`
	Description string `json:"description" gorm:"type:text"`
	Location    string `json:"location" gorm:"size:200"`
	Badge       string `json:"badge" gorm:"type:varchar(20);not null;index"`

	// Serialized ListingPreference. Legacy rows may hold a bare location
	// string instead of JSON; see ParseListingPreference.
	ListingPreference string `json:"listingPreference" gorm:"type:text"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// ListingPreference is the saved search a seeker carries around, reused as
// filter state when browsing properties.
type ListingPreference struct {
	Types    []string `json:"types"`
	MinSize  float64  `json:"minSize"`
	MaxSize  float64  `json:"maxSize"`
	MinPrice float64  `json:"minPrice"`
	MaxPrice float64  `json:"maxPrice"`
	Location string   `json:"location"`
}

// ParseListingPreference decodes a stored preference payload. Values written
// before preferences became structured are plain location text; those parse
// as a location-only filter instead of failing.
func ParseListingPreference(raw string) ListingPreference {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ListingPreference{}
	}

	var pref ListingPreference
	if err := json.Unmarshal([]byte(raw), &pref); err != nil {
		return ListingPreference{Location: raw}
	}
	return pref
}

// Encode serializes the preference for storage in the profile row.
func (lp ListingPreference) Encode() string {
	data, err := json.Marshal(lp)
	if err != nil {
		return ""
	}
	return string(data)
}
