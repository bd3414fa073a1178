package models

import "gorm.io/gorm"

// BusinessRating is one user's rating of a business-badged profile. A rater
// gets a single row per business; rating again updates it.
type BusinessRating struct {
	gorm.Model
	BusinessID uint   `json:"businessID" gorm:"not null;index:idx_business_rater,unique"`
	RaterID    uint   `json:"raterID" gorm:"not null;index:idx_business_rater,unique"`
	Rating     int    `json:"rating" gorm:"not null"`
	Comment    string `json:"comment" gorm:"size:1000"`

	Rater User `json:"rater" gorm:"foreignKey:RaterID"`
}
