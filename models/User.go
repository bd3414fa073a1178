package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email" gorm:"uniqueIndex"`
	Password            string `json:"password"`
	SocialLogin         bool   `json:"socialLogin"`
	SocialProvider      string `json:"socialProvider"`
	AllowsNotifications *bool  `json:"allowsNotifications"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

// MarshalJSON strips the password hash from API responses.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Password string `json:"password,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(u),
	}
	aux.Password = ""
	return json.Marshal(aux)
}
