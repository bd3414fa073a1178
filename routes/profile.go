package routes

import (
	"propel-server/models"
	"propel-server/services"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

var profileCache = services.NewProfileCache()

// GetMyProfile returns the authenticated user's profile.
func GetMyProfile(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	profile, err := profileCache.Get(claims.ID)
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "profile": profile})
}

// GetProfile returns another user's profile by user ID.
func GetProfile(ctx iris.Context) {
	userID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	profile, cacheErr := profileCache.Get(userID)
	if cacheErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "profile": profile})
}

type UpdateProfileInput struct {
	Name        string `json:"name" validate:"max=200"`
	AvatarURL   string `json:"avatarURL" validate:"max=512"`
	Description string `json:"description" validate:"max=2000"`
	Location    string `json:"location" validate:"max=200"`
	Badge       string `json:"badge" validate:"omitempty,oneof=owner seeker business"`
}

// UpdateProfile mutates the caller's own profile and invalidates its cache
// entry.
func UpdateProfile(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var input UpdateProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var profile models.Profile
	if err := storage.DB.Where("user_id = ?", claims.ID).First(&profile).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if input.Name != "" {
		profile.Name = input.Name
	}
	if input.AvatarURL != "" {
		profile.AvatarURL = input.AvatarURL
	}
	if input.Description != "" {
		profile.Description = input.Description
	}
	if input.Location != "" {
		profile.Location = input.Location
	}
	if input.Badge != "" {
		profile.Badge = input.Badge
	}

	if err := storage.DB.Save(&profile).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	profileCache.Invalidate(claims.ID)

	ctx.JSON(iris.Map{"success": true, "profile": profile})
}

type ListingPreferenceInput struct {
	Types    []string `json:"types" validate:"dive,oneof=rent sale"`
	MinSize  float64  `json:"minSize" validate:"gte=0"`
	MaxSize  float64  `json:"maxSize" validate:"gte=0"`
	MinPrice float64  `json:"minPrice" validate:"gte=0"`
	MaxPrice float64  `json:"maxPrice" validate:"gte=0"`
	Location string   `json:"location" validate:"max=200"`
}

// UpdateListingPreference stores the caller's saved search criteria.
func UpdateListingPreference(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var input ListingPreferenceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var profile models.Profile
	if err := storage.DB.Where("user_id = ?", claims.ID).First(&profile).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	pref := models.ListingPreference{
		Types:    input.Types,
		MinSize:  input.MinSize,
		MaxSize:  input.MaxSize,
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		Location: input.Location,
	}
	profile.ListingPreference = pref.Encode()

	if err := storage.DB.Save(&profile).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	profileCache.Invalidate(claims.ID)

	ctx.JSON(iris.Map{"success": true, "listingPreference": pref})
}

// SearchProfiles searches profiles by name or account email, optionally
// filtered by badge.
func SearchProfiles(ctx iris.Context) {
	q := ctx.URLParamDefault("q", "")
	badge := ctx.URLParam("badge")
	limit := ctx.URLParamIntDefault("limit", 20)
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if len(q) < 1 && badge == "" {
		ctx.JSON(iris.Map{"success": true, "profiles": []interface{}{}})
		return
	}

	query := storage.DB.Model(&models.Profile{}).Limit(limit)
	if q != "" {
		query = query.
			Joins("JOIN users ON users.id = profiles.user_id").
			Where("lower(profiles.name) LIKE lower(?) OR lower(users.email) LIKE lower(?)",
				"%"+q+"%", "%"+q+"%")
	}
	if badge != "" {
		query = query.Where("profiles.badge = ?", badge)
	}

	var profiles []models.Profile
	query.Find(&profiles)
	ctx.JSON(iris.Map{"success": true, "profiles": profiles})
}
