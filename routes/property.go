package routes

import (
	"encoding/json"
	"strings"

	"propel-server/models"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

type CreatePropertyInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Type        string   `json:"type" validate:"required,oneof=rent sale"`
	Price       float32  `json:"price" validate:"gte=0"`
	Location    string   `json:"location" validate:"required,max=200"`
	Bedrooms    int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms   float32  `json:"bathrooms" validate:"gte=0"`
	Area        float32  `json:"area" validate:"gte=0"`
	Images      []string `json:"images"`
	Features    []string `json:"features"`
}

// CreateProperty lists a property owned by the caller. Base64 images are
// uploaded; URLs pass through untouched.
func CreateProperty(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var input CreatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	imageURLs := uploadImages(input.Images)
	imagesJSON, _ := json.Marshal(imageURLs)
	featuresJSON, _ := json.Marshal(input.Features)

	property := models.Property{
		OwnerID:     claims.ID,
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Price:       input.Price,
		Location:    input.Location,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		Area:        input.Area,
		Images:      string(imagesJSON),
		Features:    string(featuresJSON),
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "property": property})
}

func GetProperty(ctx iris.Context) {
	propertyID := ctx.Params().Get("id")

	var property models.Property
	if err := storage.DB.Preload("Owner").First(&property, propertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "property": &property})
}

// GetMyProperties lists properties the caller owns.
func GetMyProperties(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	properties := []models.Property{}
	storage.DB.Where("owner_id = ?", claims.ID).Order("created_at DESC").Find(&properties)

	ctx.JSON(iris.Map{"success": true, "properties": properties})
}

// DeleteProperty removes a property and its shortlist references. Owner only.
func DeleteProperty(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	propertyID := ctx.Params().Get("id")

	var property models.Property
	if err := storage.DB.Where("id = ? AND owner_id = ?", propertyID, claims.ID).
		First(&property).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Property not found"})
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", property.ID).Delete(&models.ShortlistProperty{}).Error; err != nil {
			return err
		}
		return tx.Delete(&property).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	deleteUploadedImages(property.Images)

	ctx.JSON(iris.Map{"success": true, "message": "Property deleted successfully"})
}

// deleteUploadedImages best-effort removes hosted attachments. A row is gone
// at this point, so a leftover image is an orphan, not an inconsistency.
func deleteUploadedImages(imagesJSON string) {
	if imagesJSON == "" {
		return
	}
	var urls []string
	if err := json.Unmarshal([]byte(imagesJSON), &urls); err != nil {
		return
	}
	for _, u := range urls {
		storage.DeleteImage(u)
	}
}

// SearchProperties filters the listing catalogue. All filters are optional
// and combine with AND.
func SearchProperties(ctx iris.Context) {
	q := storage.DB.Model(&models.Property{})

	if pType := strings.TrimSpace(ctx.URLParam("type")); pType != "" {
		// comma-separated list: rent, sale or both
		types := strings.Split(pType, ",")
		q = q.Where("type IN ?", types)
	}
	if location := strings.TrimSpace(ctx.URLParam("location")); location != "" {
		q = q.Where("lower(location) LIKE lower(?)", "%"+location+"%")
	}
	if minPrice, err := ctx.URLParamInt("minPrice"); err == nil && minPrice > 0 {
		q = q.Where("price >= ?", minPrice)
	}
	if maxPrice, err := ctx.URLParamInt("maxPrice"); err == nil && maxPrice > 0 {
		q = q.Where("price <= ?", maxPrice)
	}
	if minArea, err := ctx.URLParamInt("minArea"); err == nil && minArea > 0 {
		q = q.Where("area >= ?", minArea)
	}
	if maxArea, err := ctx.URLParamInt("maxArea"); err == nil && maxArea > 0 {
		q = q.Where("area <= ?", maxArea)
	}
	if minBedrooms, err := ctx.URLParamInt("minBedrooms"); err == nil && minBedrooms > 0 {
		q = q.Where("bedrooms >= ?", minBedrooms)
	}
	if minBathrooms, err := ctx.URLParamInt("minBathrooms"); err == nil && minBathrooms > 0 {
		q = q.Where("bathrooms >= ?", minBathrooms)
	}

	switch strings.ToLower(strings.TrimSpace(ctx.URLParam("sort"))) {
	case "price_low":
		q = q.Order("price ASC").Order("id DESC")
	case "price_high":
		q = q.Order("price DESC").Order("id DESC")
	default:
		q = q.Order("created_at DESC")
	}

	properties := []models.Property{}
	if err := q.Find(&properties).Error; err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to search properties"})
		return
	}

	ctx.JSON(iris.Map{"success": true, "properties": properties})
}

// SearchByPreference runs a search using the caller's stored listing
// preference, including the legacy location-only fallback.
func SearchByPreference(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var profile models.Profile
	if err := storage.DB.Where("user_id = ?", claims.ID).First(&profile).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	pref := models.ParseListingPreference(profile.ListingPreference)

	q := storage.DB.Model(&models.Property{})
	if len(pref.Types) > 0 {
		q = q.Where("type IN ?", pref.Types)
	}
	if pref.Location != "" {
		q = q.Where("lower(location) LIKE lower(?)", "%"+pref.Location+"%")
	}
	if pref.MinPrice > 0 {
		q = q.Where("price >= ?", pref.MinPrice)
	}
	if pref.MaxPrice > 0 {
		q = q.Where("price <= ?", pref.MaxPrice)
	}
	if pref.MinSize > 0 {
		q = q.Where("area >= ?", pref.MinSize)
	}
	if pref.MaxSize > 0 {
		q = q.Where("area <= ?", pref.MaxSize)
	}

	properties := []models.Property{}
	if err := q.Order("created_at DESC").Find(&properties).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "properties": properties, "preference": pref})
}

// uploadImages uploads any base64 payloads and keeps plain URLs as-is.
// Failed uploads are skipped rather than failing the whole mutation.
func uploadImages(images []string) []string {
	urls := []string{}
	for _, img := range images {
		if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			urls = append(urls, img)
			continue
		}
		if uploaded := storage.UploadBase64Image(img, ""); uploaded != "" {
			urls = append(urls, uploaded)
		}
	}
	return urls
}
