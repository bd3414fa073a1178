package routes

import (
	"net/http"
	"strings"

	"propel-server/models"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

// shortlistForMember loads a shortlist if the user has a membership row on it.
// The owner always has one: it is materialized at creation time.
func shortlistForMember(shortlistID, userID uint) (*models.Shortlist, *models.ShortlistMember, error) {
	var member models.ShortlistMember
	if err := storage.DB.
		Where("shortlist_id = ? AND user_id = ?", shortlistID, userID).
		First(&member).Error; err != nil {
		return nil, nil, err
	}

	var shortlist models.Shortlist
	if err := storage.DB.First(&shortlist, shortlistID).Error; err != nil {
		return nil, nil, err
	}
	return &shortlist, &member, nil
}

type CreateShortlistInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=500"`
}

// CreateShortlist creates a shortlist with a fresh share token and an owner
// membership row, in one transaction.
func CreateShortlist(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var input CreateShortlistInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Shortlist name is required.", ctx)
		return
	}

	shortlist := models.Shortlist{
		UserID:      claims.ID,
		Name:        name,
		Description: input.Description,
		ShareToken:  utils.GenerateShortToken(16),
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shortlist).Error; err != nil {
			return err
		}
		member := models.ShortlistMember{
			ShortlistID: shortlist.ID,
			UserID:      claims.ID,
			Role:        models.ShortlistRoleOwner,
		}
		return tx.Create(&member).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "shortlist": shortlist})
}

// GetMyShortlists returns every shortlist the caller owns or is a member of.
func GetMyShortlists(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var memberships []models.ShortlistMember
	storage.DB.Where("user_id = ?", claims.ID).Find(&memberships)

	ids := make([]uint, 0, len(memberships))
	roles := make(map[uint]string, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.ShortlistID)
		roles[m.ShortlistID] = m.Role
	}

	shortlists := []models.Shortlist{}
	if len(ids) > 0 {
		if err := storage.DB.Where("id IN ?", ids).
			Preload("Properties.Property").
			Preload("Members").
			Order("created_at DESC").
			Find(&shortlists).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	result := make([]iris.Map, 0, len(shortlists))
	for i := range shortlists {
		result = append(result, iris.Map{
			"shortlist": &shortlists[i],
			"role":      roles[shortlists[i].ID],
		})
	}

	ctx.JSON(iris.Map{"success": true, "shortlists": result})
}

type UpdateShortlistInput struct {
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateShortlist renames or re-describes a shortlist. Owner only.
func UpdateShortlist(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	shortlistID := ctx.Params().Get("id")

	var input UpdateShortlistInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var shortlist models.Shortlist
	if err := storage.DB.Where("id = ? AND user_id = ?", shortlistID, claims.ID).
		First(&shortlist).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Shortlist not found"})
		return
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		shortlist.Name = name
	}
	if input.Description != "" {
		shortlist.Description = input.Description
	}

	if err := storage.DB.Save(&shortlist).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "shortlist": shortlist})
}

// DeleteShortlist removes a shortlist and its dependent rows. Owner only.
func DeleteShortlist(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	shortlistID := ctx.Params().Get("id")

	var shortlist models.Shortlist
	if err := storage.DB.Where("id = ? AND user_id = ?", shortlistID, claims.ID).
		First(&shortlist).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Shortlist not found"})
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shortlist_id = ?", shortlist.ID).Delete(&models.ShortlistProperty{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shortlist_id = ?", shortlist.ID).Delete(&models.ShortlistMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shortlist_id = ?", shortlist.ID).Delete(&models.ShortlistInvitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&shortlist).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Shortlist deleted successfully"})
}

type ShortlistPropertyInput struct {
	PropertyID uint `json:"propertyID" validate:"required"`
}

// AddPropertyToShortlist inserts a (shortlist, property) row. Members and the
// owner may add; a duplicate add reports already-present instead of failing.
func AddPropertyToShortlist(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	shortlistID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input ShortlistPropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if _, _, err := shortlistForMember(shortlistID, claims.ID); err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Shortlist not found"})
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, input.PropertyID).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Property not found"})
		return
	}

	var existing models.ShortlistProperty
	if err := storage.DB.
		Where("shortlist_id = ? AND property_id = ?", shortlistID, input.PropertyID).
		First(&existing).Error; err == nil {
		ctx.JSON(iris.Map{"success": true, "alreadyPresent": true, "entry": existing})
		return
	}

	entry := models.ShortlistProperty{
		ShortlistID: shortlistID,
		PropertyID:  input.PropertyID,
		AddedByID:   claims.ID,
	}
	if err := storage.DB.Create(&entry).Error; err != nil {
		// A concurrent add can beat us to the unique index; the surviving
		// row means the property is present, which is what was asked for.
		if err := storage.DB.
			Where("shortlist_id = ? AND property_id = ?", shortlistID, input.PropertyID).
			First(&existing).Error; err == nil {
			ctx.JSON(iris.Map{"success": true, "alreadyPresent": true, "entry": existing})
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "alreadyPresent": false, "entry": entry})
}

// RemovePropertyFromShortlist deletes a (shortlist, property) row.
func RemovePropertyFromShortlist(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	shortlistID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}
	propertyID, err := ctx.Params().GetUint("propertyID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	if _, _, err := shortlistForMember(shortlistID, claims.ID); err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Shortlist not found"})
		return
	}

	if err := storage.DB.
		Where("shortlist_id = ? AND property_id = ?", shortlistID, propertyID).
		Delete(&models.ShortlistProperty{}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Property removed from shortlist"})
}

// GetShortlistProperties lists the properties of a shortlist the caller
// belongs to.
func GetShortlistProperties(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	shortlistID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	if _, _, err := shortlistForMember(shortlistID, claims.ID); err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Shortlist not found"})
		return
	}

	var entries []models.ShortlistProperty
	if err := storage.DB.Where("shortlist_id = ?", shortlistID).
		Preload("Property").
		Order("added_at DESC").
		Find(&entries).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	properties := []models.Property{}
	for _, entry := range entries {
		properties = append(properties, entry.Property)
	}

	ctx.JSON(iris.Map{"success": true, "properties": properties})
}

type ToggleSharingInput struct {
	IsShared bool `json:"isShared"`
}

// ToggleShortlistSharing flips the public flag. The share token never
// rotates, so re-enabling sharing revives previously handed-out links.
func ToggleShortlistSharing(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	shortlistID := ctx.Params().Get("id")

	var input ToggleSharingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var shortlist models.Shortlist
	if err := storage.DB.Where("id = ? AND user_id = ?", shortlistID, claims.ID).
		First(&shortlist).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Shortlist not found"})
		return
	}

	if err := storage.DB.Model(&shortlist).
		Update("is_shared", input.IsShared).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success":    true,
		"isShared":   input.IsShared,
		"shareToken": shortlist.ShareToken,
	})
}

// GetSharedShortlist resolves a share link. No auth: the token is the
// capability. Unknown tokens and unshared shortlists are both plain 404s so
// the response does not leak which one it was.
func GetSharedShortlist(ctx iris.Context) {
	token := ctx.Params().Get("token")
	if token == "" {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var shortlist models.Shortlist
	if err := storage.DB.
		Where("share_token = ? AND is_shared = ?", token, true).
		Preload("Properties.Property").
		First(&shortlist).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	properties := []models.Property{}
	for _, entry := range shortlist.Properties {
		properties = append(properties, entry.Property)
	}

	ctx.JSON(iris.Map{
		"success": true,
		"shortlist": iris.Map{
			"id":          shortlist.ID,
			"name":        shortlist.Name,
			"description": shortlist.Description,
			"properties":  properties,
		},
	})
}
