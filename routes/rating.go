package routes

import (
	"net/http"

	"propel-server/models"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

type RateBusinessInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// RateBusiness records the caller's rating of a business profile. A second
// rating from the same user updates the existing row.
func RateBusiness(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	businessID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}
	if businessID == claims.ID {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Cannot rate yourself.", ctx)
		return
	}

	var input RateBusinessInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var business models.Profile
	if err := storage.DB.
		Where("user_id = ? AND badge = ?", businessID, models.BadgeBusiness).
		First(&business).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Business profile not found.", ctx)
		return
	}

	var rating models.BusinessRating
	err = storage.DB.
		Where("business_id = ? AND rater_id = ?", businessID, claims.ID).
		First(&rating).Error
	if err == nil {
		if updateErr := storage.DB.Model(&rating).
			Updates(map[string]interface{}{
				"rating":  input.Rating,
				"comment": input.Comment,
			}).Error; updateErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		rating.Rating = input.Rating
		rating.Comment = input.Comment
	} else {
		rating = models.BusinessRating{
			BusinessID: businessID,
			RaterID:    claims.ID,
			Rating:     input.Rating,
			Comment:    input.Comment,
		}
		if createErr := storage.DB.Create(&rating).Error; createErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	notifier.Notify(businessID, claims.ID, models.NotificationTypeRating,
		"rated your business", "rating", &rating.ID)

	ctx.JSON(iris.Map{"success": true, "rating": rating})
}

// GetBusinessRatings returns all ratings of a business with the average.
func GetBusinessRatings(ctx iris.Context) {
	businessID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	ratings := []models.BusinessRating{}
	storage.DB.
		Preload("Rater").
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&ratings)

	var average float64
	if len(ratings) > 0 {
		var sum int
		for _, r := range ratings {
			sum += r.Rating
		}
		average = float64(sum) / float64(len(ratings))
	}

	ctx.JSON(iris.Map{
		"success": true,
		"ratings": ratings,
		"average": average,
		"count":   len(ratings),
	})
}
