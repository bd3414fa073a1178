package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"propel-server/models"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/MicahParks/keyfunc"
	jwtGo "github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,max=256,email"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
	Badge     string `json:"badge" validate:"required,oneof=owner seeker business"`
	Location  string `json:"location" validate:"max=200"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleUserInput struct {
	AccessToken string `json:"accessToken"`
	IDToken     string `json:"idToken"`
	Badge       string `json:"badge" validate:"omitempty,oneof=owner seeker business"`
}

type GoogleUserRes struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Email:       strings.ToLower(userInput.Email),
		Password:    hashedPassword,
		SocialLogin: false,
	}

	// User and profile commit together; a user without a profile row would be
	// invisible to every social flow.
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID:   newUser.ID,
			Name:     userInput.FirstName + " " + userInput.LastName,
			Badge:    userInput.Badge,
			Location: userInput.Location,
		}
		return tx.Create(&profile).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	errorMsg := "Invalid email or password."
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	if existingUser.SocialLogin {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Social Login Account", ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

// GoogleLoginOrSignUp accepts either an OAuth access token (verified against
// the userinfo endpoint) or a Google ID token (verified against Google's
// JWKS). First login creates the user plus a profile with the given badge.
func GoogleLoginOrSignUp(ctx iris.Context) {
	var userInput GoogleUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var googleUser GoogleUserRes
	switch {
	case userInput.IDToken != "":
		claims, verifyErr := verifyGoogleIDToken(userInput.IDToken)
		if verifyErr != nil {
			utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid Google token.", ctx)
			return
		}
		googleUser = *claims
	case userInput.AccessToken != "":
		res, fetchErr := fetchGoogleUser(userInput.AccessToken)
		if fetchErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		googleUser = *res
	default:
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Missing Google token.", ctx)
		return
	}

	if googleUser.Email == "" {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid Google token.", ctx)
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, googleUser.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		user = models.User{
			FirstName:      googleUser.GivenName,
			LastName:       googleUser.FamilyName,
			Email:          strings.ToLower(googleUser.Email),
			SocialLogin:    true,
			SocialProvider: "Google",
		}
		badge := userInput.Badge
		if badge == "" {
			badge = models.BadgeSeeker
		}
		txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			profile := models.Profile{
				UserID:    user.ID,
				Name:      strings.TrimSpace(googleUser.GivenName + " " + googleUser.FamilyName),
				AvatarURL: googleUser.Picture,
				Badge:     badge,
			}
			return tx.Create(&profile).Error
		})
		if txErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		returnUser(user, ctx)
		return
	}

	if user.SocialLogin && user.SocialProvider == "Google" {
		returnUser(user, ctx)
		return
	}

	utils.CreateEmailAlreadyRegistered(ctx)
}

func fetchGoogleUser(accessToken string) (*GoogleUserRes, error) {
	endpoint := "https://www.googleapis.com/userinfo/v2/me"

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var googleBody GoogleUserRes
	if err := json.Unmarshal(body, &googleBody); err != nil {
		return nil, err
	}
	return &googleBody, nil
}

func verifyGoogleIDToken(idToken string) (*GoogleUserRes, error) {
	jwks, err := keyfunc.Get("https://www.googleapis.com/oauth2/v3/certs", keyfunc.Options{})
	if err != nil {
		return nil, err
	}

	var claims struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
		jwtGo.RegisteredClaims
	}

	if _, err := jwtGo.ParseWithClaims(idToken, &claims, jwks.Keyfunc); err != nil {
		return nil, err
	}

	return &GoogleUserRes{
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Picture:    claims.Picture,
	}, nil
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"email":        user.Email,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
