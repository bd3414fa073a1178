package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"propel-server/models"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/stretchr/testify/require"
)

// buildTestApp creates an Iris app with the API routes and a JWT verifier,
// backed by a fresh in-memory database.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()

	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	os.Setenv("REFRESH_TOKEN_SECRET", "testrefreshsecret")

	storage.InitializeTestDB()
	storage.Redis = nil

	app := iris.New()
	app.Configure(iris.WithoutPathCorrectionRedirection)
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", Register)
		user.Post("/login", Login)
	}

	profile := app.Party("/api/profile")
	{
		profile.Get("/", accessTokenVerifierMiddleware, GetMyProfile)
		profile.Patch("/", accessTokenVerifierMiddleware, UpdateProfile)
		profile.Put("/preference", accessTokenVerifierMiddleware, UpdateListingPreference)
		profile.Get("/search", accessTokenVerifierMiddleware, SearchProfiles)
		profile.Get("/{id:uint}", accessTokenVerifierMiddleware, GetProfile)
	}

	connection := app.Party("/api/connection", accessTokenVerifierMiddleware)
	{
		connection.Post("/request/{id:uint}", RequestConnection)
		connection.Post("/accept/{id:uint}", AcceptConnection)
		connection.Delete("/{id:uint}", Disconnect)
		connection.Get("/", GetConnections)
		connection.Get("/pending", GetPendingConnections)
		connection.Get("/status/{id:uint}", GetConnectionStatus)
	}

	post := app.Party("/api/post")
	{
		post.Post("/", accessTokenVerifierMiddleware, CreatePost)
		post.Get("/feed", accessTokenVerifierMiddleware, GetFeed)
		post.Delete("/{id:uint}", accessTokenVerifierMiddleware, DeletePost)
		post.Post("/{id:uint}/like", accessTokenVerifierMiddleware, LikePost)
		post.Delete("/{id:uint}/like", accessTokenVerifierMiddleware, UnlikePost)
		post.Post("/{id:uint}/comment", accessTokenVerifierMiddleware, CommentOnPost)
		post.Get("/{id:uint}/comments", GetComments)
		post.Delete("/{id:uint}/comment/{commentID:uint}", accessTokenVerifierMiddleware, DeleteComment)
	}

	property := app.Party("/api/property")
	{
		property.Post("/", accessTokenVerifierMiddleware, CreateProperty)
		property.Get("/search", SearchProperties)
		property.Get("/search/preference", accessTokenVerifierMiddleware, SearchByPreference)
		property.Get("/mine", accessTokenVerifierMiddleware, GetMyProperties)
		property.Get("/{id:uint}", GetProperty)
		property.Delete("/{id:uint}", accessTokenVerifierMiddleware, DeleteProperty)
	}

	rating := app.Party("/api/rating")
	{
		rating.Post("/{id:uint}", accessTokenVerifierMiddleware, RateBusiness)
		rating.Get("/{id:uint}", GetBusinessRatings)
	}

	shortlist := app.Party("/api/shortlist")
	{
		shortlist.Get("/shared/{token}", GetSharedShortlist)
		shortlist.Post("/", accessTokenVerifierMiddleware, CreateShortlist)
		shortlist.Get("/", accessTokenVerifierMiddleware, GetMyShortlists)
		shortlist.Patch("/{id:uint}", accessTokenVerifierMiddleware, UpdateShortlist)
		shortlist.Delete("/{id:uint}", accessTokenVerifierMiddleware, DeleteShortlist)
		shortlist.Post("/{id:uint}/properties", accessTokenVerifierMiddleware, AddPropertyToShortlist)
		shortlist.Delete("/{id:uint}/properties/{propertyID:uint}", accessTokenVerifierMiddleware, RemovePropertyFromShortlist)
		shortlist.Get("/{id:uint}/properties", accessTokenVerifierMiddleware, GetShortlistProperties)
		shortlist.Patch("/{id:uint}/sharing", accessTokenVerifierMiddleware, ToggleShortlistSharing)
		shortlist.Post("/{id:uint}/invitations", accessTokenVerifierMiddleware, CreateShortlistInvitation)
	}

	invitation := app.Party("/api/invitation", accessTokenVerifierMiddleware)
	{
		invitation.Get("/", ListMyInvitations)
		invitation.Post("/{id:uint}/respond", RespondToInvitation)
	}

	notifications := app.Party("/api/notifications", accessTokenVerifierMiddleware)
	{
		notifications.Get("/", ListNotifications)
		notifications.Get("/unread", UnreadCount)
		notifications.Patch("/{id:uint}/read", MarkNotificationRead)
		notifications.Patch("/read-all", MarkAllNotificationsRead)
		notifications.Patch("/settings", UpdateNotificationSettings)
	}

	require.NoError(t, app.Build())
	return app
}

// createTestUser inserts a user with a profile and returns its ID.
func createTestUser(t *testing.T, name, badge string) uint {
	t.Helper()

	user := models.User{
		FirstName: name,
		Email:     name + "@example.com",
	}
	require.NoError(t, storage.DB.Create(&user).Error)

	profile := models.Profile{
		UserID: user.ID,
		Name:   name,
		Badge:  badge,
	}
	require.NoError(t, storage.DB.Create(&profile).Error)

	return user.ID
}

// signTestToken returns a signed access token for the given user.
func signTestToken(t *testing.T, userID uint, badge string) string {
	t.Helper()

	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), time.Hour)
	token, err := signer.Sign(utils.AccessToken{ID: userID, Badge: badge})
	require.NoError(t, err)
	return string(token)
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, app *iris.Application, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), "body: %s", resp.Body.String())
	return body
}

func TestHealthOfTestHarness(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/connection/", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
