package routes

import (
	"fmt"
	"net/http"
	"testing"

	"propel-server/models"
	"propel-server/storage"

	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesUserWithProfile(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/user/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "Ada@Example.com",
		"password":  "correct-horse",
		"badge":     models.BadgeOwner,
		"location":  "London",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decodeBody(t, resp)
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])
	require.Equal(t, "ada@example.com", body["email"])

	var user models.User
	require.NoError(t, storage.DB.Where("email = ?", "ada@example.com").First(&user).Error)
	require.NotEqual(t, "correct-horse", user.Password)

	var profile models.Profile
	require.NoError(t, storage.DB.Where("user_id = ?", user.ID).First(&profile).Error)
	require.Equal(t, "Ada Lovelace", profile.Name)
	require.Equal(t, models.BadgeOwner, profile.Badge)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	app := buildTestApp(t)

	input := map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "correct-horse",
		"badge":     models.BadgeSeeker,
	}
	resp := doJSON(t, app, http.MethodPost, "/api/user/register", "", input)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, app, http.MethodPost, "/api/user/register", "", input)
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestRegisterRejectsUnknownBadge(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/user/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "correct-horse",
		"badge":     "landlord",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLoginVerifiesPassword(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/user/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "correct-horse",
		"badge":     models.BadgeSeeker,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, app, http.MethodPost, "/api/user/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-horse",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doJSON(t, app, http.MethodPost, "/api/user/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotEmpty(t, decodeBody(t, resp)["accessToken"])
}

func TestUpdateProfileAndBadgeVisibleToOthers(t *testing.T) {
	app := buildTestApp(t)

	alice := createTestUser(t, "alice", models.BadgeSeeker)
	bob := createTestUser(t, "bob", models.BadgeSeeker)
	aliceToken := signTestToken(t, alice, models.BadgeSeeker)
	bobToken := signTestToken(t, bob, models.BadgeSeeker)

	resp := doJSON(t, app, http.MethodPatch, "/api/profile/", aliceToken, map[string]string{
		"description": "Looking in the 11th",
		"badge":       models.BadgeBusiness,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/profile/%d", alice), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	profile := decodeBody(t, resp)["profile"].(map[string]interface{})
	require.Equal(t, "Looking in the 11th", profile["description"])
	require.Equal(t, models.BadgeBusiness, profile["badge"])
}

func TestSearchProfilesByNameAndBadge(t *testing.T) {
	app := buildTestApp(t)

	createTestUser(t, "anna", models.BadgeSeeker)
	createTestUser(t, "annika", models.BadgeBusiness)
	viewer := createTestUser(t, "viewer", models.BadgeSeeker)
	token := signTestToken(t, viewer, models.BadgeSeeker)

	resp := doJSON(t, app, http.MethodGet, "/api/profile/search?q=ann", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, decodeBody(t, resp)["profiles"].([]interface{}), 2)

	resp = doJSON(t, app, http.MethodGet, "/api/profile/search?q=ann&badge=business", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	profiles := decodeBody(t, resp)["profiles"].([]interface{})
	require.Len(t, profiles, 1)
	require.Equal(t, "annika", profiles[0].(map[string]interface{})["name"])

	// Email also matches
	resp = doJSON(t, app, http.MethodGet, "/api/profile/search?q=annika@example.com", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, decodeBody(t, resp)["profiles"].([]interface{}), 1)
}

func TestUpdateListingPreferenceRoundTrips(t *testing.T) {
	app := buildTestApp(t)

	alice := createTestUser(t, "alice", models.BadgeSeeker)
	token := signTestToken(t, alice, models.BadgeSeeker)

	resp := doJSON(t, app, http.MethodPut, "/api/profile/preference", token, map[string]interface{}{
		"types":    []string{"rent"},
		"maxPrice": 1500,
		"location": "Paris",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var profile models.Profile
	require.NoError(t, storage.DB.Where("user_id = ?", alice).First(&profile).Error)
	pref := models.ParseListingPreference(profile.ListingPreference)
	require.Equal(t, []string{"rent"}, pref.Types)
	require.Equal(t, 1500.0, pref.MaxPrice)
	require.Equal(t, "Paris", pref.Location)
}
