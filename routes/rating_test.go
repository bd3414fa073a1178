package routes

import (
	"fmt"
	"net/http"
	"testing"

	"propel-server/models"
	"propel-server/storage"

	"github.com/stretchr/testify/require"
)

func TestRateBusinessUpsertsSingleRow(t *testing.T) {
	app := buildTestApp(t)

	business := createTestUser(t, "agency", models.BadgeBusiness)
	rater := createTestUser(t, "alice", models.BadgeSeeker)
	raterToken := signTestToken(t, rater, models.BadgeSeeker)

	ratePath := fmt.Sprintf("/api/rating/%d", business)

	resp := doJSON(t, app, http.MethodPost, ratePath, raterToken,
		map[string]interface{}{"rating": 4, "comment": "Quick to respond"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Rating again replaces the earlier score instead of adding a row
	resp = doJSON(t, app, http.MethodPost, ratePath, raterToken,
		map[string]interface{}{"rating": 2, "comment": "Second visit was worse"})
	require.Equal(t, http.StatusOK, resp.Code)

	var ratings []models.BusinessRating
	storage.DB.Where("business_id = ?", business).Find(&ratings)
	require.Len(t, ratings, 1)
	require.Equal(t, 2, ratings[0].Rating)
	require.Equal(t, "Second visit was worse", ratings[0].Comment)
}

func TestRateBusinessRequiresBusinessBadge(t *testing.T) {
	app := buildTestApp(t)

	seeker := createTestUser(t, "bob", models.BadgeSeeker)
	rater := createTestUser(t, "alice", models.BadgeSeeker)
	raterToken := signTestToken(t, rater, models.BadgeSeeker)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/rating/%d", seeker), raterToken,
		map[string]interface{}{"rating": 5})
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRateBusinessRejectsSelfAndBadScore(t *testing.T) {
	app := buildTestApp(t)

	business := createTestUser(t, "agency", models.BadgeBusiness)
	businessToken := signTestToken(t, business, models.BadgeBusiness)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/rating/%d", business), businessToken,
		map[string]interface{}{"rating": 5})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	other := createTestUser(t, "rival", models.BadgeBusiness)
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/rating/%d", other), businessToken,
		map[string]interface{}{"rating": 6})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetBusinessRatingsAverages(t *testing.T) {
	app := buildTestApp(t)

	business := createTestUser(t, "agency", models.BadgeBusiness)
	alice := createTestUser(t, "alice", models.BadgeSeeker)
	bob := createTestUser(t, "bob", models.BadgeSeeker)

	ratePath := fmt.Sprintf("/api/rating/%d", business)
	resp := doJSON(t, app, http.MethodPost, ratePath, signTestToken(t, alice, models.BadgeSeeker),
		map[string]interface{}{"rating": 5})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = doJSON(t, app, http.MethodPost, ratePath, signTestToken(t, bob, models.BadgeSeeker),
		map[string]interface{}{"rating": 2})
	require.Equal(t, http.StatusOK, resp.Code)

	// Listing is public
	resp = doJSON(t, app, http.MethodGet, ratePath, "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeBody(t, resp)
	require.EqualValues(t, 2, body["count"])
	require.InDelta(t, 3.5, body["average"].(float64), 0.001)
}
