package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymkeyapp/gymkey-server/internal/api/testutils"
	"github.com/gymkeyapp/gymkey-server/internal/models"
)

func TestGetWorkoutReturnsDefaults(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/workouts/2026-03-14",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.WorkoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.False(t, resp.Completed)
	require.NotEmpty(t, resp.Exercises)

	for i, ex := range resp.Exercises {
		assert.Equal(t, i == 0, ex.Expanded)
		assert.Len(t, ex.Sets, 4)
		for _, set := range ex.Sets {
			assert.Equal(t, "- -", set.Previous)
		}
	}
}

func TestWorkoutDateValidation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	for _, date := range []string{"14-03-2026", "2026-3-4", "tomorrow"} {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodGet,
			fmt.Sprintf("/api/workouts/%s", date),
			nil,
			testutils.AuthHeaders(testCtx.TestUserJWT),
		)
		assert.Equal(t, http.StatusBadRequest, w.Code, "date %q should be rejected", date)
	}
}

func TestSaveWorkoutRoundTrip(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	exercises := []models.Exercise{
		{
			ID:   "ex-1",
			Name: "Hip Thrusts",
			Sets: []models.Set{
				{Weight: "185", Reps: "10", Previous: "175 x 10"},
				{Weight: "185", Reps: "8", Previous: "175 x 8"},
			},
			Completed: true,
		},
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/workouts/2026-03-14",
		models.SaveWorkoutRequest{Exercises: exercises},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	require.Equal(t, http.StatusOK, w.Code)

	// Loading the date again returns the saved list verbatim, marked
	// completed
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/workouts/2026-03-14",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.WorkoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, exercises, resp.Exercises)
	assert.True(t, resp.Completed)

	// A different date is untouched and still serves defaults
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/workouts/2026-03-15",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Completed)
}

func TestFinishWorkoutAwardsKeys(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	exercises := []models.Exercise{
		{ID: "ex-1", Name: "Squats", Sets: []models.Set{{Weight: "135", Reps: "8"}}, Completed: true},
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/workouts/2026-03-14/finish",
		models.SaveWorkoutRequest{Exercises: exercises},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.FinishWorkoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, int64(100), resp.KeysAwarded)
	assert.NotEmpty(t, resp.Confirmation)
	assert.Equal(t, int64(3000), resp.DisplayMs)

	// The fixed reward landed on the balance
	waitForBalance(t, testCtx, 100)

	// And the session was persisted
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/workouts/2026-03-14",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	require.Equal(t, http.StatusOK, w.Code)

	var loaded models.WorkoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Equal(t, exercises, loaded.Exercises)
	assert.True(t, loaded.Completed)
}
