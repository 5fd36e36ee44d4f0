package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymkeyapp/gymkey-server/internal/models"
	"github.com/gymkeyapp/gymkey-server/internal/service"
	"github.com/gymkeyapp/gymkey-server/internal/workout"
)

// Handler holds the HTTP handlers for the API
type Handler struct {
	svc service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes registers all API routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	apiGroup := router.Group("/api")

	apiGroup.POST("/auth/signup", h.SignUp)
	apiGroup.POST("/auth/login", h.Login)

	authed := apiGroup.Group("")
	authed.Use(AuthMiddleware())

	authed.GET("/keys", h.KeyBalance)
	authed.GET("/keys/stream", h.StreamKeys)
	authed.POST("/keys/earn", h.EarnKeys)
	authed.POST("/keys/spend", h.SpendKeys)

	authed.GET("/workouts/:date", h.GetWorkout)
	authed.PUT("/workouts/:date", h.SaveWorkout)
	authed.POST("/workouts/:date/finish", h.FinishWorkout)

	authed.GET("/rewards", h.ListRewards)
	authed.GET("/rewards/:rewardId", h.GetReward)
	authed.POST("/rewards/:rewardId/redeem", h.RedeemReward)
	authed.GET("/redemption", h.RedemptionState)

	authed.GET("/locations", h.ListLocations)
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

// Authentication handlers
func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			errorJSON(c, http.StatusConflict, "USER_EXISTS", err.Error())
			return
		}
		errorJSON(c, http.StatusInternalServerError, "SIGNUP_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			errorJSON(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
			return
		}
		errorJSON(c, http.StatusInternalServerError, "LOGIN_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Key ledger handlers
func (h *Handler) KeyBalance(c *gin.Context) {
	resp, err := h.svc.KeyBalance(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "BALANCE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

// EarnKeys and SpendKeys apply unconditional increments. The authoritative
// balance arrives through the stream, so the value returned here may lag
// the write by one round trip.
func (h *Handler) EarnKeys(c *gin.Context) {
	var req models.KeyAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	userID := c.GetString("userId")
	if err := h.svc.EarnKeys(c.Request.Context(), userID, req.Amount); err != nil {
		errorJSON(c, http.StatusInternalServerError, "WRITE_FAILED", err.Error())
		return
	}

	resp, _ := h.svc.KeyBalance(c.Request.Context(), userID)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SpendKeys(c *gin.Context) {
	var req models.KeyAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	userID := c.GetString("userId")
	if err := h.svc.SpendKeys(c.Request.Context(), userID, req.Amount); err != nil {
		errorJSON(c, http.StatusInternalServerError, "WRITE_FAILED", err.Error())
		return
	}

	resp, _ := h.svc.KeyBalance(c.Request.Context(), userID)
	c.JSON(http.StatusOK, resp)
}

// Workout handlers
func (h *Handler) GetWorkout(c *gin.Context) {
	resp, err := h.svc.Workout(c.Request.Context(), c.GetString("userId"), c.Param("date"))
	if err != nil {
		if errors.Is(err, workout.ErrInvalidDate) {
			errorJSON(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
			return
		}
		errorJSON(c, http.StatusInternalServerError, "LOAD_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SaveWorkout(c *gin.Context) {
	var req models.SaveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.svc.SaveWorkout(c.Request.Context(), c.GetString("userId"), c.Param("date"), req.Exercises)
	if err != nil {
		if errors.Is(err, workout.ErrInvalidDate) {
			errorJSON(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
			return
		}
		errorJSON(c, http.StatusInternalServerError, "SAVE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) FinishWorkout(c *gin.Context) {
	var req models.SaveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.svc.FinishWorkout(c.Request.Context(), c.GetString("userId"), c.Param("date"), req.Exercises)
	if err != nil {
		if errors.Is(err, workout.ErrInvalidDate) {
			errorJSON(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
			return
		}
		errorJSON(c, http.StatusInternalServerError, "FINISH_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Reward handlers
func (h *Handler) ListRewards(c *gin.Context) {
	resp, err := h.svc.ListRewards(c.Request.Context())
	if err != nil {
		// Catalog read failures degrade to an empty list; the error is
		// already logged by the service
		c.JSON(http.StatusOK, models.RewardListResponse{
			Status:  "success",
			Rewards: []models.Reward{},
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetReward(c *gin.Context) {
	reward, err := h.svc.GetReward(c.Request.Context(), c.Param("rewardId"))
	if err != nil {
		if errors.Is(err, service.ErrRewardNotFound) {
			errorJSON(c, http.StatusNotFound, "REWARD_NOT_FOUND", err.Error())
			return
		}
		errorJSON(c, http.StatusInternalServerError, "LOAD_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, reward)
}

func (h *Handler) RedeemReward(c *gin.Context) {
	resp, err := h.svc.RedeemReward(c.Request.Context(), c.GetString("userId"), c.Param("rewardId"))
	if err != nil {
		if errors.Is(err, service.ErrRewardNotFound) {
			errorJSON(c, http.StatusNotFound, "REWARD_NOT_FOUND", err.Error())
			return
		}
		errorJSON(c, http.StatusInternalServerError, "REDEEM_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) RedemptionState(c *gin.Context) {
	resp, err := h.svc.RedemptionState(c.GetString("userId"))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "STATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Studio location handlers
func (h *Handler) ListLocations(c *gin.Context) {
	resp, err := h.svc.ListLocations(c.Request.Context())
	if err != nil {
		// Same degradation as the catalog: the map shows nothing rather
		// than an error
		c.JSON(http.StatusOK, models.LocationListResponse{
			Status:    "success",
			Locations: []models.Location{},
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
