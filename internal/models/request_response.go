package models

// Request models
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type KeyAmountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type SaveWorkoutRequest struct {
	Exercises []Exercise `json:"exercises" binding:"required"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type BalanceResponse struct {
	Status string `json:"status"`
	Keys   int64  `json:"keys"`
}

type WorkoutResponse struct {
	Status    string     `json:"status"`
	Date      string     `json:"date"`
	Exercises []Exercise `json:"exercises"`
	Completed bool       `json:"completed"`
}

type FinishWorkoutResponse struct {
	Status       string `json:"status"`
	Date         string `json:"date"`
	KeysAwarded  int64  `json:"keysAwarded"`
	Confirmation string `json:"confirmation"`
	DisplayMs    int64  `json:"displayMs"`
}

type RewardListResponse struct {
	Status  string   `json:"status"`
	Rewards []Reward `json:"rewards"`
}

type RedeemResponse struct {
	Status    string `json:"status"`
	RewardID  string `json:"rewardId"`
	KeysSpent int64  `json:"keysSpent"`
	State     string `json:"state"`
	EndFrame  int    `json:"endFrame"`
	DisplayMs int64  `json:"displayMs"`
}

type RedemptionStateResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

type LocationListResponse struct {
	Status    string     `json:"status"`
	Locations []Location `json:"locations"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
