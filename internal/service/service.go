package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gymkeyapp/gymkey-server/internal/docstore"
	"github.com/gymkeyapp/gymkey-server/internal/ledger"
	"github.com/gymkeyapp/gymkey-server/internal/models"
	"github.com/gymkeyapp/gymkey-server/internal/rewards"
	"github.com/gymkeyapp/gymkey-server/internal/studio"
	"github.com/gymkeyapp/gymkey-server/internal/utils"
	"github.com/gymkeyapp/gymkey-server/internal/workout"
)

const usersCollection = "users"

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRewardNotFound     = errors.New("reward not found")
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)

	// Key ledger
	KeyBalance(ctx context.Context, userID string) (*models.BalanceResponse, error)
	EarnKeys(ctx context.Context, userID string, amount int64) error
	SpendKeys(ctx context.Context, userID string, amount int64) error
	WatchKeys(userID string) (<-chan int64, func())

	// Workout sessions
	Workout(ctx context.Context, userID, date string) (*models.WorkoutResponse, error)
	SaveWorkout(ctx context.Context, userID, date string, exercises []models.Exercise) (*models.WorkoutResponse, error)
	FinishWorkout(ctx context.Context, userID, date string, exercises []models.Exercise) (*models.FinishWorkoutResponse, error)

	// Reward catalog and redemption
	ListRewards(ctx context.Context) (*models.RewardListResponse, error)
	GetReward(ctx context.Context, rewardID string) (*models.Reward, error)
	RedeemReward(ctx context.Context, userID, rewardID string) (*models.RedeemResponse, error)
	RedemptionState(userID string) (*models.RedemptionStateResponse, error)

	// Studio locations
	ListLocations(ctx context.Context) (*models.LocationListResponse, error)

	Close()
}

// userDoc is the stored user document shape. It carries the password hash,
// which models.User never serializes.
type userDoc struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"password"`
	Keys      int64     `json:"keys"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultService implements the Service interface
type DefaultService struct {
	docs        docstore.Store
	keys        *ledger.Hub
	workouts    *workout.Store
	catalog     *rewards.Catalog
	redemptions *rewards.Manager
	locations   *studio.Locations
	log         *utils.Logger

	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewDefaultService creates a new DefaultService on top of the document
// store
func NewDefaultService(docs docstore.Store, jwtSecret string, logger *utils.Logger) Service {
	keys := ledger.NewHub(docs)

	return &DefaultService{
		docs:          docs,
		keys:          keys,
		workouts:      workout.NewStore(docs, keys),
		catalog:       rewards.NewCatalog(docs),
		redemptions:   rewards.NewManager(keys),
		locations:     studio.NewLocations(docs),
		log:           logger,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour, // 24 hours token validity
	}
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	// Check-then-set: two concurrent signups can both pass this check. The
	// partial unique index on users' email turns the loser's write into an
	// error rather than a silent duplicate.
	existing, _, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}

	if existing != nil {
		return nil, ErrEmailTaken
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	userID := uuid.New().String()
	doc, err := docstore.Encode(userDoc{
		Email:     req.Email,
		Name:      req.Name,
		Password:  string(hashedPassword),
		Keys:      0,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding user: %w", err)
	}

	if err := s.docs.Set(ctx, usersCollection, userID, doc); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &models.AuthResponse{
		Status: "success",
		UserID: userID,
		Email:  req.Email,
		Name:   req.Name,
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, userID, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Generate JWT token
	token, err := s.generateJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		UserID:    userID,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

// findUserByEmail scans the users collection. The store contract has no
// secondary indexes, so this is a full collection scan, same as the client
// did against its document database.
func (s *DefaultService) findUserByEmail(ctx context.Context, email string) (*userDoc, string, error) {
	docs, err := s.docs.List(ctx, usersCollection)
	if err != nil {
		return nil, "", err
	}

	for _, doc := range docs {
		if doc["email"] != email {
			continue
		}

		userID, _ := doc["id"].(string)
		var user userDoc
		if err := doc.Decode(&user); err != nil {
			return nil, "", err
		}
		return &user, userID, nil
	}

	return nil, "", nil
}

// Key ledger methods
func (s *DefaultService) KeyBalance(ctx context.Context, userID string) (*models.BalanceResponse, error) {
	return &models.BalanceResponse{
		Status: "success",
		Keys:   s.keys.ForUser(userID).Balance(),
	}, nil
}

func (s *DefaultService) EarnKeys(ctx context.Context, userID string, amount int64) error {
	if err := s.keys.ForUser(userID).AddKeys(ctx, amount); err != nil {
		s.log.Error("failed to credit %d keys for user %s: %v", amount, userID, err)
		return err
	}
	return nil
}

func (s *DefaultService) SpendKeys(ctx context.Context, userID string, amount int64) error {
	if err := s.keys.ForUser(userID).SubtractKeys(ctx, amount); err != nil {
		s.log.Error("failed to debit %d keys for user %s: %v", amount, userID, err)
		return err
	}
	return nil
}

func (s *DefaultService) WatchKeys(userID string) (<-chan int64, func()) {
	return s.keys.ForUser(userID).Watch()
}

// Workout session methods
func (s *DefaultService) Workout(ctx context.Context, userID, date string) (*models.WorkoutResponse, error) {
	session, err := s.workouts.Load(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	return &models.WorkoutResponse{
		Status:    "success",
		Date:      session.Date,
		Exercises: session.Exercises,
		Completed: session.Completed,
	}, nil
}

func (s *DefaultService) SaveWorkout(ctx context.Context, userID, date string, exercises []models.Exercise) (*models.WorkoutResponse, error) {
	if err := s.workouts.Save(ctx, userID, date, exercises); err != nil {
		s.log.Error("failed to save workout %s for user %s: %v", date, userID, err)
		return nil, err
	}

	return &models.WorkoutResponse{
		Status:    "success",
		Date:      date,
		Exercises: exercises,
		Completed: true,
	}, nil
}

func (s *DefaultService) FinishWorkout(ctx context.Context, userID, date string, exercises []models.Exercise) (*models.FinishWorkoutResponse, error) {
	if err := s.workouts.Finish(ctx, userID, date, exercises); err != nil {
		s.log.Error("failed to finish workout %s for user %s: %v", date, userID, err)
		return nil, err
	}

	return &models.FinishWorkoutResponse{
		Status:       "success",
		Date:         date,
		KeysAwarded:  workout.FinishReward,
		Confirmation: fmt.Sprintf("Workout complete! +%d keys", workout.FinishReward),
		DisplayMs:    s.workouts.ConfirmationDuration().Milliseconds(),
	}, nil
}

// Reward methods
func (s *DefaultService) ListRewards(ctx context.Context) (*models.RewardListResponse, error) {
	list, err := s.catalog.List(ctx)
	if err != nil {
		s.log.Error("failed to list rewards: %v", err)
		return nil, err
	}

	return &models.RewardListResponse{
		Status:  "success",
		Rewards: list,
	}, nil
}

func (s *DefaultService) GetReward(ctx context.Context, rewardID string) (*models.Reward, error) {
	reward, err := s.catalog.Get(ctx, rewardID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}

	return reward, nil
}

func (s *DefaultService) RedeemReward(ctx context.Context, userID, rewardID string) (*models.RedeemResponse, error) {
	reward, err := s.GetReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}

	flow := s.redemptions.FlowFor(userID)
	if err := flow.Redeem(ctx, reward); err != nil {
		s.log.Error("failed to redeem reward %s for user %s: %v", rewardID, userID, err)
		return nil, err
	}

	return &models.RedeemResponse{
		Status:    "success",
		RewardID:  reward.ID,
		KeysSpent: reward.Cost,
		State:     flow.State().String(),
		EndFrame:  rewards.AnimationEndFrame,
		DisplayMs: flow.DisplayDuration().Milliseconds(),
	}, nil
}

func (s *DefaultService) RedemptionState(userID string) (*models.RedemptionStateResponse, error) {
	return &models.RedemptionStateResponse{
		Status: "success",
		State:  s.redemptions.FlowFor(userID).State().String(),
	}, nil
}

// Studio location methods
func (s *DefaultService) ListLocations(ctx context.Context) (*models.LocationListResponse, error) {
	list, err := s.locations.List(ctx)
	if err != nil {
		s.log.Error("failed to list locations: %v", err)
		return nil, err
	}

	return &models.LocationListResponse{
		Status:    "success",
		Locations: list,
	}, nil
}

// Close tears down redemption flows, confirmation timers and ledger
// mirrors
func (s *DefaultService) Close() {
	s.redemptions.Close()
	s.workouts.Close()
	s.keys.Close()
}

// Helper methods
func (s *DefaultService) generateJWT(userID string) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub": userID, // subject
		"exp": expirationTime.Unix(),
		"iat": time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
