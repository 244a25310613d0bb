package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/config"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/models"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/utils"
)

var ErrUsernameTaken = errors.New("username already taken")

// AuthService forwards authentication to the identity provider and keeps a
// small local user/profile row keyed by the provider's user id. Sessions on
// our surface are our own JWTs; provider tokens never reach the app.
type AuthService struct {
	idp *IdentityService
	log *zap.Logger
}

func NewAuthService(idp *IdentityService, log *zap.Logger) *AuthService {
	return &AuthService{idp: idp, log: log}
}

// Register signs the email up at the provider. No session comes back: the
// provider wants the email verified before the first login.
func (s *AuthService) Register(ctx context.Context, email, password, username string) (*models.User, error) {
	pu, _, err := s.idp.SignUp(ctx, email, password, map[string]any{"username": username})
	if err != nil {
		return nil, err
	}

	user, err := s.upsertFromProvider(pu)
	if err != nil {
		return nil, err
	}
	if username != "" {
		user.Username = username
		if err := config.DB.Save(user).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, ErrUsernameTaken
			}
			return nil, err
		}
	}

	// Best effort; registration already succeeded.
	if err := utils.SendWelcomeEmail(email); err != nil {
		s.log.Warn("welcome email failed", zap.String("email", email), zap.Error(err))
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, phone, password string) (string, *models.User, error) {
	pu, _, err := s.idp.SignInWithPassword(ctx, email, phone, password)
	if err != nil {
		return "", nil, err
	}

	user, err := s.upsertFromProvider(pu)
	if err != nil {
		return "", nil, err
	}
	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) SendPhoneOtp(ctx context.Context, phone string) error {
	return s.idp.SendOtp(ctx, phone)
}

func (s *AuthService) VerifyPhoneOtp(ctx context.Context, phone, code string) (string, *models.User, error) {
	pu, sess, err := s.idp.VerifyOtp(ctx, phone, code)
	if err != nil {
		return "", nil, err
	}

	// The verify response carries a sparse user; re-read the full record with
	// the fresh session before syncing the local row. Best effort: the sparse
	// one still has the id and phone.
	if full, err := s.idp.GetUser(ctx, sess.AccessToken); err == nil {
		pu = full
	} else {
		s.log.Warn("provider user lookup after OTP verify failed", zap.Error(err))
	}

	user, err := s.upsertFromProvider(pu)
	if err != nil {
		return "", nil, err
	}
	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SetUsername is step two of the phone flow. The phone is already verified
// at the provider when this runs; a conflict here must not undo that.
func (s *AuthService) SetUsername(userID uint, username string) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}
	user.Username = username
	if err := config.DB.Save(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	return s.idp.ResendVerification(ctx, email)
}

func (s *AuthService) Profile(userID uint) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfilePatch applies only the present fields. ProfileCompleted flips true
// only through an explicit patch; nothing else ever sets it.
type ProfilePatch struct {
	Username         *string  `json:"username"`
	Age              *int     `json:"age"`
	Sex              *string  `json:"sex"`
	HeightCm         *float64 `json:"heightCm"`
	WeightKg         *float64 `json:"weightKg"`
	ActivityLevel    *string  `json:"activityLevel"`
	DietType         *string  `json:"dietType"`
	HealthGoal       *string  `json:"healthGoal"`
	ProfileCompleted *bool    `json:"profileCompleted"`
}

func (s *AuthService) UpdateProfile(userID uint, patch ProfilePatch) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Age != nil {
		user.Age = *patch.Age
	}
	if patch.Sex != nil {
		user.Sex = *patch.Sex
	}
	if patch.HeightCm != nil {
		user.HeightCm = *patch.HeightCm
	}
	if patch.WeightKg != nil {
		user.WeightKg = *patch.WeightKg
	}
	if patch.ActivityLevel != nil {
		user.ActivityLevel = *patch.ActivityLevel
	}
	if patch.DietType != nil {
		user.DietType = *patch.DietType
	}
	if patch.HealthGoal != nil {
		user.HealthGoal = *patch.HealthGoal
	}
	if patch.ProfileCompleted != nil {
		user.ProfileCompleted = *patch.ProfileCompleted
	}

	if err := config.DB.Save(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// upsertFromProvider keeps the local row in sync with the provider record.
func (s *AuthService) upsertFromProvider(pu *ProviderUser) (*models.User, error) {
	if pu == nil || pu.ID == "" {
		return nil, errors.New("provider returned no user")
	}

	var user models.User
	err := config.DB.Where("provider_id = ?", pu.ID).First(&user).Error
	switch {
	case err == nil:
		user.Email = pu.Email
		user.Phone = pu.Phone
		if err := config.DB.Save(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ProviderID: pu.ID,
			Email:      pu.Email,
			Phone:      pu.Phone,
			Role:       "user",
		}
		if err := config.DB.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	default:
		return nil, err
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}
