package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/models"
)

// PushService relays reminders and sync nudges to a user's registered
// devices through SNS platform endpoints.
type PushService struct {
	db          *gorm.DB
	sns         *awssns.Client
	platformArn string
	log         *zap.Logger
}

func NewPushService(db *gorm.DB, log *zap.Logger) (*PushService, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "ap-south-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &PushService{
		db:          db,
		sns:         awssns.NewFromConfig(cfg),
		platformArn: os.Getenv("SNS_PLATFORM_ARN"),
		log:         log,
	}, nil
}

func tokenHash(tok string) string {
	h := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(h[:])
}

// RegisterDevice creates (or refreshes) the SNS endpoint for a device token.
func (p *PushService) RegisterDevice(userID uint, platform, token string) (*models.UserDevice, error) {
	platform = strings.ToLower(platform)
	if platform != "android" && platform != "ios" {
		return nil, errors.New("unknown platform")
	}
	if p.platformArn == "" {
		return nil, errors.New("SNS_PLATFORM_ARN not set")
	}

	out, err := p.sns.CreatePlatformEndpoint(context.TODO(), &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(p.platformArn),
		Token:                  aws.String(token),
	})
	if err != nil {
		return nil, err
	}

	dev := &models.UserDevice{
		UserID:      userID,
		Platform:    platform,
		TokenHash:   tokenHash(token),
		EndpointARN: aws.ToString(out.EndpointArn),
		UpdatedAt:   time.Now(),
	}
	var existing models.UserDevice
	if err := p.db.Where("user_id = ? AND token_hash = ?", userID, dev.TokenHash).First(&existing).Error; err == nil {
		existing.EndpointARN = dev.EndpointARN
		existing.Platform = dev.Platform
		existing.UpdatedAt = time.Now()
		if err := p.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if err := p.db.Create(dev).Error; err != nil {
		return nil, err
	}
	return dev, nil
}

func (p *PushService) SetEnabled(userID uint, enabled bool) error {
	return p.db.Model(&models.UserDevice{}).
		Where("user_id = ?", userID).
		Update("enabled", enabled).Error
}

// PushToUser is best effort: a dead endpoint is logged and skipped.
func (p *PushService) PushToUser(userID uint, title, body string, data map[string]string) {
	var endpoints []models.UserDevice
	if err := p.db.Where("user_id = ? AND enabled = ?", userID, true).Find(&endpoints).Error; err != nil {
		p.log.Warn("device lookup failed", zap.Uint("userID", userID), zap.Error(err))
		return
	}
	if len(endpoints) == 0 {
		return
	}

	msg := map[string]any{
		"default": body,
		"GCM": map[string]any{
			"notification": map[string]string{"title": title, "body": body},
			"data":         data,
		},
	}
	raw, _ := json.Marshal(msg)
	for _, d := range endpoints {
		_, err := p.sns.Publish(context.TODO(), &awssns.PublishInput{
			MessageStructure: aws.String("json"),
			Message:          aws.String(string(raw)),
			TargetArn:        aws.String(d.EndpointARN),
		})
		if err != nil {
			p.log.Warn("push failed", zap.String("endpoint", d.EndpointARN), zap.Error(err))
		}
	}
}
