package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/controller"
	"github.com/linkfolio/linkfolio-backend/models"
	"github.com/linkfolio/linkfolio-backend/util"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAuthService(db *gorm.DB, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.Username))

	if util.IsReservedUsername(username) {
		return nil, controller.ErrUsernameInUse
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	} else if existing.ID != uuid.Nil {
		return nil, controller.ErrEmailInUse
	}

	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	} else if existing.ID != uuid.Nil {
		return nil, controller.ErrUsernameInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  req.Username,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.logger.Sugar().Errorf("failed to create user: %s", err.Error())
		return nil, err
	}

	token, err := util.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{User: &user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, controller.ErrInvalidLogin
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, controller.ErrInvalidLogin
	}

	token, err := util.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{User: &user, Token: token}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, controller.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
