package service

import (
	"context"
	"errors"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/Ahnabu/evo-tech-sub001/pkg/utils"

	"gorm.io/gorm"
)

type AuthService struct {
	users   UserStore
	jwtUtil *utils.JWTUtil
}

func NewAuthService(users UserStore, jwtSecret string, jwtExpireHours int) *AuthService {
	return &AuthService{
		users:   users,
		jwtUtil: utils.NewJWTUtil(jwtSecret, jwtExpireHours),
	}
}

// Register creates a customer account
func (s *AuthService) Register(ctx context.Context, username, password, email, phone string) (*model.User, error) {
	exists, err := s.users.UserExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, e.New(e.ERROR_USER_EXISTS)
	}
	if len(password) < 8 {
		return nil, e.Newf(e.INVALID_PARAMS, "password must be at least 8 characters")
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		Phone:        utils.NormalizePhone(phone),
		Role:         model.RoleCustomer,
	}
	if err := s.users.CreateUser(ctx, newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	dbUser, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, e.New(e.ERROR_USER_NOT_EXISTS)
		}
		return "", nil, err
	}

	if !utils.CheckPassword(password, dbUser.PasswordHash) {
		return "", nil, e.New(e.ERROR_PASSWORD)
	}

	token, err := s.jwtUtil.GenerateToken(dbUser.ID, dbUser.Username, dbUser.Role)
	if err != nil {
		return "", nil, e.New(e.ERROR_AUTH_TOKEN)
	}
	return token, dbUser, nil
}
