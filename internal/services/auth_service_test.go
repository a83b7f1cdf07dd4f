// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/craftai/craftai-backend/internal/config"
	"github.com/craftai/craftai-backend/internal/models"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	// The postgres schema generates uuid ids server-side; sqlite gets an
	// equivalent default expression so service-created rows still carry
	// parseable ids.
	require.NoError(s.T(), db.Exec(`CREATE TABLE users (
		id text PRIMARY KEY DEFAULT (
			lower(hex(randomblob(4))) || '-' ||
			lower(hex(randomblob(2))) || '-' ||
			lower(hex(randomblob(2))) || '-' ||
			lower(hex(randomblob(2))) || '-' ||
			lower(hex(randomblob(6)))
		),
		created_at datetime,
		updated_at datetime,
		username text NOT NULL,
		email text NOT NULL,
		password_hash text NOT NULL,
		account_type text NOT NULL,
		status text DEFAULT 'active',
		profile_data text,
		last_login_at datetime
	)`).Error)

	cfg := &config.Config{}
	cfg.JWT.AccessTokenTTL = 24
	cfg.JWT.RefreshTokenTTL = 168

	s.db = db
	s.svc = NewAuthService(db, cfg)
}

func (s *AuthServiceTestSuite) insertUser(username, email, password string) *models.User {
	user := &models.User{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		Username:    username,
		Email:       email,
		AccountType: models.AccountTypeArtisan,
		Status:      models.UserStatusActive,
	}
	require.NoError(s.T(), user.SetPassword(password))
	require.NoError(s.T(), s.db.Create(user).Error)
	return user
}

func (s *AuthServiceTestSuite) TestRegisterIssuesTokens() {
	resp, err := s.svc.Register(&RegisterRequest{
		Username:    "clay_marta",
		Email:       "marta@example.com",
		Password:    "Sunlit!Kiln4",
		AccountType: models.AccountTypeArtisan,
	})
	s.Require().NoError(err)

	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)
	s.Equal("Bearer", resp.TokenType)
	s.Equal(24*3600, resp.ExpiresIn)
	s.Equal(models.AccountTypeArtisan, resp.User.AccountType)

	var count int64
	s.Require().NoError(s.db.Model(&models.User{}).Where("email = ?", "marta@example.com").Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *AuthServiceTestSuite) TestRegisterRejectsDuplicates() {
	s.insertUser("clay_marta", "marta@example.com", "Sunlit!Kiln4")

	_, err := s.svc.Register(&RegisterRequest{
		Username:    "other_name",
		Email:       "marta@example.com",
		Password:    "Sunlit!Kiln4",
		AccountType: models.AccountTypeBuyer,
	})
	s.Require().Error(err)
	s.Contains(err.Error(), "email")

	_, err = s.svc.Register(&RegisterRequest{
		Username:    "clay_marta",
		Email:       "other@example.com",
		Password:    "Sunlit!Kiln4",
		AccountType: models.AccountTypeBuyer,
	})
	s.Require().Error(err)
	s.Contains(err.Error(), "username")

	// Failed registrations must not leave partial rows behind.
	var count int64
	s.Require().NoError(s.db.Model(&models.User{}).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *AuthServiceTestSuite) TestRegisterRejectsInvalidAccountType() {
	_, err := s.svc.Register(&RegisterRequest{
		Username:    "clay_marta",
		Email:       "marta@example.com",
		Password:    "Sunlit!Kiln4",
		AccountType: models.AccountType("admin"),
	})
	s.Require().Error(err)
}

func (s *AuthServiceTestSuite) TestLogin() {
	s.insertUser("clay_marta", "marta@example.com", "Sunlit!Kiln4")

	resp, err := s.svc.Login(&LoginRequest{Email: "marta@example.com", Password: "Sunlit!Kiln4"})
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
	s.NotNil(resp.User.LastLoginAt)

	_, err = s.svc.Login(&LoginRequest{Email: "marta@example.com", Password: "wrong"})
	s.Require().Error(err)

	_, err = s.svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "Sunlit!Kiln4"})
	s.Require().Error(err)
}

func (s *AuthServiceTestSuite) TestLoginRejectsSuspended() {
	user := s.insertUser("clay_marta", "marta@example.com", "Sunlit!Kiln4")
	s.Require().NoError(s.db.Model(user).Update("status", models.UserStatusSuspended).Error)

	_, err := s.svc.Login(&LoginRequest{Email: "marta@example.com", Password: "Sunlit!Kiln4"})
	s.Require().Error(err)
	s.Contains(err.Error(), "suspended")
}

func (s *AuthServiceTestSuite) TestRefreshTokenRoundTrip() {
	user := s.insertUser("clay_marta", "marta@example.com", "Sunlit!Kiln4")

	login, err := s.svc.Login(&LoginRequest{Email: "marta@example.com", Password: "Sunlit!Kiln4"})
	s.Require().NoError(err)

	refreshed, err := s.svc.RefreshToken(login.RefreshToken)
	s.Require().NoError(err)
	s.Equal(user.ID, refreshed.User.ID)
	s.NotEmpty(refreshed.AccessToken)

	_, err = s.svc.RefreshToken("not-a-token")
	s.Require().Error(err)
}

func (s *AuthServiceTestSuite) TestGetUserByID() {
	user := s.insertUser("clay_marta", "marta@example.com", "Sunlit!Kiln4")

	got, err := s.svc.GetUserByID(user.ID)
	s.Require().NoError(err)
	s.Equal("clay_marta", got.Username)

	_, err = s.svc.GetUserByID(uuid.New())
	s.Require().Error(err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
