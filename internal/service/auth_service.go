package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pawly/config"
	"pawly/internal/auth"
	"pawly/internal/domain"
	"pawly/internal/models"
	"pawly/internal/repository"
	"pawly/pkg/mail"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrNicknameExists = errors.New("nickname already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
)

type AuthService struct {
	cfg        *config.Config
	memberRepo *repository.MemberRepository
	mailer     mail.Mailer
}

func NewAuthService(cfg *config.Config, memberRepo *repository.MemberRepository, mailer mail.Mailer) *AuthService {
	return &AuthService{cfg: cfg, memberRepo: memberRepo, mailer: mailer}
}

func (s *AuthService) Register(email, nickname, password string) (*models.Member, string, string, error) {
	exists, err := s.memberRepo.ExistsByEmail(email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}
	exists, err = s.memberRepo.ExistsByNickname(nickname)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrNicknameExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	m := &models.Member{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
	}
	if err := s.memberRepo.Create(m); err != nil {
		return nil, "", "", err
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, m.ID, m.Email, m.Role)
	if err != nil {
		return m, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, m.ID)
	if err != nil {
		return m, access, "", err
	}
	return m, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.Member, string, string, error) {
	m, err := s.memberRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, m.ID, m.Email, m.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, m.ID)
	return m, access, refresh, nil
}

// LoginWithGoogle creates or finds a member by Google ID and returns member +
// tokens + isNew flag.
func (s *AuthService) LoginWithGoogle(googleID, email, name, avatarURL string) (*models.Member, string, string, bool, error) {
	m, err := s.memberRepo.GetByGoogleID(googleID)
	if err == nil {
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, m.ID, m.Email, m.Role)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, m.ID)
		return m, access, refresh, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", false, err
	}
	// New member: check email not already used
	existing, _ := s.memberRepo.GetByEmail(email)
	if existing != nil {
		// Link Google to existing account
		gid := googleID
		existing.GoogleID = &gid
		if avatarURL != "" {
			existing.ProfileImage = avatarURL
		}
		if err := s.memberRepo.Update(existing); err != nil {
			return nil, "", "", false, err
		}
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, existing.ID, existing.Email, existing.Role)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, existing.ID)
		return existing, access, refresh, false, nil
	}
	gid := googleID
	nickname := strings.Split(email, "@")[0]
	if name != "" {
		nickname = strings.ReplaceAll(strings.ToLower(name), " ", "_")
	}
	if taken, _ := s.memberRepo.ExistsByNickname(nickname); taken {
		nickname = fmt.Sprintf("%s%d", nickname, time.Now().UnixNano()%100000)
	}
	m = &models.Member{
		Email:        email,
		Nickname:     nickname,
		GoogleID:     &gid,
		Role:         domain.RoleMember,
		ProfileImage: avatarURL,
	}
	if err := s.memberRepo.Create(m); err != nil {
		return nil, "", "", false, err
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, m.ID, m.Email, m.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, m.ID)
	return m, access, refresh, true, nil
}

// ChangePassword updates the member's password. Requires current password
// verification.
func (s *AuthService) ChangePassword(memberID uint, currentPassword, newPassword string) error {
	m, err := s.memberRepo.GetByID(memberID)
	if err != nil {
		return ErrInvalidCreds
	}
	if m.PasswordHash == "" {
		return errors.New("account uses Google sign-in; set a password first")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.PasswordHash = string(hash)
	return s.memberRepo.Update(m)
}

// ResetPassword issues a temporary password and mails it to the member.
// Responds identically whether or not the email exists, so the endpoint
// cannot be used to probe accounts.
func (s *AuthService) ResetPassword(email string) error {
	m, err := s.memberRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	temp, err := tempPassword()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.PasswordHash = string(hash)
	if err := s.memberRepo.Update(m); err != nil {
		return err
	}
	body := "Hello from pawly.\n\nYour temporary password is: " + temp +
		"\n\nPlease log in and change it right away (My Page > Change Password)."
	if err := s.mailer.Send(m.Email, "Your pawly temporary password", body); err != nil {
		log.Printf("[auth] temp password mail to %s failed: %v", m.Email, err)
	}
	return nil
}

func tempPassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *AuthService) RefreshToken(refreshToken string) (access, refresh string, err error) {
	token, err := jwt.ParseWithClaims(refreshToken, &jwt.RegisteredClaims{}, func(_ *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.RefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", auth.ErrInvalidToken
	}
	claims := token.Claims.(*jwt.RegisteredClaims)
	var memberID uint
	fmt.Sscanf(claims.Subject, "%d", &memberID)
	m, err := s.memberRepo.GetByID(memberID)
	if err != nil {
		return "", "", err
	}
	access, _ = auth.GenerateAccessToken(&s.cfg.JWT, m.ID, m.Email, m.Role)
	refresh, _ = auth.GenerateRefreshToken(&s.cfg.JWT, m.ID)
	return access, refresh, nil
}
