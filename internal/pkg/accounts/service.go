// Package accounts manages user accounts: self-service registration and
// login, plus the admin-facing directory.
package accounts

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PixelBoard/app/models"
	"github.com/ManuelReschke/PixelBoard/app/repository"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/apperror"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/pagination"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/security"
)

var validate = validator.New()

// mutable user fields and the rules applied to them
var userFieldRules = map[string]string{
	"username": "required,min=3,max=150",
	"email":    "required,email,min=5,max=200",
	"role":     "oneof=user admin",
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Service struct {
	users  repository.UserRepository
	signer *security.Signer
}

func NewService(users repository.UserRepository, signer *security.Signer) *Service {
	return &Service{users: users, signer: signer}
}

// Register creates a regular user account.
func (s *Service) Register(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := models.CreateUser(username, email, password)
	if err != nil {
		return nil, validationError(err)
	}
	if err := s.ensureAvailable(0, username, email); err != nil {
		return nil, err
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("username or email already taken")
		}
		return nil, err
	}

	log.Infof("[Accounts] Registered user %d (%s)", user.ID, user.Username)
	return user, nil
}

// Login checks the credentials, records the login time and issues a token.
// identifier is an email address or a username.
func (s *Service) Login(identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperror.Validation("credentials are required")
	}

	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(strings.ToLower(identifier))
	} else {
		user, err = s.users.GetByUsername(identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		log.Warnf("[Accounts] Failed login for user %d", user.ID)
		return nil, apperror.Unauthorized("invalid credentials")
	}

	now := time.Now()
	if err := s.users.UpdateFields(user.ID, map[string]any{"last_login_at": now}); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	token, err := s.signer.Sign(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// Get returns the user with the given id.
func (s *Service) Get(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %d not found", id)
		}
		return nil, err
	}
	return user, nil
}

// List returns users newest first. Password hashes never leave the model.
func (s *Service) List(page, perPage int) (pagination.Page[models.User], error) {
	p := pagination.New(page, perPage)
	total, err := s.users.Count()
	if err != nil {
		return pagination.Page[models.User]{}, err
	}
	if p.Beyond(total) {
		return pagination.NewPage[models.User](nil, total, p), nil
	}
	items, err := s.users.List(p.Offset(), p.Limit())
	if err != nil {
		return pagination.Page[models.User]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

// Update applies the allow-listed fields of changes. password and unknown
// keys are ignored.
func (s *Service) Update(id uint, changes map[string]any) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	for key, value := range changes {
		rule, ok := userFieldRules[key]
		if !ok {
			continue
		}
		str, ok := value.(string)
		if !ok {
			return nil, apperror.Validation("%s must be a string", key)
		}
		str = strings.TrimSpace(str)
		if key == "email" {
			str = strings.ToLower(str)
		}
		if err := validate.Var(str, rule); err != nil {
			return nil, apperror.Validation("invalid %s", key)
		}
		fields[key] = str
	}

	username, _ := fields["username"].(string)
	email, _ := fields["email"].(string)
	if err := s.ensureAvailable(id, username, email); err != nil {
		return nil, err
	}

	if err := s.users.UpdateFields(id, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("username or email already taken")
		}
		return nil, err
	}
	if role, ok := fields["role"]; ok && role != user.Role {
		log.Infof("[Accounts] User %d role changed from %s to %s", id, user.Role, role)
	}
	return s.Get(id)
}

// Delete soft-deletes the account. Images and reports keep their now
// dangling references.
func (s *Service) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.users.Delete(id); err != nil {
		return err
	}
	log.Infof("[Accounts] Deleted user %d", id)
	return nil
}

// ensureAvailable rejects a username or email held by another account.
// Empty values are not checked.
func (s *Service) ensureAvailable(self uint, username, email string) error {
	if username != "" {
		if other, err := s.users.GetByUsername(username); err == nil && other.ID != self {
			return apperror.Conflict("username %s already taken", username)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if email != "" {
		if other, err := s.users.GetByEmail(email); err == nil && other.ID != self {
			return apperror.Conflict("email %s already taken", email)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return apperror.Validation("invalid %s", strings.Join(fields, ", "))
	}
	return err
}
