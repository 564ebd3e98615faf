package user

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/docstore"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrAuthenticationFailed = errors.New("invalid email or password")
	ErrAccountDeactivated   = errors.New("this account is deactivated")
)

// IsAuthError reports whether err means the credentials were refused.
func IsAuthError(err error) bool {
	switch errors.Cause(err) {
	case ErrAuthenticationFailed, ErrAccountDeactivated:
		return true
	}
	return false
}

// Service manages the users collection.
type Service struct {
	users      docstore.Collection[User]
	validate   *validator.Validate
	translator ut.Translator
}

func NewService(store docstore.Store, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{
		users:      docstore.NewCollection[User](store, docstore.Users),
		validate:   validate,
		translator: translator,
	}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate, svc.translator); err != nil {
		return User{}, err
	}

	if _, err := svc.GetByEmail(ctx, nu.Email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if err != ErrNotFound {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	id, err := svc.users.Add(ctx, usr)
	if err != nil {
		return User{}, err
	}
	usr.ID = id
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.users.All(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	usr, err := svc.users.Get(ctx, id)
	if docstore.IsNotFound(err) {
		return User{}, ErrNotFound
	}
	return usr, err
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	users, err := svc.users.Where(ctx, "email", core.CleanString(email, true /* lower */))
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, ErrNotFound
	}
	return users[0], nil
}

// Authenticate checks the credentials and stamps the last login of the user.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	if err := creds.Validate(svc.validate, svc.translator); err != nil {
		return User{}, err
	}

	usr, err := svc.GetByEmail(ctx, creds.Email)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, err
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}

	usr.LastLogin = time.Now().UTC()
	if err = svc.users.Patch(ctx, usr.ID, docstore.Fields{"last_login": usr.LastLogin}); err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) (User, error) {
	if err := rp.Validate(svc.validate, svc.translator); err != nil {
		return User{}, err
	}

	usr, err := svc.GetByEmail(ctx, rp.Email)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()

	fields := docstore.Fields{"password_hash": usr.PasswordHash, "updated_at": usr.UpdatedAt}
	if err = svc.users.Patch(ctx, usr.ID, fields); err != nil {
		return User{}, err
	}
	return usr, nil
}
