package user

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/kwanjiru/eduid/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrInviteNotFound = errors.New("invitation not found")
	ErrInviteExpired  = errors.New("invitation has expired or was already used")

	// NowFunc is mockable in tests.
	NowFunc = func() time.Time { return time.Now().UTC() }
)

type (
	Repository interface {
		CheckUsernameUniqueness(username, email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id int) (User, error)
		GetUserByUsernameOrEmail(username string) (User, error)
		UpdateUser(user User, isActive *bool) (User, error)
		DeleteUsersByID(ids ...int) error

		CreateInvitation(inv AdminInvitation) (AdminInvitation, error)
		GetInvitationByToken(token string) (AdminInvitation, error)
		UpdateInvitation(inv AdminInvitation) (AdminInvitation, error)
	}

	Service struct {
		conf    *core.Config
		repo    Repository
		mailSvc core.EmailService
		log     core.Logger
	}
)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, log core.Logger) *Service {
	return &Service{
		conf:    conf,
		repo:    repo,
		mailSvc: mailSvc,
		log:     log,
	}
}

func (svc *Service) checkUniqueness(uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(nu NewUser) (User, error) {
	now := NowFunc()
	usr := User{
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByUsernameOrEmail(uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(core.CleanString(uname, true /* lower */))
}

func (svc *Service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = NowFunc()
	return svc.repo.UpdateUser(usr, nil)
}

func (svc *Service) Deactivate(id int) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	inactive := false
	usr.UpdatedAt = NowFunc()
	return svc.repo.UpdateUser(usr, &inactive)
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteUsersByID(ids...)
}

// Invite creates an admin invitation and emails the token to the invitee.
func (svc *Service) Invite(ni NewInvitation, invitedBy User) (AdminInvitation, error) {
	token, err := GenerateInvitationToken()
	if err != nil {
		return AdminInvitation{}, err
	}

	now := NowFunc()
	inv := AdminInvitation{
		Token:     token,
		Email:     ni.Email,
		CreatedBy: invitedBy.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(InvitationTTL),
	}
	inv, err = svc.repo.CreateInvitation(inv)
	if err != nil {
		return AdminInvitation{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: inv.Email}},
		Subject: "Admin invitation",
		BodyStr: fmt.Sprintf(
			"You have been invited to join %s as an administrator.\n\n"+
				"Register here: %s/admin/register?token=%s\n\n"+
				"This invitation expires on %s.",
			svc.conf.AppName, svc.conf.FrontendBaseURL, inv.Token,
			inv.ExpiresAt.Format("Jan 2, 2006"),
		),
	})
	return inv, nil
}

// Accept registers an admin account off a valid invitation token and marks the token used.
func (svc *Service) Accept(ai AcceptInvitation) (User, error) {
	inv, err := svc.repo.GetInvitationByToken(ai.Token)
	if err != nil {
		return User{}, err
	}
	now := NowFunc()
	if !inv.IsValid(now) {
		return User{}, ErrInviteExpired
	}

	if err := svc.checkUniqueness(ai.Username, inv.Email); err != nil {
		return User{}, err
	}

	usr, err := svc.Create(NewUser{
		Name:     ai.Name,
		Username: ai.Username,
		Email:    inv.Email,
		Password: ai.Password,
		Role:     RoleAdmin,
	})
	if err != nil {
		return User{}, err
	}

	inv.IsUsed = true
	inv.UsedAt = now
	inv.UsedBy = usr.ID
	if _, err := svc.repo.UpdateInvitation(inv); err != nil {
		svc.log.Error("marking invitation as used", err)
	}
	return usr, nil
}
