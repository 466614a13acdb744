package user_test

import (
	"io"
	"log"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/kwanjiru/eduid/core"
	"github.com/kwanjiru/eduid/core/user"
	dummymail "github.com/kwanjiru/eduid/services/email/dummy"
	logsvc "github.com/kwanjiru/eduid/services/logger"
	dummydb "github.com/kwanjiru/eduid/storage/database/dummy"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()
	dummymail.Reset()

	origNow := user.NowFunc
	user.NowFunc = func() time.Time { return testNow }
	t.Cleanup(func() { user.NowFunc = origNow })

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	conf := &core.Config{
		AppName:          "EduID",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "EduID", Address: "noreply@localhost"},
	}
	repo := dummydb.NewUserRepository(db)
	logger := logsvc.NewConsoleLogger(log.New(io.Discard, "", 0))
	return user.NewService(conf, repo, dummymail.NewService(conf.AppName), logger), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t)

	usr, err := svc.Create(user.NewUser{
		Name:     "Jane Mwangi",
		Username: "jane",
		Email:    "jane@test.cd",
		Password: "s3cr3t",
		Role:     user.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if usr.ID == 0 {
		t.Error("expected an assigned ID")
	}
	if !usr.IsActive {
		t.Error("new users should be active")
	}
	if !usr.IsStudent() {
		t.Errorf("role = %q; want %q", usr.Role, user.RoleStudent)
	}
	if err = usr.CheckPassword("s3cr3t"); err != nil {
		t.Error("password hash does not verify")
	}
	if err = usr.CheckPassword("wrong"); err == nil {
		t.Error("wrong password should not verify")
	}
	if !usr.CreatedAt.Equal(testNow) || !usr.UpdatedAt.Equal(testNow) {
		t.Errorf("timestamps = %v / %v; want %v", usr.CreatedAt, usr.UpdatedAt, testNow)
	}
}

func TestService_Deactivate(t *testing.T) {
	svc, _ := setup(t)

	usr, err := svc.Create(user.NewUser{Name: "Jane", Username: "jane", Email: "jane@test.cd", Password: "s3cr3t"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	usr, err = svc.Deactivate(usr.ID)
	if err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}
	if usr.IsActive {
		t.Error("user should be inactive")
	}

	if _, err = svc.Deactivate(999); err != user.ErrNotFound {
		t.Errorf("err = %v; want %v", err, user.ErrNotFound)
	}
}

func TestService_Invite(t *testing.T) {
	svc, _ := setup(t)

	admin, err := svc.Create(user.NewUser{Name: "Boss", Username: "boss", Email: "boss@test.cd", Password: "s3cr3t", Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	inv, err := svc.Invite(user.NewInvitation{Email: "newadmin@test.cd"}, admin)
	if err != nil {
		t.Fatalf("Invite() failed: %v", err)
	}

	if inv.Token == "" {
		t.Error("expected a generated token")
	}
	if inv.CreatedBy != admin.ID {
		t.Errorf("created by = %d; want %d", inv.CreatedBy, admin.ID)
	}
	if want := testNow.Add(user.InvitationTTL); !inv.ExpiresAt.Equal(want) {
		t.Errorf("expires at = %v; want %v", inv.ExpiresAt, want)
	}

	if n := len(dummymail.SentMessages); n != 1 {
		t.Fatalf("sent messages = %d; want 1", n)
	}
	sent := dummymail.SentMessages[0]
	if sent.To[0].Address != "newadmin@test.cd" {
		t.Errorf("recipient = %s", sent.To[0].Address)
	}
	if !strings.Contains(sent.BodyStr, inv.Token) {
		t.Error("invitation email lacks the token")
	}
}

func TestService_Accept(t *testing.T) {
	svc, repo := setup(t)

	admin, err := svc.Create(user.NewUser{Name: "Boss", Username: "boss", Email: "boss@test.cd", Password: "s3cr3t", Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	inv, err := svc.Invite(user.NewInvitation{Email: "newadmin@test.cd"}, admin)
	if err != nil {
		t.Fatalf("Invite() failed: %v", err)
	}

	if _, err = svc.Accept(user.AcceptInvitation{Token: "bogus", Name: "X", Username: "x", Password: "s3cr3t"}); err != user.ErrInviteNotFound {
		t.Errorf("err = %v; want %v", err, user.ErrInviteNotFound)
	}

	usr, err := svc.Accept(user.AcceptInvitation{Token: inv.Token, Name: "New Admin", Username: "newadmin", Password: "s3cr3t"})
	if err != nil {
		t.Fatalf("Accept() failed: %v", err)
	}
	if !usr.IsAdmin() {
		t.Error("accepted user should be an admin")
	}
	if usr.Email != inv.Email {
		t.Errorf("email = %q; want %q", usr.Email, inv.Email)
	}

	used, err := repo.GetInvitationByToken(inv.Token)
	if err != nil {
		t.Fatalf("GetInvitationByToken() failed: %v", err)
	}
	if !used.IsUsed || used.UsedBy != usr.ID {
		t.Errorf("invitation not marked used: %+v", used)
	}

	// single-use
	if _, err = svc.Accept(user.AcceptInvitation{Token: inv.Token, Name: "Y", Username: "y", Password: "s3cr3t"}); err != user.ErrInviteExpired {
		t.Errorf("err = %v; want %v", err, user.ErrInviteExpired)
	}
}

func TestService_Accept_expired(t *testing.T) {
	svc, _ := setup(t)

	admin, err := svc.Create(user.NewUser{Name: "Boss", Username: "boss", Email: "boss@test.cd", Password: "s3cr3t", Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	inv, err := svc.Invite(user.NewInvitation{Email: "late@test.cd"}, admin)
	if err != nil {
		t.Fatalf("Invite() failed: %v", err)
	}

	user.NowFunc = func() time.Time { return testNow.Add(user.InvitationTTL + time.Minute) }
	if _, err = svc.Accept(user.AcceptInvitation{Token: inv.Token, Name: "Late", Username: "late", Password: "s3cr3t"}); err != user.ErrInviteExpired {
		t.Errorf("err = %v; want %v", err, user.ErrInviteExpired)
	}
}

func TestInvitationIsValid(t *testing.T) {
	inv := user.AdminInvitation{ExpiresAt: testNow.Add(time.Hour)}

	if !inv.IsValid(testNow) {
		t.Error("fresh invitation should be valid")
	}
	if inv.IsValid(testNow.Add(2 * time.Hour)) {
		t.Error("expired invitation should be invalid")
	}
	inv.IsUsed = true
	if inv.IsValid(testNow) {
		t.Error("used invitation should be invalid")
	}
}
