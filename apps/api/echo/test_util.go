package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"path/filepath"
	"testing"
	"time"

	"github.com/kwanjiru/eduid/core"
	"github.com/kwanjiru/eduid/core/card"
	"github.com/kwanjiru/eduid/core/student"
	"github.com/kwanjiru/eduid/core/user"
	dummymail "github.com/kwanjiru/eduid/services/email/dummy"
	logsvc "github.com/kwanjiru/eduid/services/logger"
	qrsvc "github.com/kwanjiru/eduid/services/qr"
	dummydb "github.com/kwanjiru/eduid/storage/database/dummy"
)

type testEnv struct {
	server  *Server
	conf    *core.Config
	usrSvc  *user.Service
	stSvc   *student.Service
	usrRepo user.Repository
	stRepo  student.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	dummymail.Reset()

	dir := t.TempDir()
	conf := &core.Config{
		AppName:          "EduID",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "secret",
		WorkDir:          dir,
		MediaRoot:        filepath.Join(dir, "media"),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "EduID", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			Addr:                      ":0",
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			ShutdownTimeout:           time.Second,
		},
		School: core.SchoolConfig{
			Name:     "Greenfields Academy",
			Motto:    "Knowledge is Light",
			ColorHex: "#0b5394",
		},
	}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	logger := logsvc.NewConsoleLogger(log.New(io.Discard, "", 0))
	usrRepo := dummydb.NewUserRepository(db)
	stRepo := dummydb.NewStudentRepository(db)
	usrSvc := user.NewService(conf, usrRepo, dummymail.NewService(conf.AppName), logger)
	stSvc := student.NewService(conf, stRepo, qrsvc.NewService(), logger)

	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		StudentSvc: stSvc,
		Assembler:  card.NewAssembler(card.DefaultGeometry(), logger),
	})
	return &testEnv{
		server:  server,
		conf:    conf,
		usrSvc:  usrSvc,
		stSvc:   stSvc,
		usrRepo: usrRepo,
		stRepo:  stRepo,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func createUser(t *testing.T, svc *user.Service, name, uname, email, pwd, role string) user.User {
	t.Helper()
	usr, err := svc.Create(user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            role,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func createStudent(t *testing.T, env *testEnv, uname, regNo string) (user.User, student.Student, student.SchoolID) {
	t.Helper()
	usr := createUser(t, env.usrSvc, "Student "+uname, uname, uname+"@test.cd", "s3cr3t", user.RoleStudent)
	st, sid, err := env.stSvc.Register(usr.ID, student.NewStudent{
		RegNo:          regNo,
		FullName:       "Jane Wanjiru Mwangi",
		Course:         "Computer Science",
		ClassLevel:     "Year 2",
		BloodType:      "O+",
		EmergencyName:  "Mary Mwangi",
		EmergencyPhone: "+254700000000",
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return usr, st, sid
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}
