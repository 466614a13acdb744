package echoapi

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kwanjiru/eduid/core/student"
	"github.com/kwanjiru/eduid/core/user"
)

func Test_studentApi_register(t *testing.T) {
	env := setup(t)

	payload := func(uname, regNo string) []byte {
		return []byte(fmt.Sprintf(`{
			"name": "Jane Wanjiru Mwangi",
			"username": %q,
			"email": "%s@test.cd",
			"password": "s3cr3t",
			"password_confirm": "s3cr3t",
			"reg_no": %q,
			"full_name": "Jane Wanjiru Mwangi",
			"course": "Computer Science",
			"class_level": "Year 2"
		}`, uname, uname, regNo))
	}

	req, rec := newRequest(http.MethodPost, "/v1/students/register", payload("jane", "SCH-2024-001"))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp RegisterResponse
	decodeJSON(t, rec, &resp)
	if !resp.User.IsStudent() {
		t.Error("registered user should have the student role")
	}
	if resp.Submission.Status != student.StatusPending {
		t.Errorf("submission status = %q; want %q", resp.Submission.Status, student.StatusPending)
	}
	wantIDNum := fmt.Sprintf("EDU%d-%05d", time.Now().UTC().Year(), resp.Submission.ID)
	if resp.Submission.IDNumber != wantIDNum {
		t.Errorf("id number = %q; want %q", resp.Submission.IDNumber, wantIDNum)
	}

	// duplicate registration number
	req, rec = newRequest(http.MethodPost, "/v1/students/register", payload("john", "SCH-2024-001"))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate reg_no: code = %d; want %d; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	// duplicate username
	req, rec = newRequest(http.MethodPost, "/v1/students/register", payload("jane", "SCH-2024-002"))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate username: code = %d; want %d; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func Test_studentApi_retrieve(t *testing.T) {
	env := setup(t)
	usr, st, sid := createStudent(t, env, "jane", "SCH-2024-001")

	// no token
	req, rec := newRequest(http.MethodGet, "/v1/students/me")
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d; want %d", rec.Code, http.StatusUnauthorized)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/students/me", getToken(t, usr))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp ProfileResponse
	decodeJSON(t, rec, &resp)
	if resp.Student.ID != st.ID {
		t.Errorf("student id = %d; want %d", resp.Student.ID, st.ID)
	}
	if resp.Submission == nil || resp.Submission.ID != sid.ID {
		t.Errorf("submission = %+v; want id %d", resp.Submission, sid.ID)
	}

	// an account without a student profile gets a 404
	admin := createUser(t, env.usrSvc, "Admin", "boss", "boss@test.cd", "s3cr3t", user.RoleAdmin)
	req, rec = newAuthRequest(http.MethodGet, "/v1/students/me", getToken(t, admin))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusNotFound)
	}
}

func Test_studentApi_update(t *testing.T) {
	env := setup(t)
	usr, _, _ := createStudent(t, env, "jane", "SCH-2024-001")

	body := marshallObj(t, student.UpdateStudent{
		Course:     "Data Science",
		ClassLevel: "Year 3",
		Allergies:  "Penicillin",
	})
	req, rec := newAuthRequest(http.MethodPut, "/v1/students/me", getToken(t, usr), body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var st student.Student
	decodeJSON(t, rec, &st)
	if st.Course != "Data Science" || st.ClassLevel != "Year 3" || st.Allergies != "Penicillin" {
		t.Errorf("profile not updated: %+v", st)
	}
	if st.FullName == "" {
		t.Error("blank full name should keep the current value")
	}
}

func newPhotoRequest(t *testing.T, token, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("photo", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	if _, err = fw.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/students/me/photo", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 180, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() failed: %v", err)
	}
	return buf.Bytes()
}

func Test_studentApi_uploadPhoto(t *testing.T) {
	env := setup(t)
	usr, _, _ := createStudent(t, env, "jane", "SCH-2024-001")
	token := getToken(t, usr)

	// unsupported extension
	req, rec := newPhotoRequest(t, token, "photo.bmp", testPNG(t))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad ext: code = %d; want %d", rec.Code, http.StatusBadRequest)
	}

	// corrupt content
	req, rec = newPhotoRequest(t, token, "photo.png", []byte("definitely not a png"))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("corrupt file: code = %d; want %d", rec.Code, http.StatusBadRequest)
	}

	// valid upload
	req, rec = newPhotoRequest(t, token, "photo.png", testPNG(t))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var st student.Student
	decodeJSON(t, rec, &st)
	if st.PhotoPath == "" {
		t.Error("photo path not recorded")
	}
}

func Test_studentApi_submit(t *testing.T) {
	env := setup(t)
	usr, _, sid := createStudent(t, env, "jane", "SCH-2024-001")
	token := getToken(t, usr)

	// a pending submission already exists
	req, rec := newAuthRequest(http.MethodPost, "/v1/students/me/submissions", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("pending exists: code = %d; want %d; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	// rejected submissions may be resubmitted
	if _, err := env.stSvc.Review(sid.ID, student.Review{Status: student.StatusRejected, RejectionReason: "blurry photo"}); err != nil {
		t.Fatalf("Review() failed: %v", err)
	}
	req, rec = newAuthRequest(http.MethodPost, "/v1/students/me/submissions", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("resubmit: code = %d; want %d; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resub student.SchoolID
	decodeJSON(t, rec, &resub)
	if resub.Status != student.StatusPending {
		t.Errorf("resubmission status = %q; want %q", resub.Status, student.StatusPending)
	}
}

func Test_studentApi_downloadCard(t *testing.T) {
	env := setup(t)
	usr, _, sid := createStudent(t, env, "jane", "SCH-2024-001")
	token := getToken(t, usr)

	// not approved yet
	req, rec := newAuthRequest(http.MethodGet, "/v1/students/me/card", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("pending: code = %d; want %d; body %s", rec.Code, http.StatusConflict, rec.Body.String())
	}

	approved, err := env.stSvc.Review(sid.ID, student.Review{Status: student.StatusApproved})
	if err != nil {
		t.Fatalf("Review() failed: %v", err)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/students/me/card", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q; want application/pdf", ct)
	}
	wantName := fmt.Sprintf("ID_%s.pdf", approved.IDNumber)
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, wantName) {
		t.Errorf("content disposition = %q; want it to contain %q", cd, wantName)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("response body is not a PDF document")
	}
}
