package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kwanjiru/eduid/core/student"
	"github.com/kwanjiru/eduid/core/user"
)

func Test_adminApi_requiresAdmin(t *testing.T) {
	env := setup(t)
	usr, _, _ := createStudent(t, env, "jane", "SCH-2024-001")

	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/stats", getToken(t, usr))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusForbidden)
	}

	req, rec = newRequest(http.MethodGet, "/v1/admin/stats")
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusUnauthorized)
	}
}

func Test_adminApi_stats(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrSvc, "Admin", "boss", "boss@test.cd", "s3cr3t", user.RoleAdmin)

	_, _, sid1 := createStudent(t, env, "jane", "SCH-2024-001")
	_, _, sid2 := createStudent(t, env, "john", "SCH-2024-002")
	createStudent(t, env, "jack", "SCH-2024-003")

	if _, err := env.stSvc.Review(sid1.ID, student.Review{Status: student.StatusApproved}); err != nil {
		t.Fatalf("Review() failed: %v", err)
	}
	if _, err := env.stSvc.Review(sid2.ID, student.Review{Status: student.StatusRejected, RejectionReason: "blurry photo"}); err != nil {
		t.Fatalf("Review() failed: %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/stats", getToken(t, admin))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var stats student.Stats
	decodeJSON(t, rec, &stats)
	want := student.Stats{Total: 3, Pending: 1, Approved: 1, Rejected: 1, ApprovalRate: 100.0 / 3}
	if stats.Total != want.Total || stats.Pending != want.Pending ||
		stats.Approved != want.Approved || stats.Rejected != want.Rejected {
		t.Errorf("stats = %+v; want %+v", stats, want)
	}
	if stats.ApprovalRate < 33.3 || stats.ApprovalRate > 33.4 {
		t.Errorf("approval rate = %v; want ~33.33", stats.ApprovalRate)
	}
}

func Test_adminApi_querySubmissions(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrSvc, "Admin", "boss", "boss@test.cd", "s3cr3t", user.RoleAdmin)
	token := getToken(t, admin)

	_, _, sid1 := createStudent(t, env, "jane", "SCH-2024-001")
	createStudent(t, env, "john", "SCH-2024-002")

	if _, err := env.stSvc.Review(sid1.ID, student.Review{Status: student.StatusApproved}); err != nil {
		t.Fatalf("Review() failed: %v", err)
	}

	tests := []struct {
		name      string
		query     string
		wantTotal int
	}{
		{name: "all", query: "", wantTotal: 2},
		{name: "explicit all", query: "?status=all", wantTotal: 2},
		{name: "pending only", query: "?status=pending", wantTotal: 1},
		{name: "approved only", query: "?status=approved", wantTotal: 1},
		{name: "printed none", query: "?status=printed", wantTotal: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/admin/submissions"+tt.query, token)
			env.server.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
			}
			var resp SubmissionListResponse
			decodeJSON(t, rec, &resp)
			if resp.Total != tt.wantTotal {
				t.Errorf("total = %d; want %d", resp.Total, tt.wantTotal)
			}
			if len(resp.Results) != tt.wantTotal {
				t.Errorf("results = %d; want %d", len(resp.Results), tt.wantTotal)
			}
			if resp.Page != 1 {
				t.Errorf("page = %d; want 1", resp.Page)
			}
		})
	}
}

func Test_adminApi_reviewSubmission(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrSvc, "Admin", "boss", "boss@test.cd", "s3cr3t", user.RoleAdmin)
	token := getToken(t, admin)

	_, _, sid := createStudent(t, env, "jane", "SCH-2024-001")
	path := fmt.Sprintf("/v1/admin/submissions/%d/review", sid.ID)

	// rejection requires a reason
	body := marshallObj(t, student.Review{Status: student.StatusRejected})
	req, rec := newAuthRequest(http.MethodPut, path, token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reject without reason: code = %d; want %d", rec.Code, http.StatusBadRequest)
	}

	// approve
	body = marshallObj(t, student.Review{Status: student.StatusApproved})
	req, rec = newAuthRequest(http.MethodPut, path, token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var approved student.SchoolID
	decodeJSON(t, rec, &approved)
	if approved.Status != student.StatusApproved {
		t.Errorf("status = %q; want %q", approved.Status, student.StatusApproved)
	}
	if approved.ValidUntil == "" {
		t.Error("approval should set a default validity date")
	}
	if approved.QRPath == "" {
		t.Error("approval should generate a QR code")
	} else if _, err := os.Stat(filepath.Join(env.conf.MediaRoot, approved.QRPath)); err != nil {
		t.Errorf("QR code file missing: %v", err)
	}

	// double review
	req, rec = newAuthRequest(http.MethodPut, path, token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("double review: code = %d; want %d", rec.Code, http.StatusBadRequest)
	}

	// unknown submission
	req, rec = newAuthRequest(http.MethodPut, "/v1/admin/submissions/999/review", token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: code = %d; want %d", rec.Code, http.StatusNotFound)
	}
}

func Test_adminApi_bulkPrint(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrSvc, "Admin", "boss", "boss@test.cd", "s3cr3t", user.RoleAdmin)
	token := getToken(t, admin)

	_, _, sid1 := createStudent(t, env, "jane", "SCH-2024-001")
	_, _, sid2 := createStudent(t, env, "john", "SCH-2024-002")
	_, _, sid3 := createStudent(t, env, "jack", "SCH-2024-003")

	for _, id := range []int{sid1.ID, sid2.ID} {
		if _, err := env.stSvc.Review(id, student.Review{Status: student.StatusApproved}); err != nil {
			t.Fatalf("Review() failed: %v", err)
		}
	}

	// nothing printable in selection
	body := marshallObj(t, BulkPrintRequest{IDs: []int{sid3.ID}})
	req, rec := newAuthRequest(http.MethodPost, "/v1/admin/submissions/print", token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("nothing printable: code = %d; want %d", rec.Code, http.StatusBadRequest)
	}

	// print the approved ones; pending ones are left out
	body = marshallObj(t, BulkPrintRequest{IDs: []int{sid1.ID, sid2.ID, sid3.ID}})
	req, rec = newAuthRequest(http.MethodPost, "/v1/admin/submissions/print", token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("response body is not a PDF document")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "bulk_print_") {
		t.Errorf("content disposition = %q; want a bulk_print_ filename", cd)
	}

	// approved submissions flipped to printed, pending untouched
	for _, id := range []int{sid1.ID, sid2.ID} {
		sub, err := env.stSvc.GetSubmission(id)
		if err != nil {
			t.Fatalf("GetSubmission() failed: %v", err)
		}
		if sub.SchoolID.Status != student.StatusPrinted {
			t.Errorf("submission %d status = %q; want %q", id, sub.SchoolID.Status, student.StatusPrinted)
		}
	}
	sub, err := env.stSvc.GetSubmission(sid3.ID)
	if err != nil {
		t.Fatalf("GetSubmission() failed: %v", err)
	}
	if sub.SchoolID.Status != student.StatusPending {
		t.Errorf("pending submission status = %q; want %q", sub.SchoolID.Status, student.StatusPending)
	}
}
