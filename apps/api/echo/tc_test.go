package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/shraddhaWorks/new-timelly-sub001/core/school"
	"github.com/shraddhaWorks/new-timelly-sub001/core/student"
	"github.com/shraddhaWorks/new-timelly-sub001/core/tc"
	"github.com/shraddhaWorks/new-timelly-sub001/core/user"
)

type tcFixture struct {
	school  school.School
	admin   user.User
	teacher user.User
	parent  user.User
	pupil   user.User
	student student.Student
}

func newTCFixture(t *testing.T) tcFixture {
	t.Helper()
	ctx := context.Background()

	sch := schools.AddSchool(school.School{Name: "Green Valley School", Code: "GVS"})
	addUser := func(uname string, roles []string) user.User {
		usr, err := usrRepo.CreateUser(ctx, user.User{
			Username: uname + "-" + uuid.New().String()[:8],
			Email:    uname + "-" + uuid.New().String()[:8] + "@school.test",
			IsActive: true,
			Roles:    roles,
			SchoolID: null.StringFrom(sch.ID),
		})
		if err != nil {
			t.Fatalf("newTCFixture(): %v", err)
		}
		return usr
	}

	fix := tcFixture{
		school:  sch,
		admin:   addUser("admin", []string{user.RoleAdminPrincipal}),
		teacher: addUser("teacher", []string{user.RoleTeacher}),
		parent:  addUser("parent", []string{user.RoleParent}),
		pupil:   addUser("pupil", []string{user.RoleStudent}),
	}
	fix.student = students.AddStudent(student.Student{
		UserID:   fix.pupil.ID,
		SchoolID: sch.ID,
		ClassID:  null.StringFrom(uuid.New().String()),
		RollNo:   "23",
	})
	return fix
}

func (fix tcFixture) requestTC(t *testing.T) tc.TransferCertificate {
	t.Helper()
	cert, err := tcSvc.Request(context.Background(), fix.parent, tc.NewTransferCertificate{
		StudentID: fix.student.ID,
		Reason:    "Family relocating",
	})
	if err != nil {
		t.Fatalf("requestTC(): %v", err)
	}
	return cert
}

func TestTCEndpoints_requireAuthentication(t *testing.T) {
	wantData := marchallObj(t, errMissingToken)
	tests := []httpTest{
		{name: "list", method: http.MethodGet, path: "/v1/tcs"},
		{name: "create", method: http.MethodPost, path: "/v1/tcs"},
		{name: "retrieve", method: http.MethodGet, path: "/v1/tcs/some-id"},
		{name: "approve", method: http.MethodPost, path: "/v1/tcs/some-id/approve"},
		{name: "reject", method: http.MethodPost, path: "/v1/tcs/some-id/reject"},
		{name: "export", method: http.MethodGet, path: "/v1/tcs/export"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusUnauthorized
			tt.wantData = wantData
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestTCEndpoints_permissions(t *testing.T) {
	fix := newTCFixture(t)
	cert := fix.requestTC(t)

	wantData := marchallObj(t, errForbidden)
	tests := []httpTest{
		{name: "student cannot list", method: http.MethodGet, path: "/v1/tcs", token: getToken(t, fix.pupil)},
		{name: "parent cannot list", method: http.MethodGet, path: "/v1/tcs", token: getToken(t, fix.parent)},
		{name: "teacher cannot request", method: http.MethodPost, path: "/v1/tcs", token: getToken(t, fix.teacher)},
		{name: "teacher cannot approve", method: http.MethodPost, path: "/v1/tcs/" + cert.ID + "/approve", token: getToken(t, fix.teacher)},
		{name: "parent cannot reject", method: http.MethodPost, path: "/v1/tcs/" + cert.ID + "/reject", token: getToken(t, fix.parent)},
		{name: "teacher cannot export", method: http.MethodGet, path: "/v1/tcs/export", token: getToken(t, fix.teacher)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusForbidden
			tt.wantData = wantData
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestTCCreate(t *testing.T) {
	fix := newTCFixture(t)

	body := marchallObj(t, tc.NewTransferCertificate{StudentID: fix.student.ID, Reason: "Moving away"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/tcs", getToken(t, fix.parent), body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["message"] != "Transfer Certificate requested" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
	cert := resp["tc"].(map[string]interface{})
	if cert["status"] != "PENDING" {
		t.Errorf("status = %v; want PENDING", cert["status"])
	}
	if cert["school_id"] != fix.school.ID {
		t.Errorf("school_id = %v; want %v", cert["school_id"], fix.school.ID)
	}
}

func TestTCCreate_validation(t *testing.T) {
	fix := newTCFixture(t)

	tests := []httpTest{
		{
			name: "missing student_id", body: []byte(`{"reason":"bye"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "malformed student_id", body: []byte(`{"student_id":"nope"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown student", body: marchallObj(t, tc.NewTransferCertificate{StudentID: uuid.New().String()}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/tcs", getToken(t, fix.admin), tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestTCList(t *testing.T) {
	fix := newTCFixture(t)
	fix.requestTC(t)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"admin", "/v1/tcs", getToken(t, fix.admin), 1},
		{"teacher", "/v1/tcs", getToken(t, fix.teacher), 1},
		{"pending", "/v1/tcs?status=PENDING", getToken(t, fix.admin), 1},
		{"approved", "/v1/tcs?status=APPROVED", getToken(t, fix.admin), 0},
		{"by student", "/v1/tcs?student_id=" + fix.student.ID, getToken(t, fix.admin), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
			}
			var certs []tc.TransferCertificate
			if err := json.Unmarshal(rec.Body.Bytes(), &certs); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if len(certs) != tt.want {
				t.Errorf("len = %v; want %v", len(certs), tt.want)
			}
		})
	}

	t.Run("invalid status filter", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tcs?status=BOGUS", getToken(t, fix.admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestTCRetrieve(t *testing.T) {
	fix := newTCFixture(t)
	cert := fix.requestTC(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/tcs/"+cert.ID, getToken(t, fix.admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}

	t.Run("unknown id", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: tc.ErrNotFound.Error()}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/tcs/"+uuid.New().String(), getToken(t, fix.admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("another school's TC", func(t *testing.T) {
		other := newTCFixture(t)
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: tc.ErrNotFound.Error()}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/tcs/"+cert.ID, getToken(t, other.admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestTCApprove(t *testing.T) {
	fix := newTCFixture(t)
	cert := fix.requestTC(t)

	body := []byte(`{"tc_document_url":"https://files.example.com/tc.pdf"}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/tcs/"+cert.ID+"/approve", getToken(t, fix.admin), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody(t, rec)
	if resp["message"] != "Transfer Certificate approved successfully" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
	got := resp["tc"].(map[string]interface{})
	if got["status"] != "APPROVED" {
		t.Errorf("status = %v; want APPROVED", got["status"])
	}
	if got["tc_document_url"] != "https://files.example.com/tc.pdf" {
		t.Errorf("tc_document_url = %v", got["tc_document_url"])
	}

	t.Run("second approval conflicts", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "transfer certificate is already APPROVED"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/tcs/"+cert.ID+"/approve", getToken(t, fix.admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestTCApprove_lenientBody(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"no body", nil},
		{"empty object", []byte(`{}`)},
		{"malformed json", []byte(`{"tc_document_url":`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix := newTCFixture(t)
			cert := fix.requestTC(t)

			req, rec := newAuthRequest(http.MethodPost, "/v1/tcs/"+cert.ID+"/approve", getToken(t, fix.admin), tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
			}
			got := decodeBody(t, rec)["tc"].(map[string]interface{})
			if got["tc_document_url"] != nil {
				t.Errorf("tc_document_url = %v; want null", got["tc_document_url"])
			}
		})
	}
}

func TestTCReject(t *testing.T) {
	fix := newTCFixture(t)
	cert := fix.requestTC(t)

	req, rec := newAuthRequest(http.MethodPost, "/v1/tcs/"+cert.ID+"/reject", getToken(t, fix.admin), []byte(`{"reason":"Dues outstanding"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody(t, rec)
	got := resp["tc"].(map[string]interface{})
	if got["status"] != "REJECTED" {
		t.Errorf("status = %v; want REJECTED", got["status"])
	}
	if got["reason"] != "Dues outstanding" {
		t.Errorf("reason = %v", got["reason"])
	}

	// rejection leaves the student in their class
	stu, err := students.GetStudentByID(context.Background(), fix.student.ID, fix.school.ID)
	if err != nil {
		t.Fatalf("GetStudentByID(): %v", err)
	}
	if !stu.ClassID.Valid {
		t.Error("student should still be attached to their class")
	}
}

func TestTCExport(t *testing.T) {
	fix := newTCFixture(t)
	fix.requestTC(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/tcs/export", getToken(t, fix.admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %v; want %v", ct, xlsxContentType)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Error("missing Content-Disposition header")
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook")
	}
}
