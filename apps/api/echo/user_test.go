package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shraddhaWorks/new-timelly-sub001/core/user"
)

func TestUserLogin(t *testing.T) {
	usr, err := usrSvc.Create(context.Background(), user.NewUser{
		Name:            "Login User",
		Username:        "loginuser",
		Email:           "login@school.test",
		Password:        "LePassword",
		PasswordConfirm: "LePassword",
		Roles:           []string{user.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	tests := []httpTest{
		{
			name: "ok", body: marchallObj(t, LoginRequest{Username: "loginuser", Password: "LePassword"}),
			wantCode: http.StatusOK,
		},
		{
			name: "by email", body: marchallObj(t, LoginRequest{Username: "login@school.test", Password: "LePassword"}),
			wantCode: http.StatusOK,
		},
		{
			name: "bad password", body: marchallObj(t, LoginRequest{Username: "loginuser", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown user", body: marchallObj(t, LoginRequest{Username: "ghost", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decoding body: %v", err)
				}
				if resp.Token == "" {
					t.Error("empty token")
				}
			} else if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}

	t.Run("token refresh", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if resp.Token == "" {
			t.Error("empty token")
		}
	})
}
