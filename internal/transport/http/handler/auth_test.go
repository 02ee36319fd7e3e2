package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/transport/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	signup      func(ctx context.Context, email, password string) error
	verifyEmail func(ctx context.Context, rawToken string) error
	login       func(ctx context.Context, email, password string) (string, error)
}

func (f *fakeAuthUsecase) Signup(ctx context.Context, email, password string) error {
	return f.signup(ctx, email, password)
}

func (f *fakeAuthUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	return f.verifyEmail(ctx, rawToken)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	return f.login(ctx, email, password)
}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAuthHandler(uc, logger)

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)
	r.GET("/api/verify-email", h.VerifyEmail)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ---- Signup ----

func TestSignup_InvalidJSON_Returns400(t *testing.T) {
	w := postJSON(newAuthEngine(&fakeAuthUsecase{}), "/auth/signup", `{bad json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_ShortPassword_Returns400(t *testing.T) {
	w := postJSON(newAuthEngine(&fakeAuthUsecase{}), "/auth/signup",
		`{"email":"test@example.com","password":"short"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_EmailTaken_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, _, _ string) error { return domain.ErrEmailTaken },
	}
	w := postJSON(newAuthEngine(uc), "/auth/signup",
		`{"email":"test@example.com","password":"longenoughpassword"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestSignup_Success_Returns201(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, _, _ string) error { return nil },
	}
	w := postJSON(newAuthEngine(uc), "/auth/signup",
		`{"email":"test@example.com","password":"longenoughpassword"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
}

// ---- Login ----

func TestLogin_BadCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (string, error) {
			return "", domain.ErrBadCredentials
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login",
		`{"email":"test@example.com","password":"longenoughpassword"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_Success_Returns200WithJWT(t *testing.T) {
	const fakeJWT = "header.payload.signature"
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (string, error) { return fakeJWT, nil },
	}
	w := postJSON(newAuthEngine(uc), "/auth/login",
		`{"email":"test@example.com","password":"longenoughpassword"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), fakeJWT) {
		t.Errorf("body %q does not contain JWT %q", w.Body.String(), fakeJWT)
	}
}

// ---- VerifyEmail ----

func TestVerifyEmail_MissingToken_Returns401(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/verify-email", nil)
	newAuthEngine(&fakeAuthUsecase{}).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestVerifyEmail_InvalidToken_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifyEmail: func(_ context.Context, _ string) error { return domain.ErrTokenInvalid },
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/verify-email?token=bad", nil)
	newAuthEngine(uc).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestVerifyEmail_InternalError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifyEmail: func(_ context.Context, _ string) error { return errors.New("db down") },
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/verify-email?token=sometoken", nil)
	newAuthEngine(uc).ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestVerifyEmail_ValidToken_Returns200(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifyEmail: func(_ context.Context, _ string) error { return nil },
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/verify-email?token=validtoken", nil)
	newAuthEngine(uc).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
