package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/transport/http/handler"
)

type fakeAccountUsecase struct {
	setNotifications func(ctx context.Context, userID string, enabled bool) error
	setAIKey         func(ctx context.Context, userID, key string) error
	unsubscribe      func(ctx context.Context, rawToken string) error
}

func (f *fakeAccountUsecase) SetNotifications(ctx context.Context, userID string, enabled bool) error {
	return f.setNotifications(ctx, userID, enabled)
}

func (f *fakeAccountUsecase) SetAIKey(ctx context.Context, userID, key string) error {
	return f.setAIKey(ctx, userID, key)
}

func (f *fakeAccountUsecase) Unsubscribe(ctx context.Context, rawToken string) error {
	return f.unsubscribe(ctx, rawToken)
}

func newAccountEngine(uc *fakeAccountUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAccountHandler(uc, logger)

	r := gin.New()
	r.GET("/api/unsubscribe", h.Unsubscribe)
	r.POST("/api/unsubscribe", h.Unsubscribe)
	return r
}

func TestUnsubscribe_MissingToken_Returns401(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/unsubscribe", nil)
	newAccountEngine(&fakeAccountUsecase{}).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUnsubscribe_InvalidToken_Returns401(t *testing.T) {
	uc := &fakeAccountUsecase{
		unsubscribe: func(_ context.Context, _ string) error { return domain.ErrTokenInvalid },
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/unsubscribe?token=bad", nil)
	newAccountEngine(uc).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

// RFC 8058 one-click clients POST to the List-Unsubscribe URL.
func TestUnsubscribe_OneClickPost_Returns200(t *testing.T) {
	var got string
	uc := &fakeAccountUsecase{
		unsubscribe: func(_ context.Context, rawToken string) error {
			got = rawToken
			return nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/unsubscribe?token=signed-token", nil)
	newAccountEngine(uc).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got != "signed-token" {
		t.Errorf("usecase received token %q, want signed-token", got)
	}
}
