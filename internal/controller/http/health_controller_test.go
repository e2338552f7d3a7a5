package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/testutil/mocks"
)

func setupHealthRouter(store Pinger) *gin.Engine {
	router := gin.New()
	NewHealthController(store, zap.NewNop()).RegisterRoutes(router)
	return router
}

func TestHealthController_Health(t *testing.T) {
	userDAO := mocks.NewMockUserDAO()
	userDAO.PingErr = errors.New("down")
	router := setupHealthRouter(userDAO)

	w := doRequest(router, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("Health() status = %v, want %v", w.Code, http.StatusOK)
	}
	if userDAO.Calls["ping"] != 0 {
		t.Error("Health() should not touch the store")
	}
}

func TestHealthController_Ready(t *testing.T) {
	userDAO := mocks.NewMockUserDAO()
	router := setupHealthRouter(userDAO)

	w := doRequest(router, http.MethodGet, "/ready", "")

	if w.Code != http.StatusOK {
		t.Errorf("Ready() status = %v, want %v", w.Code, http.StatusOK)
	}
	if userDAO.Calls["ping"] != 1 {
		t.Errorf("Ready() pinged %d times, want 1", userDAO.Calls["ping"])
	}
}

func TestHealthController_Ready_StoreDown(t *testing.T) {
	userDAO := mocks.NewMockUserDAO()
	userDAO.PingErr = errors.New("no reachable servers")
	router := setupHealthRouter(userDAO)

	w := doRequest(router, http.MethodGet, "/ready", "")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Ready() status = %v, want %v", w.Code, http.StatusServiceUnavailable)
	}
	if body := decodeError(t, w); body.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("Ready() code = %v, want SERVICE_UNAVAILABLE", body.Code)
	}
}
