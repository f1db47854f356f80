package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"smart_kettle/internal/models"
	"smart_kettle/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockKettle struct {
	mu        sync.Mutex
	err       error
	minTarget int
	maxTarget int

	targets []int
	tests   []int
}

func (m *mockKettle) SetTarget(ctx context.Context, degrees int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = append(m.targets, degrees)
	return m.err
}
func (m *mockKettle) StartTest(ctx context.Context, degrees int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests = append(m.tests, degrees)
	return m.err
}
func (m *mockKettle) Limits() (int, int) {
	if m.minTarget == 0 && m.maxTarget == 0 {
		return 40, 100
	}
	return m.minTarget, m.maxTarget
}
func (m *mockKettle) calls() (targets, tests []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.targets...), append([]int(nil), m.tests...)
}

type mockMonitoring struct {
	status models.KettleStatus
	err    error
}

func (m *mockMonitoring) GetStatus(ctx context.Context) (models.KettleStatus, error) {
	return m.status, m.err
}

type mockEventLog struct {
	resp     []models.KettleEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.KettleEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWith(s, Options{AuthEnabled: true})
}

func newTestRouterWith(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func intPtr(v int) *int { return &v }
