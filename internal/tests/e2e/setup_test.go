package e2e

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mulandii/Clinic-cms/internal/app"
	"github.com/Mulandii/Clinic-cms/internal/config"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/database"
	"github.com/Mulandii/Clinic-cms/internal/mocks"
	"github.com/Mulandii/Clinic-cms/internal/services"
	testconfig "github.com/Mulandii/Clinic-cms/internal/tests/config"
)

const testPassword = "correct-horse-battery"

// skewClock is wall time shifted by an adjustable offset
type skewClock struct {
	mu     sync.Mutex
	offset time.Duration
}

func (c *skewClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Add(c.offset)
}

func (c *skewClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

// testServer is the fully wired gateway over in-memory SQLite and miniredis
type testServer struct {
	t         *testing.T
	container *app.Container
	notifier  *mocks.MockNotificationService
	redis     *miniredis.Miniredis
	otpClock  *skewClock
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := testconfig.LoadTestConfig(t)
	for _, m := range mutate {
		m(cfg)
	}

	// a file database lets background audit writes use their own connection
	dsn := filepath.Join(t.TempDir(), "clinic.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	notifier := mocks.NewMockNotificationService()
	c, err := app.Assemble(cfg, zap.NewNop(), app.Infrastructure{
		DB:       db,
		Redis:    rdb,
		Notifier: notifier,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	clock := &skewClock{}
	otp, ok := c.OTPSvc.(*services.OTPServiceImpl)
	require.True(t, ok)
	otp.WithClock(clock.Now)

	return &testServer{t: t, container: c, notifier: notifier, redis: mr, otpClock: clock}
}

// do sends a JSON request through the router. An empty token sends no
// Authorization header.
func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.container.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	d, ok := decode(t, w)["data"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return d
}

func rows(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	d, ok := decode(t, w)["data"].([]interface{})
	require.True(t, ok, w.Body.String())
	return d
}
