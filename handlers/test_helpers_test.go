package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"menu_studio_app_go/config"
	"menu_studio_app_go/db"
	"menu_studio_app_go/models"
	"menu_studio_app_go/services"
	"menu_studio_app_go/services/layout"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(&models.Menu{}, &models.MenuExport{})
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	// Exports land in a per-test directory
	oldStorage := services.Storage
	services.Storage = services.NewLocalStorage(t.TempDir())
	t.Cleanup(func() { services.Storage = oldStorage })

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:     "test",
		AppURL:          "https://menus.example.com/",
		ExportTimeout:   5 * time.Second,
		InspectTimeout:  5 * time.Second,
		ExportRateLimit: 10,
	})

	return e, c, rec
}

// mockBrowser stands in for headless Chrome
type mockBrowser struct {
	mock.Mock
}

func (m *mockBrowser) PrintPDF(ctx context.Context, htmlContent string, options services.PDFOptions) ([]byte, error) {
	args := m.Called(ctx, htmlContent, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockBrowser) MeasureSections(ctx context.Context, htmlContent string) ([]layout.MeasuredSection, error) {
	args := m.Called(ctx, htmlContent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]layout.MeasuredSection), args.Error(1)
}

func useMockBrowser(t *testing.T) *mockBrowser {
	m := new(mockBrowser)
	old := services.Browser
	services.Browser = m
	t.Cleanup(func() { services.Browser = old })
	return m
}

func withMenuID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}
