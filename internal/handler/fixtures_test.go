package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contentgallery/internal/db"
	"github.com/contentgallery/internal/gallery"
	"github.com/contentgallery/internal/handler"
	"github.com/contentgallery/internal/router"
	"github.com/contentgallery/internal/service"
	"github.com/contentgallery/internal/storage"
	"github.com/contentgallery/internal/testapp"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestModel can own a gallery and is listed in choices.
type TestModel struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

// AnotherTestModel can own a gallery but is hidden from choices.
type AnotherTestModel struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

// WrongTestModel has a content type but is not registered.
type WrongTestModel struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type apiFixture struct {
	db        *gorm.DB
	router    *gin.Engine
	registry  *gallery.Registry
	uploadDir string
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, testapp.Migrate(gdb))
	require.NoError(t, gdb.AutoMigrate(&TestModel{}, &AnotherTestModel{}, &WrongTestModel{}))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	reg := gallery.NewRegistry()
	reg.Register("tests", "testmodel", gallery.Capability{Listable: true, Visible: true}, gallery.NewTableOwner(gdb, &TestModel{}, "name"))
	reg.Register("tests", "anothertestmodel", gallery.Capability{Listable: true, Visible: false}, gallery.NewTableOwner(gdb, &AnotherTestModel{}, "name"))
	testapp.Register(reg, gdb)
	require.NoError(t, reg.Sync(context.Background(), gdb))
	_, err = db.EnsureContentType(gdb, "tests", "wrongtestmodel")
	require.NoError(t, err)

	uploadDir := t.TempDir()
	store, err := storage.NewLocal(uploadDir, "/media/gallery")
	require.NoError(t, err)

	galleries := service.NewGalleryService(gdb, reg, store, nil, 1<<20)
	api := handler.NewAPI(gdb, galleries, nil)
	r := router.SetupRouter(api, router.Options{
		SessionSecret: "test-secret",
		UploadDir:     uploadDir,
		UploadURLPath: "/media/gallery",
	})

	return &apiFixture{db: gdb, router: r, registry: reg, uploadDir: uploadDir}
}

func (f *apiFixture) contentTypeID(t *testing.T, appLabel, model string) uint {
	t.Helper()
	ct, err := db.EnsureContentType(f.db, appLabel, model)
	require.NoError(t, err)
	return ct.ID
}

func (f *apiFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) sendAjaxRequest(url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return f.do(req)
}

func imageInMemoryData(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for x := 0; x < 100; x++ {
		img.Set(x, x, color.RGBA{R: 155, G: 0, B: 55, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
