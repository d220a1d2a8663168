package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/contentgallery/internal/db"
	"github.com/contentgallery/internal/gallery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testModel struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type anotherTestModel struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type wrongTestModel struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) Save(_ context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	key := fmt.Sprintf("%d-%s", m.seq, name)
	m.objects[key] = data
	return key, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) URL(key string) string {
	return "/media/" + key
}

func (m *memoryStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type galleryFixture struct {
	db      *gorm.DB
	svc     *GalleryService
	store   *memoryStorage
	ctype   db.ContentType
	another db.ContentType
	wrong   db.ContentType
}

func setupGalleryTestDB(t *testing.T) *galleryFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:gallery-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, gdb.AutoMigrate(&testModel{}, &anotherTestModel{}, &wrongTestModel{}))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	reg := gallery.NewRegistry()
	reg.Register("tests", "testmodel", gallery.Capability{Listable: true, Visible: true}, gallery.NewTableOwner(gdb, &testModel{}, "name"))
	reg.Register("tests", "anothertestmodel", gallery.Capability{Listable: true, Visible: false}, gallery.NewTableOwner(gdb, &anotherTestModel{}, "name"))
	require.NoError(t, reg.Sync(context.Background(), gdb))

	wrong, err := db.EnsureContentType(gdb, "tests", "wrongtestmodel")
	require.NoError(t, err)

	ctype, _ := reg.Lookup("tests", "testmodel")
	another, _ := reg.Lookup("tests", "anothertestmodel")

	store := newMemoryStorage()
	return &galleryFixture{
		db:      gdb,
		svc:     NewGalleryService(gdb, reg, store, nil, 1<<20),
		store:   store,
		ctype:   db.ContentType{ID: ctype.ContentTypeID, AppLabel: "tests", Model: "testmodel"},
		another: db.ContentType{ID: another.ContentTypeID, AppLabel: "tests", Model: "anothertestmodel"},
		wrong:   *wrong,
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func intPtr(v int) *int {
	return &v
}

func TestChoicesResolution(t *testing.T) {
	f := setupGalleryTestDB(t)
	ctx := context.Background()

	obj1 := testModel{Name: "Test object 1"}
	obj2 := testModel{Name: "Test object 2"}
	require.NoError(t, f.db.Create(&obj1).Error)
	require.NoError(t, f.db.Create(&obj2).Error)
	require.NoError(t, f.db.Create(&anotherTestModel{Name: "Another object"}).Error)
	require.NoError(t, f.db.Create(&wrongTestModel{Name: "Wrong object"}).Error)

	_, err := f.svc.Choices(ctx, 0)
	assert.ErrorIs(t, err, ErrContentTypeNotFound)

	_, err = f.svc.Choices(ctx, f.wrong.ID+1000)
	assert.ErrorIs(t, err, ErrContentTypeNotFound)

	_, err = f.svc.Choices(ctx, f.wrong.ID)
	assert.ErrorIs(t, err, ErrContentTypeNotEligible)

	_, err = f.svc.Choices(ctx, f.another.ID)
	assert.ErrorIs(t, err, ErrContentTypeHidden)

	choices, err := f.svc.Choices(ctx, f.ctype.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []gallery.Choice{
		{Name: "Test object 1", ID: strconv.FormatUint(uint64(obj1.ID), 10)},
		{Name: "Test object 2", ID: strconv.FormatUint(uint64(obj2.ID), 10)},
	}, choices)
}

func TestGalleryDataOrdersByPositionAndIsolatesOwners(t *testing.T) {
	f := setupGalleryTestDB(t)
	ctx := context.Background()

	object := testModel{Name: "Test object"}
	other := testModel{Name: "Another test object"}
	require.NoError(t, f.db.Create(&object).Error)
	require.NoError(t, f.db.Create(&other).Error)

	images := []db.Image{
		{Src: "second.png", Position: 1, ContentTypeID: f.ctype.ID, ObjectID: object.ID},
		{Src: "first.png", Position: 0, ContentTypeID: f.ctype.ID, ObjectID: object.ID},
		{Src: "tie.png", Position: 1, ContentTypeID: f.ctype.ID, ObjectID: object.ID},
		{Src: "other.png", Position: 0, ContentTypeID: f.ctype.ID, ObjectID: other.ID},
	}
	require.NoError(t, f.db.Create(&images).Error)

	data, err := f.svc.GalleryData(ctx, "tests", "testmodel", object.ID)
	require.NoError(t, err)
	assert.Equal(t, []ImageView{
		{Src: "/media/first.png", Position: 0},
		{Src: "/media/second.png", Position: 1},
		{Src: "/media/tie.png", Position: 1},
	}, data)

	data, err = f.svc.GalleryData(ctx, "tests", "testmodel", other.ID)
	require.NoError(t, err)
	assert.Equal(t, []ImageView{{Src: "/media/other.png", Position: 0}}, data)
}

func TestGalleryDataErrors(t *testing.T) {
	f := setupGalleryTestDB(t)
	ctx := context.Background()

	object := testModel{Name: "Test object"}
	require.NoError(t, f.db.Create(&object).Error)

	_, err := f.svc.GalleryData(ctx, "tests", "missing", object.ID)
	assert.ErrorIs(t, err, ErrContentTypeNotFound)

	_, err = f.svc.GalleryData(ctx, "tests", "wrongtestmodel", object.ID)
	assert.ErrorIs(t, err, ErrContentTypeNotEligible)

	_, err = f.svc.GalleryData(ctx, "tests", "testmodel", object.ID+50)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	data, err := f.svc.GalleryData(ctx, "Tests", "TestModel", object.ID)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestAddImageAppendsAndValidates(t *testing.T) {
	f := setupGalleryTestDB(t)
	ctx := context.Background()

	object := testModel{Name: "Test object"}
	require.NoError(t, f.db.Create(&object).Error)

	first, err := f.svc.AddImage(ctx, ImageInput{ContentTypeID: f.ctype.ID, ObjectID: object.ID, Filename: "a.png", Data: pngBytes(t)})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)

	second, err := f.svc.AddImage(ctx, ImageInput{ContentTypeID: f.ctype.ID, ObjectID: object.ID, Filename: "b.png", Data: pngBytes(t)})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)

	pinned, err := f.svc.AddImage(ctx, ImageInput{ContentTypeID: f.ctype.ID, ObjectID: object.ID, Position: intPtr(7), Filename: "c.png", Data: pngBytes(t)})
	require.NoError(t, err)
	assert.Equal(t, 7, pinned.Position)

	_, err = f.svc.AddImage(ctx, ImageInput{ContentTypeID: f.ctype.ID, ObjectID: object.ID, Filename: "x.txt", Data: []byte("not an image")})
	assert.ErrorIs(t, err, ErrImageInvalid)

	_, err = f.svc.AddImage(ctx, ImageInput{ContentTypeID: f.ctype.ID, ObjectID: object.ID, Position: intPtr(-1), Filename: "d.png", Data: pngBytes(t)})
	assert.ErrorIs(t, err, ErrPositionInvalid)

	_, err = f.svc.AddImage(ctx, ImageInput{ContentTypeID: f.ctype.ID, ObjectID: object.ID + 9, Filename: "e.png", Data: pngBytes(t)})
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = f.svc.AddImage(ctx, ImageInput{ContentTypeID: f.wrong.ID, ObjectID: object.ID, Filename: "f.png", Data: pngBytes(t)})
	assert.ErrorIs(t, err, ErrContentTypeNotEligible)
	assert.ErrorContains(t, err, "tests.wrongtestmodel")

	var count int64
	f.db.Model(&db.Image{}).Count(&count)
	assert.EqualValues(t, 3, count)
}

func TestAddImageRejectsOversizedPayload(t *testing.T) {
	f := setupGalleryTestDB(t)
	object := testModel{Name: "Test object"}
	require.NoError(t, f.db.Create(&object).Error)

	f.svc.maxBytes = 10
	_, err := f.svc.AddImage(context.Background(), ImageInput{ContentTypeID: f.ctype.ID, ObjectID: object.ID, Filename: "a.png", Data: pngBytes(t)})
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestAddImageStoresDetectedFormatExtension(t *testing.T) {
	f := setupGalleryTestDB(t)
	object := testModel{Name: "Test object"}
	require.NoError(t, f.db.Create(&object).Error)

	payload := append(pngBytes(t), []byte("<script>alert(1)</script>")...)
	added, err := f.svc.AddImage(context.Background(), ImageInput{ContentTypeID: f.ctype.ID, ObjectID: object.ID, Filename: "evil.html", Data: payload})
	require.NoError(t, err)

	var stored db.Image
	require.NoError(t, f.db.First(&stored, added.ID).Error)
	assert.True(t, strings.HasSuffix(stored.Src, "evil.png"), stored.Src)
	assert.True(t, f.store.has(stored.Src))
}

func TestStoredFilename(t *testing.T) {
	cases := []struct {
		filename string
		format   string
		want     string
	}{
		{filename: "x.html", format: "png", want: "x.png"},
		{filename: "photo.JPG", format: "jpeg", want: "photo.jpeg"},
		{filename: `C:\Users\me\cat.gif`, format: "gif", want: "cat.gif"},
		{filename: "../../etc/passwd", format: "webp", want: "passwd.webp"},
		{filename: "", format: "png", want: "image.png"},
		{filename: ".htaccess", format: "png", want: "image.png"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, storedFilename(tc.filename, tc.format), tc.filename)
	}
}

func TestReorderRewritesPositions(t *testing.T) {
	f := setupGalleryTestDB(t)
	ctx := context.Background()

	object := testModel{Name: "Test object"}
	other := testModel{Name: "Other"}
	require.NoError(t, f.db.Create(&object).Error)
	require.NoError(t, f.db.Create(&other).Error)

	images := []db.Image{
		{Src: "a.png", Position: 0, ContentTypeID: f.ctype.ID, ObjectID: object.ID},
		{Src: "b.png", Position: 1, ContentTypeID: f.ctype.ID, ObjectID: object.ID},
		{Src: "c.png", Position: 2, ContentTypeID: f.ctype.ID, ObjectID: object.ID},
		{Src: "z.png", Position: 0, ContentTypeID: f.ctype.ID, ObjectID: other.ID},
	}
	require.NoError(t, f.db.Create(&images).Error)

	_, err := f.svc.Reorder(ctx, f.ctype.ID, object.ID, []uint{images[0].ID, images[1].ID})
	assert.ErrorIs(t, err, ErrReorderMismatch)

	_, err = f.svc.Reorder(ctx, f.ctype.ID, object.ID, []uint{images[0].ID, images[1].ID, images[3].ID})
	assert.ErrorIs(t, err, ErrReorderMismatch)

	_, err = f.svc.Reorder(ctx, f.ctype.ID, object.ID, []uint{images[0].ID, images[0].ID, images[1].ID})
	assert.ErrorIs(t, err, ErrReorderMismatch)

	reordered, err := f.svc.Reorder(ctx, f.ctype.ID, object.ID, []uint{images[2].ID, images[0].ID, images[1].ID})
	require.NoError(t, err)
	require.Len(t, reordered, 3)

	data, err := f.svc.GalleryData(ctx, "tests", "testmodel", object.ID)
	require.NoError(t, err)
	assert.Equal(t, []ImageView{
		{Src: "/media/c.png", Position: 0},
		{Src: "/media/a.png", Position: 1},
		{Src: "/media/b.png", Position: 2},
	}, data)
}

func TestUpdatePositionAndDelete(t *testing.T) {
	f := setupGalleryTestDB(t)
	ctx := context.Background()

	object := testModel{Name: "Test object"}
	require.NoError(t, f.db.Create(&object).Error)

	added, err := f.svc.AddImage(ctx, ImageInput{ContentTypeID: f.ctype.ID, ObjectID: object.ID, Filename: "a.png", Data: pngBytes(t)})
	require.NoError(t, err)

	_, err = f.svc.UpdatePosition(ctx, added.ID, -3)
	assert.ErrorIs(t, err, ErrPositionInvalid)

	updated, err := f.svc.UpdatePosition(ctx, added.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Position)

	_, err = f.svc.UpdatePosition(ctx, added.ID+100, 1)
	assert.ErrorIs(t, err, ErrImageNotFound)

	var stored db.Image
	require.NoError(t, f.db.First(&stored, added.ID).Error)
	require.True(t, f.store.has(stored.Src))

	require.NoError(t, f.svc.DeleteImage(ctx, added.ID))
	assert.False(t, f.store.has(stored.Src))
	assert.ErrorIs(t, f.svc.DeleteImage(ctx, added.ID), ErrImageNotFound)
}

func TestDeleteOwnerImagesAndPruneOrphans(t *testing.T) {
	f := setupGalleryTestDB(t)
	ctx := context.Background()

	kept := testModel{Name: "Kept"}
	removed := testModel{Name: "Removed"}
	orphaned := testModel{Name: "Orphaned"}
	require.NoError(t, f.db.Create(&kept).Error)
	require.NoError(t, f.db.Create(&removed).Error)
	require.NoError(t, f.db.Create(&orphaned).Error)

	for _, owner := range []testModel{kept, removed, orphaned} {
		_, err := f.svc.AddImage(ctx, ImageInput{ContentTypeID: f.ctype.ID, ObjectID: owner.ID, Filename: "a.png", Data: pngBytes(t)})
		require.NoError(t, err)
	}

	var keys []string
	err := f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		keys, err = f.svc.DeleteOwnerImages(tx, "tests", "testmodel", removed.ID)
		if err != nil {
			return err
		}
		return tx.Delete(&testModel{}, removed.ID).Error
	})
	require.NoError(t, err)
	require.Len(t, keys, 1)
	f.svc.RemovePayloads(ctx, keys)
	assert.False(t, f.store.has(keys[0]))

	// deleted without going through the service
	require.NoError(t, f.db.Delete(&testModel{}, orphaned.ID).Error)

	pruned, err := f.svc.PruneOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	var remaining []db.Image
	require.NoError(t, f.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ObjectID)

	pruned, err = f.svc.PruneOrphans(ctx)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}

func TestContentTypesListsListableEntries(t *testing.T) {
	f := setupGalleryTestDB(t)

	views, err := f.svc.ContentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "anothertestmodel", views[0].Model)
	assert.False(t, views[0].Visible)
	assert.Equal(t, f.ctype.ID, views[1].ID)
	assert.True(t, views[1].Visible)
}
