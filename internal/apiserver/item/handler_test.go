package item

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clothing-store/internal/apiserver/auth"
	"clothing-store/internal/shared/model"
	sqlitedriver "clothing-store/internal/shared/storage/driver/sqlite"
	"clothing-store/internal/shared/storage/repository"
)

var (
	admin    = &auth.AuthUser{ID: "a1", Role: "Admin", UserName: "root"}
	customer = &auth.AuthUser{ID: "u1", Role: "User", UserName: "alice"}
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	s := repository.NewStore(db, dialect)
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeImages 内存对象存储
type fakeImages struct {
	objects map[string][]byte
	deleted []string
	putErr  error
}

func (f *fakeImages) PutItemImage(ctx context.Context, itemID string, slot int, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := itemID + "/" + filename
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = data
	return "http://cdn/" + key, nil
}

func (f *fakeImages) DeleteItemImages(ctx context.Context, itemID string) error {
	f.deleted = append(f.deleted, itemID)
	return nil
}

// countingCache 记录全量失效次数
type countingCache struct {
	cleared int
	err     error
}

func (c *countingCache) GetMonthlySales(ctx context.Context, month time.Time) ([]model.MonthlySalesRow, bool, error) {
	return nil, false, nil
}

func (c *countingCache) SetMonthlySales(ctx context.Context, month time.Time, rows []model.MonthlySalesRow) error {
	return nil
}

func (c *countingCache) InvalidateMonthlySales(ctx context.Context, at time.Time) error { return nil }

func (c *countingCache) InvalidateAllMonthlySales(ctx context.Context) error {
	c.cleared++
	return c.err
}

func (c *countingCache) Close() error { return nil }

type testEnv struct {
	store *repository.Store
	mux   *http.ServeMux
	cache *countingCache
}

func newEnv(t *testing.T, images ImageStore) *testEnv {
	store := newTestStore(t)
	c := &countingCache{}
	mux := http.NewServeMux()
	NewHandler(store, images, c).RegisterRoutes(mux)
	return &testEnv{store: store, mux: mux, cache: c}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string, user *auth.AuthUser) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, body)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	if user != nil {
		r = r.WithContext(auth.WithAuthUser(r.Context(), user))
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, r)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}, user *auth.AuthUser) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return e.do(t, method, path, bytes.NewReader(data), "application/json", user)
}

func (e *testEnv) addItem(t *testing.T, name string) *model.Item {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/users/AddItems", AddRequest{
		ItemName: name, ItemPrice: 25, Gender: "Women", Material: "Silk", Subcategory: "Dresses",
		Url1: "http://img/1.png",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Message string      `json:"message"`
		Item    *model.Item `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Item added successfully", resp.Message)
	return resp.Item
}

// ============================================================================
// CRUD
// ============================================================================

func TestAddAndListItems(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/users/GetAllItems", nil, "", customer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Items retrieved successfully","items":[]}`, rec.Body.String())

	it := env.addItem(t, "Summer Dress")
	assert.True(t, model.IsValidID(it.ID))
	assert.Equal(t, model.GenderWomen, it.Gender)

	rec = env.do(t, http.MethodGet, "/api/users/GetAllItems", nil, "", customer)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []*model.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Summer Dress", resp.Items[0].ItemName)
	assert.Equal(t, "http://img/1.png", resp.Items[0].Url1)
}

func TestAddItem_Validation(t *testing.T) {
	env := newEnv(t, nil)
	tests := []struct {
		name string
		req  AddRequest
	}{
		{"missing name", AddRequest{ItemPrice: 1, Gender: "Men"}},
		{"invalid gender", AddRequest{ItemName: "Tee", ItemPrice: 1, Gender: "Kids"}},
		{"negative price", AddRequest{ItemName: "Tee", ItemPrice: -1, Gender: "Men"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.doJSON(t, http.MethodPost, "/api/users/AddItems", tt.req, admin)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestItemRoutes_Authorization(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.doJSON(t, http.MethodPost, "/api/users/AddItems", AddRequest{ItemName: "Tee", Gender: "Men"}, customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/users/GetAllItems", nil, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/users/DeleteItem/x", nil, "", customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEditItem(t *testing.T) {
	env := newEnv(t, nil)
	it := env.addItem(t, "Tee")

	rec := env.doJSON(t, http.MethodPut, "/api/users/EditItem/"+it.ID, map[string]interface{}{"ItemPrice": 30}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":true,"message":"Item updated successfully"}`, rec.Body.String())

	got, err := env.store.GetItem(context.Background(), it.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.ItemPrice)
	assert.Equal(t, "Tee", got.ItemName)
	assert.Equal(t, "Silk", got.Material)

	rec = env.doJSON(t, http.MethodPut, "/api/users/EditItem/"+it.ID, map[string]interface{}{"Gender": "Kids"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPut, "/api/users/EditItem/"+model.NewID(), map[string]interface{}{"ItemPrice": 1}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":false,"message":"Item not found"}`, rec.Body.String())
}

func TestDeleteItem(t *testing.T) {
	images := &fakeImages{}
	env := newEnv(t, images)
	it := env.addItem(t, "Tee")

	rec := env.do(t, http.MethodDelete, "/api/users/DeleteItem/"+it.ID, nil, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":true,"message":"Item deleted successfully"}`, rec.Body.String())
	assert.Equal(t, []string{it.ID}, images.deleted)

	rec = env.do(t, http.MethodDelete, "/api/users/DeleteItem/"+it.ID, nil, "", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":false,"message":"Item not found"}`, rec.Body.String())
}

func TestItemChanges_ClearReportCache(t *testing.T) {
	images := &fakeImages{}
	env := newEnv(t, images)
	it := env.addItem(t, "Tee")
	assert.Equal(t, 0, env.cache.cleared, "adding an item does not touch existing reports")

	rec := env.doJSON(t, http.MethodPut, "/api/users/EditItem/"+it.ID, map[string]interface{}{"ItemName": "Shirt"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.cache.cleared)

	// 只有主图进入报表
	body, ct := multipartImage(t, "side.png", "image/png", []byte("x"))
	rec = env.do(t, http.MethodPost, "/api/users/items/"+it.ID+"/images?slot=2", body, ct, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.cache.cleared)

	body, ct = multipartImage(t, "front.png", "image/png", []byte("x"))
	rec = env.do(t, http.MethodPost, "/api/users/items/"+it.ID+"/images?slot=1", body, ct, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, env.cache.cleared)

	// 失败的请求不清缓存
	rec = env.doJSON(t, http.MethodPut, "/api/users/EditItem/"+model.NewID(), map[string]interface{}{"ItemPrice": 1}, admin)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 2, env.cache.cleared)

	// 缓存故障不影响删除结果
	env.cache.err = errors.New("redis down")
	rec = env.do(t, http.MethodDelete, "/api/users/DeleteItem/"+it.ID, nil, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, env.cache.cleared)
}

// ============================================================================
// 图片上传
// ============================================================================

func multipartImage(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	images := &fakeImages{}
	env := newEnv(t, images)
	it := env.addItem(t, "Tee")

	body, ct := multipartImage(t, "front.png", "image/png", []byte("png-bytes"))
	rec := env.do(t, http.MethodPost, "/api/users/items/"+it.ID+"/images?slot=3", body, ct, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":true,"url":"http://cdn/`+it.ID+`/front.png"}`, rec.Body.String())
	assert.Equal(t, []byte("png-bytes"), images.objects[it.ID+"/front.png"])

	got, err := env.store.GetItem(context.Background(), it.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/"+it.ID+"/front.png", got.Url3)
	assert.Equal(t, "http://img/1.png", got.Url1)
}

func TestUploadImage_Rejections(t *testing.T) {
	env := newEnv(t, &fakeImages{})
	it := env.addItem(t, "Tee")
	path := "/api/users/items/" + it.ID + "/images"

	body, ct := multipartImage(t, "a.png", "image/png", []byte("x"))
	rec := env.do(t, http.MethodPost, path+"?slot=6", body, ct, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartImage(t, "a.txt", "text/plain", []byte("x"))
	rec = env.do(t, http.MethodPost, path, body, ct, admin)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	body, ct = multipartImage(t, "big.png", "image/png", make([]byte, MaxImageSize+1))
	rec = env.do(t, http.MethodPost, path, body, ct, admin)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = env.do(t, http.MethodPost, path, bytes.NewBufferString("{}"), "application/json", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartImage(t, "a.png", "image/png", []byte("x"))
	rec = env.do(t, http.MethodPost, "/api/users/items/"+model.NewID()+"/images", body, ct, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadImage_StorageFailures(t *testing.T) {
	env := newEnv(t, nil)
	it := env.addItem(t, "Tee")
	body, ct := multipartImage(t, "a.png", "image/png", []byte("x"))
	rec := env.do(t, http.MethodPost, "/api/users/items/"+it.ID+"/images", body, ct, admin)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env = newEnv(t, &fakeImages{putErr: errors.New("bucket missing")})
	it = env.addItem(t, "Tee")
	body, ct = multipartImage(t, "a.png", "image/png", []byte("x"))
	rec = env.do(t, http.MethodPost, "/api/users/items/"+it.ID+"/images", body, ct, admin)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
