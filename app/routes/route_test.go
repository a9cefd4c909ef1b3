package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rakhulsr/techstore-api/app/configs"
	"github.com/Rakhulsr/techstore-api/app/db/seeders"
	"github.com/Rakhulsr/techstore-api/app/db/testdb"
	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testServer struct {
	handler http.Handler
	db      *gorm.DB
	reg     *services.Registry
}

func testEnv(t *testing.T) configs.ENV {
	return configs.ENV{
		AppEnv:             "testing",
		AppURL:             "http://localhost:8000",
		JWTSecret:          "route-test-secret",
		StorageDir:         t.TempDir(),
		StatsMode:          configs.StatsModeExtended,
		CORSOrigins:        []string{"http://localhost:5173"},
		LoginRatePerMinute: 1000,
	}
}

func newTestServer(t *testing.T, env configs.ENV) *testServer {
	t.Helper()

	db := testdb.Open(t)
	reg := services.NewRegistry(db, env)
	reg.Creds.WithCost(bcrypt.MinCost)
	require.NoError(t, seeders.NewSeeder(db, reg).SeedCatalog(context.Background()))

	return &testServer{
		handler: NewRouter(db, reg, env, zerolog.Nop()),
		db:      db,
		reg:     reg,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	body := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func (s *testServer) json(t *testing.T, method, path, token string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req, token)
}

func (s *testServer) register(t *testing.T, name, email string) (string, uint) {
	t.Helper()
	rec, body := s.json(t, http.MethodPost, "/api/register", "", map[string]any{
		"name":                  name,
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := body["user"].(map[string]any)
	return body["token"].(string), uint(user["id"].(float64))
}

func (s *testServer) admin(t *testing.T) (string, uint) {
	t.Helper()
	token, id := s.register(t, "Admin", "admin@techstore.test")
	_, _, err := s.reg.Admin.EnsureAdmin(context.Background(), "Admin", "admin@techstore.test", "")
	require.NoError(t, err)
	return token, id
}

func (s *testServer) productBySlug(t *testing.T, slug string) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, s.db.Where("slug = ?", slug).First(&p).Error)
	return p
}

func multipartBody(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngFile(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testEnv(t))

	rec, body := s.json(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s := newTestServer(t, testEnv(t))

	rec, body := s.json(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found.", body["message"])
}

func TestRegisterLoginAndCurrentUser(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	s.register(t, "Alice", "Alice@Example.com ")

	rec, body := s.json(t, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Bearer", body["token_type"])
	token := body["token"].(string)

	rec, body = s.json(t, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "client", user["role"])
	assert.Equal(t, false, user["is_admin"])
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	s.register(t, "Alice", "alice@example.com")

	rec, body := s.json(t, http.MethodPost, "/api/register", "", map[string]any{
		"name":                  "Other",
		"email":                 "alice@example.com",
		"password":              "short",
		"password_confirmation": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "password")
}

func TestLoginWithBadCredentials(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	s.register(t, "Alice", "alice@example.com")

	rec, body := s.json(t, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body["errors"], "email")
}

func TestLoginRevokesPreviousSessions(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	first, _ := s.register(t, "Alice", "alice@example.com")

	rec, body := s.json(t, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	second := body["token"].(string)

	rec, _ = s.json(t, http.MethodGet, "/api/user", first, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = s.json(t, http.MethodGet, "/api/user", second, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, _ := s.register(t, "Alice", "alice@example.com")

	rec, body := s.json(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out.", body["message"])

	rec, _ = s.json(t, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, testEnv(t))

	for _, path := range []string{"/api/user", "/api/user/orders", "/api/admin/stats"} {
		rec, body := s.json(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "Unauthenticated.", body["message"], path)
	}

	rec, _ := s.json(t, http.MethodGet, "/api/user", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWrongCurrentPassword(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, _ := s.register(t, "Alice", "alice@example.com")

	rec, body := s.json(t, http.MethodPut, "/api/user/password", token, map[string]any{
		"current_password":      "not-my-password",
		"password":              "newpassword1",
		"password_confirmation": "newpassword1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["errors"], "current_password")

	rec, _ = s.json(t, http.MethodPut, "/api/user/password", token, map[string]any{
		"current_password":      "password123",
		"password":              "newpassword1",
		"password_confirmation": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, _ := s.register(t, "Alice", "alice@example.com")
	s.register(t, "Bob", "bob@example.com")

	rec, _ := s.json(t, http.MethodPut, "/api/user/profile", token, map[string]any{
		"name":  "Alice",
		"email": "bob@example.com",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, body := s.json(t, http.MethodPut, "/api/user/profile", token, map[string]any{
		"name":  "Alice Martin",
		"email": "alice.martin@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice.martin@example.com", body["user"].(map[string]any)["email"])
}

func TestProductListing(t *testing.T) {
	s := newTestServer(t, testEnv(t))

	rec, body := s.json(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 7, meta["total"])
	assert.EqualValues(t, 12, meta["per_page"])
	assert.EqualValues(t, 1, meta["last_page"])
	assert.Len(t, body["data"], 7)
	assert.Contains(t, body, "links")

	rec, body = s.json(t, http.MethodGet, "/api/products?per_page=1000", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 500, body["meta"].(map[string]any)["per_page"])

	rec, body = s.json(t, http.MethodGet, "/api/products?per_page=2&page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta = body["meta"].(map[string]any)
	assert.EqualValues(t, 4, meta["last_page"])
	assert.EqualValues(t, 3, meta["from"])
	assert.Len(t, body["data"], 2)
}

func TestProductFilterByCategoryAndSearch(t *testing.T) {
	s := newTestServer(t, testEnv(t))

	var reseau models.Category
	require.NoError(t, s.db.Where("slug = ?", "reseau").First(&reseau).Error)

	rec, body := s.json(t, http.MethodGet, fmt.Sprintf("/api/products?category_id=%d&search=routeur", reseau.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	product := data[0].(map[string]any)
	assert.Equal(t, "Routeur Wi-Fi 6", product["name"])
	assert.Equal(t, "Réseau", product["category"].(map[string]any)["name"])

	rec, body = s.json(t, http.MethodGet, "/api/products?category_id=abc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["data"])
}

func TestInactiveProductsOnlyListedForAdmins(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	adminToken, _ := s.admin(t)
	clientToken, _ := s.register(t, "Alice", "alice@example.com")

	webcam := s.productBySlug(t, "webcam-full-hd")
	rec, _ := s.json(t, http.MethodPut, fmt.Sprintf("/api/products/%d", webcam.ID), adminToken, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, body := s.json(t, http.MethodGet, "/api/products?active=0", clientToken, nil)
	assert.EqualValues(t, 6, body["meta"].(map[string]any)["total"])

	_, body = s.json(t, http.MethodGet, "/api/products?active=0", adminToken, nil)
	assert.EqualValues(t, 7, body["meta"].(map[string]any)["total"])
}

func TestAdminUpdatesStock(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, _ := s.admin(t)
	ssd := s.productBySlug(t, "ssd-nvme-1to")

	rec, body := s.json(t, http.MethodPut, fmt.Sprintf("/api/products/%d", ssd.ID), token, map[string]any{"stock": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 3, data["stock"])
	assert.Equal(t, 89.99, data["price"])

	rec, _ = s.json(t, http.MethodPut, fmt.Sprintf("/api/products/%d", ssd.ID), token, map[string]any{"stock": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMultipartMethodOverride(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, _ := s.admin(t)
	mouse := s.productBySlug(t, "souris-ergonomique")

	body, contentType := multipartBody(t, map[string]string{
		"_method": "PUT",
		"name":    "Souris Verticale",
	}, pngFile(t))
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/products/%d", mouse.ID), body)
	req.Header.Set("Content-Type", contentType)

	rec, resp := s.do(t, req, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := resp["data"].(map[string]any)
	assert.Equal(t, "Souris Verticale", data["name"])

	stored := data["image"].(string)
	assert.True(t, strings.HasPrefix(stored, "products/"))
	assert.Equal(t, "http://localhost:8000/storage/"+stored, data["image_url"])

	rec, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/storage/"+stored, nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngFile(t), rec.Body.Bytes())
}

func TestAdminCatalogUnderAdminPrefix(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, _ := s.admin(t)

	rec, body := s.json(t, http.MethodPost, "/api/admin/categories", token, map[string]any{"name": "Stockage Externe"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := body["data"].(map[string]any)
	assert.Equal(t, "stockage-externe", category["slug"])

	rec, _ = s.json(t, http.MethodPost, "/api/admin/categories", token, map[string]any{"name": "Autre", "slug": "stockage-externe"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var reseau models.Category
	require.NoError(t, s.db.Where("slug = ?", "reseau").First(&reseau).Error)
	rec, _ = s.json(t, http.MethodDelete, fmt.Sprintf("/api/categories/%d", reseau.ID), token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNonAdminIsForbidden(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, _ := s.register(t, "Alice", "alice@example.com")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, "/api/admin/orders"},
		{http.MethodPost, "/api/products"},
	} {
		rec, body := s.json(t, tc.method, tc.path, token, map[string]any{})
		assert.Equal(t, http.StatusForbidden, rec.Code, tc.path)
		assert.Equal(t, "Access reserved for administrators.", body["message"], tc.path)
	}
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, id := s.admin(t)
	_, clientID := s.register(t, "Alice", "alice@example.com")

	rec, body := s.json(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You cannot delete your own account.", body["message"])

	rec, _ = s.json(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", clientID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.json(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", clientID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderStatusVisibleToCustomer(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	adminToken, _ := s.admin(t)
	clientToken, clientID := s.register(t, "Alice", "alice@example.com")

	keyboard := s.productBySlug(t, "clavier-mecanique-rgb")
	order, err := s.reg.Orders.PlaceOrder(context.Background(), clientID, "1 rue de la Paix, 75002 Paris", []services.NewOrderLine{
		{ProductID: keyboard.ID, Quantity: 2},
	})
	require.NoError(t, err)

	rec, body := s.json(t, http.MethodPatch, fmt.Sprintf("/api/admin/orders/%d/status", order.ID), adminToken, map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "shipped", body["order"].(map[string]any)["status"])

	rec, body = s.json(t, http.MethodGet, "/api/user/orders", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	got := data[0].(map[string]any)
	assert.Equal(t, "shipped", got["status"])
	assert.Equal(t, 259.98, got["total"])
	items := got["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, 129.99, items[0].(map[string]any)["unit_price"])

	rec, body = s.json(t, http.MethodGet, "/api/admin/orders?status=shipped", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)

	rec, body = s.json(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total_orders"])
	assert.Equal(t, 259.98, body["total_revenue"])
	assert.EqualValues(t, 2, body["total_users"])
	assert.EqualValues(t, 7, body["total_products"])
}

func TestLoginIsRateLimited(t *testing.T) {
	env := testEnv(t)
	env.LoginRatePerMinute = 2
	s := newTestServer(t, env)

	var codes []int
	for i := 0; i < 3; i++ {
		rec, _ := s.json(t, http.MethodPost, "/api/login", "", map[string]any{
			"email":    "nobody@example.com",
			"password": "password123",
		})
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusUnprocessableEntity, http.StatusUnprocessableEntity, http.StatusTooManyRequests}, codes)
}

func TestStockOutsideColumnRangeIsRejected(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, _ := s.admin(t)
	ssd := s.productBySlug(t, "ssd-nvme-1to")
	path := fmt.Sprintf("/api/products/%d", ssd.ID)

	rec, body := s.json(t, http.MethodPut, path, token, map[string]any{"stock": "99999999999999999999"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, body["errors"], "stock")

	rec, body = s.json(t, http.MethodPut, path, token, map[string]any{"price": "123456789012.50"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, body["errors"], "price")

	assert.Equal(t, 45, s.productBySlug(t, "ssd-nvme-1to").Stock)
}

func TestRegisterWithOverlongPassword(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	password := strings.Repeat("a", 80)

	rec, body := s.json(t, http.MethodPost, "/api/register", "", map[string]any{
		"name":                  "Alice",
		"email":                 "alice@example.com",
		"password":              password,
		"password_confirmation": password,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, body["errors"], "password")
}

func loginFrom(t *testing.T, s *testServer, forwardedFor string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"nobody@example.com","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec, _ := s.do(t, req, "")
	return rec.Code
}

func TestForwardedForIgnoredFromUntrustedPeer(t *testing.T) {
	env := testEnv(t)
	env.LoginRatePerMinute = 1
	s := newTestServer(t, env)

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, loginFrom(t, s, fmt.Sprintf("203.0.113.%d", i+1)))
	}
	assert.Equal(t, []int{http.StatusUnprocessableEntity, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestForwardedForHonouredFromTrustedProxy(t *testing.T) {
	env := testEnv(t)
	env.LoginRatePerMinute = 1
	// httptest requests come from 192.0.2.1
	env.TrustedProxies = []string{"192.0.2.0/24"}
	s := newTestServer(t, env)

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, loginFrom(t, s, fmt.Sprintf("203.0.113.%d", i+1)))
	}
	assert.Equal(t, []int{http.StatusUnprocessableEntity, http.StatusUnprocessableEntity, http.StatusUnprocessableEntity}, codes)

	assert.Equal(t, http.StatusTooManyRequests, loginFrom(t, s, "203.0.113.1"))
}

func TestOversizedBodyIsRejected(t *testing.T) {
	s := newTestServer(t, testEnv(t))
	token, _ := s.admin(t)

	body, contentType := multipartBody(t, map[string]string{"name": "Poster"}, bytes.Repeat([]byte{0xff}, maxBodyBytes+1))
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", contentType)
	rec, resp := s.do(t, req, token)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Equal(t, "The request body is too large.", resp["message"])

	payload := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec, _ = s.do(t, req, token)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
