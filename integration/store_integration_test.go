//go:build integration

package integration

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/supermarket-pos/internal/config"
	httpAPI "github.com/iyhunko/supermarket-pos/internal/http"
	"github.com/iyhunko/supermarket-pos/internal/http/controller"
	reposql "github.com/iyhunko/supermarket-pos/internal/repository/sql"
	"github.com/iyhunko/supermarket-pos/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStoreRouter(testDB *TestDB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := service.NewStoreService(
		reposql.NewProductRepository(testDB.DB),
		reposql.NewSaleRepository(testDB.DB),
		reposql.NewTransactionalRepository(testDB.DB),
		"1112",
		false,
	)
	flash := controller.NewCookieFlash("integration-secret")

	return httpAPI.InitRouter(
		&config.Config{},
		gin.New(),
		controller.New(),
		controller.NewStoreController(store, flash, "Corner Shop"),
		controller.NewAdminController(store, flash, "Corner Shop", 10),
	)
}

func submitProduct(t *testing.T, router http.Handler, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "product.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func buy(router http.Handler, id, qty string) *httptest.ResponseRecorder {
	form := url.Values{"id": {id}, "qty": {qty}}
	req := httptest.NewRequest(http.MethodPost, "/buy", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func followRedirect(router http.Handler, redirect *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, redirect.Header().Get("Location"), nil)
	for _, cookie := range redirect.Result().Cookies() {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStoreHTTP_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	testDB.TruncateTables(t)

	router := setupStoreRouter(testDB)
	image := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

	t.Run("admin adds milk", func(t *testing.T) {
		w := submitProduct(t, router, map[string]string{
			"password": "1112",
			"name":     "Milk",
			"price":    "10",
			"stock":    "5",
		}, image)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))

		page := followRedirect(router, w)
		assert.Equal(t, http.StatusOK, page.Code)
		assert.Contains(t, page.Body.String(), "Milk - 10.00")
		assert.Equal(t, 1, testDB.CountRows(t, "products"))
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		w := submitProduct(t, router, map[string]string{
			"password": "nope",
			"name":     "Eggs",
			"price":    "3",
			"stock":    "12",
		}, nil)
		page := followRedirect(router, w)
		assert.Contains(t, page.Body.String(), controller.MsgWrongPassword)
		assert.Equal(t, 1, testDB.CountRows(t, "products"))
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		w := submitProduct(t, router, map[string]string{
			"password": "1112",
			"name":     "Milk",
			"price":    "1",
			"stock":    "1",
		}, nil)
		page := followRedirect(router, w)
		assert.Contains(t, page.Body.String(), controller.MsgDuplicateName)
		assert.Equal(t, 1, testDB.CountRows(t, "products"))
	})

	t.Run("image is served", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/image/1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
		assert.Equal(t, image, w.Body.Bytes())
	})

	t.Run("purchase within stock", func(t *testing.T) {
		w := buy(router, "1", "2")
		assert.Equal(t, http.StatusFound, w.Code)

		page := followRedirect(router, w)
		assert.Contains(t, page.Body.String(), "Purchase completed. Total: 20.00")
		assert.Equal(t, 1, testDB.CountRows(t, "sales"))

		var stock int
		require.NoError(t, testDB.DB.QueryRow("SELECT stock FROM products WHERE id = 1").Scan(&stock))
		assert.Equal(t, 3, stock)
	})

	t.Run("purchase over stock", func(t *testing.T) {
		page := followRedirect(router, buy(router, "1", "10"))
		assert.Contains(t, page.Body.String(), controller.MsgInsufficientQuantity)
		assert.Equal(t, 1, testDB.CountRows(t, "sales"))
	})

	t.Run("recent sales on admin page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "20.00")
	})
}
