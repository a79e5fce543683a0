package controller_test

import (
	"bytes"
	"context"
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
	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/iyhunko/supermarket-pos/internal/service"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStoreService is a mock implementation of controller.StoreService
type MockStoreService struct {
	mock.Mock
}

func (m *MockStoreService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockStoreService) ProductImage(ctx context.Context, id int64) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStoreService) Purchase(ctx context.Context, productID int64, qty int) (*model.Sale, error) {
	args := m.Called(ctx, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sale), args.Error(1)
}

func (m *MockStoreService) CreateProduct(ctx context.Context, password string, input service.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, password, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockStoreService) RecentSales(ctx context.Context, limit int) ([]*model.Sale, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Sale), args.Error(1)
}

const (
	testStoreName   = "Corner Shop"
	testSalesLimit  = 5
	testFlashSecret = "test-session-secret"
)

func newRouter(svc controller.StoreService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	flash := controller.NewCookieFlash(testFlashSecret)
	return httpAPI.InitRouter(
		&config.Config{},
		gin.New(),
		controller.New(),
		controller.NewStoreController(svc, flash, testStoreName),
		controller.NewAdminController(svc, flash, testStoreName, testSalesLimit),
	)
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postMultipart(t *testing.T, router http.Handler, path string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "milk.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// follow replays the cookies of a redirect response on a GET of its location.
func follow(router http.Handler, redirect *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, redirect.Header().Get("Location"), nil)
	for _, cookie := range redirect.Result().Cookies() {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
