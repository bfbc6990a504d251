package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	admindomain "github.com/aurelia-gems/storefront/internal/admin/domain"
	adminstore "github.com/aurelia-gems/storefront/internal/admin/store"
	"github.com/aurelia-gems/storefront/internal/catalog/cache"
	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/internal/catalog/usecase/command"
	"github.com/aurelia-gems/storefront/internal/catalog/usecase/query"
	"github.com/aurelia-gems/storefront/internal/upload"
	"github.com/aurelia-gems/storefront/pkg/auth"
)

type memRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

func (r *memRepo) ListProducts(context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memRepo) ListCategories(context.Context) ([]string, error) { return nil, nil }

func (r *memRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memRepo) Insert(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *memRepo) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.products[p.ID] = *p
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

type testVerifier struct{}

func (testVerifier) Verify(identifier, secret string) bool {
	return identifier == "admin@example.com" && secret == "correct horse"
}

// The handler registers its Prometheus collectors globally, so the
// whole package shares one instance.
var (
	setupOnce  sync.Once
	testRouter *mux.Router
	testRepo   *memRepo
	testToken  string
)

func setup(t *testing.T) {
	t.Helper()
	setupOnce.Do(func() {
		testRepo = &memRepo{products: map[string]domain.Product{
			"p1": {
				ID: "p1", Title: "Gold Ring", Price: 1299, Category: "Rings",
				InStock: true, Featured: true,
				DateAdded: time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
			},
			"p2": {
				ID: "p2", Title: "Silver Chain", Price: 89.5, Category: "Necklaces",
				InStock: true,
				DateAdded: time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC),
			},
			"p3": {
				ID: "p3", Title: "Pearl Earrings", Price: 240, Category: "Earrings",
				DateAdded: time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC),
			},
		}}

		machine := admindomain.NewMachine(context.Background(), testVerifier{}, adminstore.NewMemorySessionStore(), admindomain.DefaultLimits())
		require.NoError(t, machine.Login(context.Background(), "admin@example.com", "correct horse"))

		tokens, err := auth.NewTokenManager([]byte("test-secret"), time.Hour)
		require.NoError(t, err)
		testToken, err = tokens.Generate("admin@example.com", "admin")
		require.NoError(t, err)

		dir, err := os.MkdirTemp("", "uploads")
		require.NoError(t, err)
		storage, err := upload.NewLocalStorage(dir, "/uploads")
		require.NoError(t, err)

		c := cache.New(testRepo, time.Millisecond)

		handler := NewCatalogHandler(
			command.NewCreateProductHandler(testRepo, machine, c, nil),
			command.NewUpdateProductHandler(testRepo, machine, c, nil),
			command.NewDeleteProductHandler(testRepo, machine, c, nil),
			query.NewListProductsHandler(c),
			query.NewGetProductHandler(c, testRepo),
			query.NewGetFacetsHandler(c),
			query.NewFeaturedProductsHandler(c),
			upload.NewService(storage),
			testRepo,
			AdminMiddleware(tokens, machine),
		)

		testRouter = mux.NewRouter()
		handler.RegisterRoutes(testRouter)
	})
}

func do(t *testing.T, method, path string, body []byte, authorized bool) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestListProductsEndpoint(t *testing.T) {
	setup(t)

	t.Run("plain listing", func(t *testing.T) {
		rec, resp := do(t, http.MethodGet, "/api/products", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.GreaterOrEqual(t, data["total_items"].(float64), 3.0)
	})

	t.Run("search narrows the result", func(t *testing.T) {
		rec, resp := do(t, http.MethodGet, "/api/products?search=pearl", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)

		data := resp.Data.(map[string]interface{})
		products := data["products"].([]interface{})
		require.Len(t, products, 1)
		assert.Equal(t, "Pearl Earrings", products[0].(map[string]interface{})["title"])
	})

	t.Run("sort and paging parameters", func(t *testing.T) {
		rec, resp := do(t, http.MethodGet, "/api/products?sort=price-asc&page=1&page_size=2", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)

		data := resp.Data.(map[string]interface{})
		products := data["products"].([]interface{})
		require.Len(t, products, 2)
		first := products[0].(map[string]interface{})["price"].(float64)
		second := products[1].(map[string]interface{})["price"].(float64)
		assert.LessOrEqual(t, first, second)
	})
}

func TestGetProductEndpoint(t *testing.T) {
	setup(t)

	t.Run("found", func(t *testing.T) {
		rec, resp := do(t, http.MethodGet, "/api/products/p1", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Gold Ring", resp.Data.(map[string]interface{})["title"])
	})

	t.Run("unknown id", func(t *testing.T) {
		rec, resp := do(t, http.MethodGet, "/api/products/nope", nil, false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.False(t, resp.Success)
	})
}

func TestFacetsAndFeaturedEndpoints(t *testing.T) {
	setup(t)

	t.Run("facets", func(t *testing.T) {
		rec, resp := do(t, http.MethodGet, "/api/products/facets", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)

		data := resp.Data.(map[string]interface{})
		assert.NotEmpty(t, data["categories"])
		assert.NotNil(t, data["min_price"])
	})

	t.Run("featured", func(t *testing.T) {
		rec, resp := do(t, http.MethodGet, "/api/products/featured", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)

		products := resp.Data.([]interface{})
		require.NotEmpty(t, products)
		for _, p := range products {
			assert.True(t, p.(map[string]interface{})["featured"].(bool))
		}
	})
}

func TestMutationEndpoints(t *testing.T) {
	setup(t)

	t.Run("create requires a token", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"title": "New Ring", "price": "50", "category": "Rings",
		})
		rec, _ := do(t, http.MethodPost, "/api/products", body, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create, update, delete round trip", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"title": "Amber Brooch", "price": "$120.00", "category": "Brooches",
			"tags": []string{"amber"},
		})
		rec, resp := do(t, http.MethodPost, "/api/products", body, true)
		require.Equal(t, http.StatusCreated, rec.Code)

		created := resp.Data.(map[string]interface{})
		id := created["id"].(string)
		assert.Equal(t, 120.0, created["price"].(float64))

		body, _ = json.Marshal(map[string]interface{}{"price": "99"})
		rec, resp = do(t, http.MethodPut, "/api/products/"+id, body, true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 99.0, resp.Data.(map[string]interface{})["price"].(float64))
		assert.Equal(t, "Amber Brooch", resp.Data.(map[string]interface{})["title"])

		rec, _ = do(t, http.MethodDelete, "/api/products/"+id, nil, true)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, _ = do(t, http.MethodDelete, "/api/products/"+id, nil, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("validation failures map to 400", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"title": "Ring", "price": "not a price", "category": "Rings",
		})
		rec, resp := do(t, http.MethodPost, "/api/products", body, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, resp.Success)
	})
}

func TestUploadImageEndpoint(t *testing.T) {
	setup(t)

	encodePNG := func(t *testing.T) []byte {
		t.Helper()
		var buf bytes.Buffer
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		require.NoError(t, png.Encode(&buf, img))
		return buf.Bytes()
	}

	multipartBody := func(t *testing.T, field, filename, contentType string, payload []byte) ([]byte, string) {
		t.Helper()
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes(), w.FormDataContentType()
	}

	t.Run("accepts a png", func(t *testing.T) {
		body, contentType := multipartBody(t, "image", "ring.png", "image/png", encodePNG(t))

		req := httptest.NewRequest(http.MethodPost, "/api/products/image", bytes.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+testToken)
		rec := httptest.NewRecorder()
		testRouter.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		url := resp.Data.(map[string]interface{})["url"].(string)
		assert.Contains(t, url, "/uploads/")
		assert.Contains(t, url, "_ring.png")
	})

	t.Run("rejects a disallowed type", func(t *testing.T) {
		body, contentType := multipartBody(t, "image", "doc.pdf", "application/pdf", []byte("%PDF-1.4"))

		req := httptest.NewRequest(http.MethodPost, "/api/products/image", bytes.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+testToken)
		rec := httptest.NewRecorder()
		testRouter.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a missing file field", func(t *testing.T) {
		body, contentType := multipartBody(t, "wrong", "ring.png", "image/png", encodePNG(t))

		req := httptest.NewRequest(http.MethodPost, "/api/products/image", bytes.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+testToken)
		rec := httptest.NewRecorder()
		testRouter.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
