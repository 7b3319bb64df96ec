package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/catalog"
	"shop-backend/internal/shop"
)

type mockProductReader struct{ mock.Mock }

var _ ProductReader = (*mockProductReader)(nil)

func (m *mockProductReader) List(ctx context.Context, p catalog.ListParams) ([]shop.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).([]shop.Product)
	return out, args.Error(1)
}

func (m *mockProductReader) BySlug(ctx context.Context, slug string) (*shop.Product, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*shop.Product)
	return p, args.Error(1)
}

func TestListProductsClampsPaging(t *testing.T) {
	cases := []struct {
		name   string
		target string
		want   catalog.ListParams
	}{
		{"defaults", "/products", catalog.ListParams{Limit: 12}},
		{"limit too large", "/products?limit=500", catalog.ListParams{Limit: 100}},
		{"limit not positive", "/products?limit=-3", catalog.ListParams{Limit: 12}},
		{"negative offset", "/products?offset=-1&limit=20", catalog.ListParams{Limit: 20}},
		{"search query", "/products?q=keyboard", catalog.ListParams{Query: "keyboard", Limit: 12}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reader := &mockProductReader{}
			h := &ProductsHandler{Products: reader, Redis: deadRedis()}
			reader.On("List", mock.Anything, tc.want).Return([]shop.Product{}, nil)

			rec := serve(h, httptest.NewRequest(http.MethodGet, tc.target, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			reader.AssertExpectations(t)
		})
	}
}

func TestGetProductFallsBackToDatabaseWhenCacheIsDown(t *testing.T) {
	reader := &mockProductReader{}
	h := &ProductsHandler{Products: reader, Redis: deadRedis()}
	reader.On("BySlug", mock.Anything, "mechanical-keyboard").Return(&shop.Product{
		ID:       1,
		Name:     "Mechanical Keyboard",
		Slug:     "mechanical-keyboard",
		Price:    decimal.RequireFromString("350.00"),
		Stock:    12,
		IsActive: true,
	}, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/products/mechanical-keyboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var p shop.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "mechanical-keyboard", p.Slug)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("350.00")))
}

func TestGetProductAnswersNotFoundForUnknownSlug(t *testing.T) {
	reader := &mockProductReader{}
	h := &ProductsHandler{Products: reader, Redis: deadRedis()}
	reader.On("BySlug", mock.Anything, "nope").Return(nil, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/products/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
