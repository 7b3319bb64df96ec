package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/shop"
)

type mockAddressReader struct{ mock.Mock }

var _ AddressReader = (*mockAddressReader)(nil)

func (m *mockAddressReader) ListByUser(ctx context.Context, userID int64) ([]shop.Address, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]shop.Address)
	return out, args.Error(1)
}

func (m *mockAddressReader) ByIDForUser(ctx context.Context, userID, addressID int64) (*shop.Address, error) {
	args := m.Called(ctx, userID, addressID)
	a, _ := args.Get(0).(*shop.Address)
	return a, args.Error(1)
}

func TestAddressRoutesRejectAnonymousRequests(t *testing.T) {
	reader := &mockAddressReader{}
	h := &AddressesHandler{Addresses: reader}

	for _, target := range []string{"/addresses", "/addresses/11"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
	assert.Empty(t, reader.Calls)
}

func TestListAddressesAnswersOwnAddresses(t *testing.T) {
	reader := &mockAddressReader{}
	h := &AddressesHandler{Addresses: reader}
	reader.On("ListByUser", mock.Anything, int64(7)).Return([]shop.Address{
		{ID: 11, UserID: 7, Street: "Avenida Paulista", City: "São Paulo", State: "SP", IsDefault: true},
	}, nil)

	rec := serve(h, authedRequest(http.MethodGet, "/addresses", nil, 7))

	require.Equal(t, http.StatusOK, rec.Code)
	var out []shop.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, int64(11), out[0].ID)
}

func TestGetAddressHidesForeignAddress(t *testing.T) {
	reader := &mockAddressReader{}
	h := &AddressesHandler{Addresses: reader}
	reader.On("ByIDForUser", mock.Anything, int64(7), int64(99)).Return(nil, nil)

	rec := serve(h, authedRequest(http.MethodGet, "/addresses/99", nil, 7))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
