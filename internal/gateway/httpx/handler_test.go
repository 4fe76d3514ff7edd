package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/menulink/ordercore/internal/catalog"
	catsync "github.com/menulink/ordercore/internal/catalog/sync"
	"github.com/menulink/ordercore/internal/handoff"
	"github.com/menulink/ordercore/internal/order"
	"github.com/menulink/ordercore/internal/pricing"
	"github.com/menulink/ordercore/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLoader struct {
	snap *catalog.Snapshot
	err  error
}

func (m *mockLoader) Load(context.Context, string) (*catalog.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snap, nil
}

type mockNotifier struct{}

func (m *mockNotifier) Subscribe(context.Context, string, func()) (catsync.Unsubscribe, error) {
	return func() error { return nil }, nil
}

type memoryStore struct {
	mu     sync.Mutex
	orders map[string]*order.ComposedOrder
}

func newMemoryStore() *memoryStore {
	return &memoryStore{orders: make(map[string]*order.ComposedOrder)}
}

func (m *memoryStore) Save(_ context.Context, o *order.ComposedOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*order.ComposedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, handoff.ErrOrderNotFound
	}
	return o, nil
}

func testSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot("biz-1", "v1", []catalog.Category{{ID: "mains", Name: "Mains"}}, []catalog.Item{
		{
			ID:         "burger",
			Name:       "Burger",
			BasePrice:  decimal.RequireFromString("45.00"),
			CategoryID: "mains",
			IsActive:   true,
			InStock:    true,
		},
	})
}

func newTestServer(t *testing.T, destination string) (*httptest.Server, *memoryStore) {
	t.Helper()

	loader := &mockLoader{snap: testSnapshot()}
	sessions := session.NewManager(loader, &mockNotifier{}, nil)
	t.Cleanup(sessions.CloseAll)

	composer := order.NewComposer("Burger Sarayi", pricing.LocaleTR)
	store := newMemoryStore()
	handler := NewHandler(sessions, composer, handoff.NewDeepLink("https://wa.me", destination), store)

	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func decodeInto(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

func openSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	res := doJSON(t, http.MethodPost, srv.URL+"/sessions", OpenSessionRequest{BusinessID: "biz-1"})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var sr SessionResponse
	decodeInto(t, res, &sr)
	return sr.SessionID
}

func TestOpenSessionValidation(t *testing.T) {
	srv, _ := newTestServer(t, "")

	res := doJSON(t, http.MethodPost, srv.URL+"/sessions", OpenSessionRequest{})
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestOpenSessionBusinessNotFound(t *testing.T) {
	loader := &mockLoader{err: fmt.Errorf("%w: business nope", catalog.ErrNotFound)}
	sessions := session.NewManager(loader, &mockNotifier{}, nil)
	handler := NewHandler(sessions, order.NewComposer("x", pricing.LocaleTR), handoff.NewDeepLink("https://wa.me", ""), newMemoryStore())
	srv := httptest.NewServer(NewRouter(handler))
	defer srv.Close()

	res := doJSON(t, http.MethodPost, srv.URL+"/sessions", OpenSessionRequest{BusinessID: "nope"})
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCartFlow(t *testing.T) {
	srv, _ := newTestServer(t, "")
	id := openSession(t, srv)

	res := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/cart/lines", AddLineRequest{ItemID: "burger"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	var v CartResponse
	decodeInto(t, res, &v)
	require.Len(t, v.Lines, 1)
	key := v.Lines[0].Key

	res = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/cart/lines/"+key+"/increment", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	decodeInto(t, res, &v)
	assert.Equal(t, 2, v.ItemCount)
	assert.Equal(t, "90.00", v.Total)

	res = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/cart/lines/"+key+"/decrement", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	decodeInto(t, res, &v)
	assert.Equal(t, 1, v.ItemCount)

	res = doJSON(t, http.MethodDelete, srv.URL+"/sessions/"+id+"/cart/lines/"+key, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	decodeInto(t, res, &v)
	assert.Empty(t, v.Lines)
}

func TestAddLineUnknownItem(t *testing.T) {
	srv, _ := newTestServer(t, "")
	id := openSession(t, srv)

	res := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/cart/lines", AddLineRequest{ItemID: "ghost"})
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestGetCatalog(t *testing.T) {
	srv, _ := newTestServer(t, "")
	id := openSession(t, srv)

	res := doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/catalog", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var c CatalogResponse
	decodeInto(t, res, &c)
	assert.Equal(t, "v1", c.Version)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Burger", c.Items[0].Name)
	assert.True(t, c.Items[0].Available)
}

func TestCheckoutValidation(t *testing.T) {
	srv, _ := newTestServer(t, "")
	id := openSession(t, srv)

	// Missing name is reported before the empty cart.
	res := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/checkout", CheckoutRequest{CustomerPhone: "05551112233"})
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	var e ErrorResponse
	decodeInto(t, res, &e)
	assert.Equal(t, "missing_name", e.Error)

	// The session survives a validation failure.
	res = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/cart", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestCheckoutToStore(t *testing.T) {
	srv, store := newTestServer(t, "")
	id := openSession(t, srv)

	res := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/cart/lines", AddLineRequest{ItemID: "burger"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/checkout", CheckoutRequest{
		CustomerName:  "Ali Veli",
		CustomerPhone: "05551112233",
		Channel:       ChannelStore,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var cr CheckoutResponse
	decodeInto(t, res, &cr)
	assert.Equal(t, "45.00", cr.Order.GrandTotal)
	assert.Empty(t, cr.DeepLink)
	assert.Contains(t, cr.Message, "1x Burger - ₺45,00")

	// Persisted and retrievable.
	res = doJSON(t, http.MethodGet, srv.URL+"/orders/"+cr.Order.ID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var got OrderResponse
	decodeInto(t, res, &got)
	assert.Equal(t, "Ali Veli", got.CustomerName)

	store.mu.Lock()
	assert.Len(t, store.orders, 1)
	store.mu.Unlock()

	// The session completed and is gone.
	res = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/cart", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCheckoutWhatsApp(t *testing.T) {
	srv, _ := newTestServer(t, "0555 111 22 33")
	id := openSession(t, srv)

	res := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/cart/lines", AddLineRequest{ItemID: "burger"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/checkout", CheckoutRequest{
		CustomerName:  "Ali Veli",
		CustomerPhone: "05551112233",
		Channel:       ChannelWhatsApp,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var cr CheckoutResponse
	decodeInto(t, res, &cr)
	assert.Contains(t, cr.DeepLink, "https://wa.me/05551112233?text=")
}

func TestCheckoutWhatsAppWithoutDestination(t *testing.T) {
	srv, _ := newTestServer(t, "")
	id := openSession(t, srv)

	res := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/cart/lines", AddLineRequest{ItemID: "burger"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/checkout", CheckoutRequest{
		CustomerName:  "Ali Veli",
		CustomerPhone: "05551112233",
		Channel:       ChannelWhatsApp,
	})
	require.Equal(t, http.StatusConflict, res.StatusCode)
	var e ErrorResponse
	decodeInto(t, res, &e)
	assert.Equal(t, "missing_destination", e.Error)

	// Nothing was handed off, so the session stays open for correction.
	res = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/cart", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestCloseSession(t *testing.T) {
	srv, _ := newTestServer(t, "")
	id := openSession(t, srv)

	res := doJSON(t, http.MethodDelete, srv.URL+"/sessions/"+id, nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/cart", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestGetOrderNotFound(t *testing.T) {
	srv, _ := newTestServer(t, "")

	res := doJSON(t, http.MethodGet, srv.URL+"/orders/missing", nil)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
