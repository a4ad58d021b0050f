package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"shopping-mart/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, client *http.Client, target string) (int, string) {
	t.Helper()

	resp, err := client.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, client *http.Client, target string, form url.Values) (int, string) {
	t.Helper()

	resp, err := client.PostForm(target, form)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func getCart(t *testing.T, client *http.Client, baseURL string) (count int, total string) {
	t.Helper()

	resp, err := client.Get(baseURL + "/api/cart")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Count int    `json:"count"`
		Total string `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Count, body.Total
}

// runCheckoutJourney adds p1 twice, inspects the cart and checks out.
func runCheckoutJourney(t *testing.T, baseURL string) {
	client := NewBrowser(t)

	for i := 0; i < 2; i++ {
		status, body := post(t, client, baseURL+"/cart/add", url.Values{"product_id": {"p1"}, "return": {"products"}})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, `id="result-count"`)
	}

	status, body := get(t, client, baseURL+"/cart")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `value="2" data-qty="p1"`)
	assert.Contains(t, body, `<td class="subtotal">$7.00</td>`)
	assert.Contains(t, body, `<span id="cart-count">2</span>`)

	status, body = post(t, client, baseURL+"/checkout", url.Values{"name": {"Jane Doe"}, "address": {"1 Main St"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<span id="order-name">Jane Doe</span>`)
	assert.Contains(t, body, `<span id="order-total">$7.00</span>`)

	count, total := getCart(t, client, baseURL)
	assert.Equal(t, 0, count)
	assert.Equal(t, "0.00", total)
}

func TestStorefront_Memory_Integration(t *testing.T) {
	server := NewTestServer(t, storage.NewMemory())

	t.Run("Checkout journey", func(t *testing.T) {
		runCheckoutJourney(t, server.URL)
	})

	t.Run("Blank name keeps cart", func(t *testing.T) {
		client := NewBrowser(t)

		post(t, client, server.URL+"/cart/add", url.Values{"product_id": {"p4"}, "return": {"home"}})

		status, body := post(t, client, server.URL+"/checkout", url.Values{"name": {"  "}})
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Contains(t, body, "Please enter your full name to proceed.")

		count, total := getCart(t, client, server.URL)
		assert.Equal(t, 1, count)
		assert.Equal(t, "1.20", total)
	})

	t.Run("Visitors do not share carts", func(t *testing.T) {
		alice := NewBrowser(t)
		bob := NewBrowser(t)

		post(t, alice, server.URL+"/cart/add", url.Values{"product_id": {"p2"}})

		aliceCount, _ := getCart(t, alice, server.URL)
		bobCount, _ := getCart(t, bob, server.URL)
		assert.Equal(t, 1, aliceCount)
		assert.Equal(t, 0, bobCount)
	})

	t.Run("Live search fragment", func(t *testing.T) {
		resp, err := NewBrowser(t).Get(server.URL + "/fragments/products?q=milk")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "1", resp.Header.Get("X-Result-Count"))
	})

	t.Run("Health and metrics", func(t *testing.T) {
		status, body := get(t, http.DefaultClient, server.URL+"/health")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "healthy")

		status, body = get(t, http.DefaultClient, server.URL+"/metrics")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "storefront_views_rendered_total")
	})
}

func TestStorefront_Postgres_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)

	t.Run("Checkout journey", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		runCheckoutJourney(t, NewTestServer(t, testDB.Storage).URL)
	})

	t.Run("Cart survives a restart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		client := NewBrowser(t)

		first := NewTestServer(t, testDB.Storage)
		post(t, client, first.URL+"/cart/add", url.Values{"product_id": {"p8"}})
		post(t, client, first.URL+"/cart/add", url.Values{"product_id": {"p3"}})

		// A fresh stack over the same database sees the same cart. Cookies
		// ignore the port, so the browser presents the same session.
		second := NewTestServer(t, testDB.Storage)

		count, total := getCart(t, client, second.URL)
		assert.Equal(t, 2, count)
		assert.Equal(t, "6.05", total)
	})
}
