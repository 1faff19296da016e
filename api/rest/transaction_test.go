package rest_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/krtchnt/zenki/model"
	"github.com/krtchnt/zenki/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_GiftScenario(t *testing.T) {
	s := newServer(t)
	u1, tok1 := s.login(t, "U1")
	u2, tok2 := s.login(t, "U2")
	g1 := testutil.SeedGame(t, s.db, "G1")
	p1 := testutil.SeedPurchase(t, s.db, g1.GID, model.PurchaseGame, "G1 base game")

	w := postJSON(s.r, fmt.Sprintf("/api/games/%d/wishlist", g1.GID), nil, tok2)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "in_wishlist", decode(t, w)["status"])

	w = postJSON(s.r, "/api/transactions", map[string]interface{}{
		"purchase_id":    p1.PID,
		"receiver_id":    u2,
		"payment_method": "credit_card",
		"amount":         1,
	}, tok1)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tid := int64(decode(t, w)["tid"].(float64))

	w = doRequest(s.r, http.MethodGet, fmt.Sprintf("/api/users/%d/wishlist", u2), nil, tok2)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["wishlist"])

	w = doRequest(s.r, http.MethodGet, fmt.Sprintf("/api/users/%d/library", u2), nil, tok2)
	require.Equal(t, http.StatusOK, w.Code)
	lib := decode(t, w)["library"].([]interface{})
	require.Len(t, lib, 1)
	assert.Equal(t, float64(g1.GID), lib[0].(map[string]interface{})["gid"])

	w = doRequest(s.r, http.MethodGet, fmt.Sprintf("/api/users/%d/transactions", u1), nil, tok1)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode(t, w)["transactions"].([]interface{})
	require.Len(t, hist, 1)
	assert.Equal(t, float64(g1.GID), hist[0].(map[string]interface{})["gid"])

	// Receiver can read the transaction; history stays private to the payer.
	w = doRequest(s.r, http.MethodGet, fmt.Sprintf("/api/transactions/%d", tid), nil, tok2)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Credit Card", decode(t, w)["payment_method_name"])
	w = doRequest(s.r, http.MethodGet, fmt.Sprintf("/api/users/%d/transactions", u1), nil, tok2)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransaction_Errors(t *testing.T) {
	s := newServer(t)
	_, tok := s.login(t, "U1")
	_, otherTok := s.login(t, "U3")
	g := testutil.SeedGame(t, s.db, "G1")
	p := testutil.SeedPurchase(t, s.db, g.GID, model.PurchaseDLC, "dlc")

	w := postJSON(s.r, "/api/transactions", map[string]interface{}{
		"purchase_id": p.PID, "payment_method": "bitcoin", "amount": 1,
	}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payment method", decode(t, w)["error"])

	w = postJSON(s.r, "/api/transactions", map[string]interface{}{
		"purchase_id": 9999, "payment_method": "paypal", "amount": 1,
	}, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(s.r, "/api/transactions", map[string]interface{}{
		"purchase_id": p.PID, "payment_method": "paypal",
	}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code, "amount is required")

	w = postJSON(s.r, "/api/transactions", map[string]interface{}{
		"purchase_id": p.PID, "payment_method": "paypal", "amount": -5,
	}, tok)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(s.r, "/api/transactions", map[string]interface{}{
		"purchase_id": p.PID, "payment_method": "paypal", "amount": 0,
	}, tok)
	require.Equal(t, http.StatusCreated, w.Code, "self purchase with zero amount")
	tid := int64(decode(t, w)["tid"].(float64))

	assert.Equal(t, http.StatusNotFound, doRequest(s.r, http.MethodGet, fmt.Sprintf("/api/transactions/%d", tid), nil, otherTok).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(s.r, http.MethodGet, "/api/transactions/424242", nil, tok).Code)
}

func TestPurchases(t *testing.T) {
	s := newServer(t)
	_, tok := s.login(t, "U1")
	g := testutil.SeedGame(t, s.db, "G1")
	p := testutil.SeedPurchase(t, s.db, g.GID, model.PurchaseSubscriptions, "monthly")

	w := doRequest(s.r, http.MethodGet, fmt.Sprintf("/api/purchases/%d", p.PID), nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Subscriptions", decode(t, w)["type_name"])

	assert.Equal(t, http.StatusNotFound, doRequest(s.r, http.MethodGet, "/api/purchases/999", nil, tok).Code)

	w = doRequest(s.r, http.MethodGet, fmt.Sprintf("/api/games/%d/purchases", g.GID), nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["purchases"], 1)
}

func TestWishlist_RemoveAndStatus(t *testing.T) {
	s := newServer(t)
	_, tok := s.login(t, "U1")
	g := testutil.SeedGame(t, s.db, "G1")
	path := fmt.Sprintf("/api/games/%d/wishlist", g.GID)

	require.Equal(t, http.StatusOK, postJSON(s.r, path, nil, tok).Code)
	w := doRequest(s.r, http.MethodDelete, path, nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not_in_wishlist", decode(t, w)["status"])

	w = doRequest(s.r, http.MethodGet, path, nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not_in_wishlist", decode(t, w)["status"])
}
