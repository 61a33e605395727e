package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-track/internal/models"
)

func TestRegister_CreatesCustomer(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{
		Name:     "Acme Logistics",
		Email:    "ops@acme.example",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Acme Logistics", created.Name)
	assert.False(t, created.ID.IsZero())
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	env := newTestEnv(t)

	req := models.RegisterRequest{Name: "Acme", Email: "ops@acme.example"}
	w := env.do(t, http.MethodPost, "/api/customers/register", "", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/customers/register", "", req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_RejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{Email: "ops@acme.example"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{Name: "Acme", Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{Name: "Acme", Email: "ops@acme.example", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthenticate_ByEmailWithPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{
		Name:     "Acme",
		Email:    "ops@acme.example",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth", "", models.AuthRequest{
		Email:    "ops@acme.example",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, resp.Customer.ID.Hex(), resp.CustomerID)
}

func TestAuthenticate_WrongPasswordUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{
		Name:     "Acme",
		Email:    "ops@acme.example",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth", "", models.AuthRequest{
		Email:    "ops@acme.example",
		Password: "wrong-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_AccountWithoutPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{
		Name:  "Acme",
		Email: "ops@acme.example",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPost, "/api/auth", "", models.AuthRequest{CustomerID: created.ID.Hex()})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_UnknownCustomerUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth", "", models.AuthRequest{Email: "nobody@acme.example"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateMe_ChangesProfile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{
		Name:  "Acme",
		Email: "ops@acme.example",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPut, "/api/customers/me", created.ID.Hex(), models.RegisterRequest{
		Name:  "Acme Logistics",
		Email: "fleet@acme.example",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Acme Logistics", updated.Name)
	assert.Equal(t, "fleet@acme.example", updated.Email)
}

func TestUpdateMe_TakenEmailConflict(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{
		Name: "Acme", Email: "ops@acme.example",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{
		Name: "Globex", Email: "ops@globex.example",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var globex models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &globex))

	w = env.do(t, http.MethodPut, "/api/customers/me", globex.ID.Hex(), models.RegisterRequest{
		Name: "Globex", Email: "ops@acme.example",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteMe_RemovesAccount(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{
		Name: "Acme", Email: "ops@acme.example",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodDelete, "/api/customers/me", created.ID.Hex(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/customers/me", created.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMe_ReturnsAuthenticatedCustomer(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/customers/register", "", models.RegisterRequest{
		Name:  "Acme",
		Email: "ops@acme.example",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodGet, "/api/customers/me", created.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, created.ID, me.ID)
}
