package integration

import (
	"net/http"
	"testing"

	"expensetracker/internal/models"
)

func TestAuthFlow_RegisterLoginUser(t *testing.T) {
	app := setupApp(t)

	// Step 1: Register
	token, userID := app.registerUser(t, "auth@test.com", "password123")
	if token == "" || userID == "" {
		t.Fatal("expected token and user ID from registration")
	}

	// Step 2: Login with same credentials, email case-insensitive
	loginToken := app.loginUser(t, "Auth@Test.com", "password123")

	// Step 3: Fetch the current user
	rec := app.request("GET", "/api/auth/user", "", loginToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "auth@test.com" || user["_id"] != userID {
		t.Errorf("unexpected user %v", user)
	}
}

func TestAuthFlow_RegisterDuplicateEmail(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "dup@test.com", "password123")

	rec := app.request("POST", "/api/auth/register",
		`{"name":"Again","email":"dup@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "DUPLICATE_EMAIL" {
		t.Errorf("expected DUPLICATE_EMAIL, got %v", code)
	}
}

func TestAuthFlow_LoginWrongPassword(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "wrong@test.com", "password123")

	rec := app.request("POST", "/api/auth/login", `{"email":"wrong@test.com","password":"nope"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %v", code)
	}
}

// Every protected route answers an unauthenticated request with the same
// 401 body shape, and no handler runs.
func TestAuthFlow_ProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)
	const id = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"

	routes := []struct{ method, path string }{
		{"GET", "/api/auth/user"},
		{"GET", "/api/expenses"},
		{"GET", "/api/expenses/monthly"},
		{"GET", "/api/expenses/analytics"},
		{"GET", "/api/expenses/" + id},
		{"POST", "/api/expenses"},
		{"PUT", "/api/expenses/" + id},
		{"DELETE", "/api/expenses/" + id},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			for _, token := range []string{"", "not-a-jwt"} {
				body := `{"title":"Coffee","amount":4.5,"category":"Food"}`
				rec := app.request(route.method, route.path, body, token)
				if rec.Code != http.StatusUnauthorized {
					t.Fatalf("token %q: expected 401, got %d", token, rec.Code)
				}
				if code := errorCode(t, rec); code != "UNAUTHORIZED" && code != "INVALID_TOKEN" {
					t.Errorf("token %q: unexpected code %s", token, code)
				}
			}
		})
	}

	var count int64
	app.DB.Model(&models.Expense{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected requests created %d expenses", count)
	}
}

func TestAuthFlow_TokenForDeletedUser(t *testing.T) {
	app := setupApp(t)

	token, userID := app.registerUser(t, "gone@test.com", "password123")
	if err := app.DB.Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	rec := app.request("GET", "/api/expenses", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN, got %s", code)
	}
}

func TestPublicEndpoints(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if db := parseJSON(t, rec)["database"]; db != "connected" {
		t.Errorf("expected connected database, got %v", db)
	}

	rec = app.request("GET", "/api/categories", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("categories: expected 200, got %d", rec.Code)
	}
	if cats := parseJSON(t, rec)["categories"].([]interface{}); len(cats) != len(models.Categories()) {
		t.Errorf("expected %d categories, got %d", len(models.Categories()), len(cats))
	}

	rec = app.request("OPTIONS", "/api/expenses", "", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight: expected 204, got %d", rec.Code)
	}
}
