package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/mentorship/middleware"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	menteeID = uuid.MustParse("6f1c2b7e-1d4a-4c55-9a0e-2f8d1b3c4a01")
	mentorID = uuid.MustParse("0b9e8d7c-6a5b-4c3d-8e2f-1a0b9c8d7e02")
	adminID  = uuid.MustParse("9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c03")
)

func menteeClaims() *utils.Claims {
	return &utils.Claims{UserID: menteeID, Email: "asha.rao@example.com", Role: "mentee"}
}

func mentorClaims() *utils.Claims {
	return &utils.Claims{UserID: mentorID, Email: "vikram.iyer@example.com", Role: "mentor"}
}

func adminClaims() *utils.Claims {
	return &utils.Claims{UserID: adminID, Email: "ops@example.com", Role: "admin"}
}

// newTestApp stands in for middleware.Protected by planting claims directly.
func newTestApp(claims *utils.Claims) *fiber.App {
	app := fiber.New()
	if claims != nil {
		app.Use(func(c *fiber.Ctx) error {
			middleware.SetClaims(c, claims)
			return c.Next()
		})
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func errorBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, resp, &body)
	return body["error"]
}
