package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesapi/utils"
)

func appReturning(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/test", func(c *fiber.Ctx) error {
		return err
	})
	return app
}

func decodeError(t *testing.T, body io.Reader) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"bad request", utils.BadRequest("query parameter %q is required", "date"), 422, `query parameter "date" is required`},
		{"wrapped bad request", fmt.Errorf("outer: %w", utils.BadRequest("nope")), 422, "nope"},
		{"predictor failure", utils.PredictorFailure("regressor", errors.New("unseen category in column cat_id")), 500, "regressor prediction failed"},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed"), 405, "Method Not Allowed"},
		{"plain error", errors.New("database password is hunter2"), 500, "Internal Server Error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp, err := appReturning(c.err).Test(httptest.NewRequest("GET", "/test", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, c.wantStatus, resp.StatusCode)
			body := decodeError(t, resp.Body)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, c.wantMessage, body["message"])
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, StatusFor(fiber.ErrNotFound))
	assert.Equal(t, fiber.StatusUnprocessableEntity, StatusFor(utils.BadRequest("x")))
	assert.Equal(t, fiber.StatusInternalServerError, StatusFor(errors.New("x")))
}
