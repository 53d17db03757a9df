package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evalQuery struct {
	Uncertainty string  `query:"uncertainty" default:"LOW" validate:"oneof=LOW HIGH CRITICAL"`
	Drawdown    float64 `query:"drawdown" validate:"gte=0"`
}

func testAPI() *httptest.Server {
	e := echo.New()
	e.GET("/eval", func(c echo.Context) error {
		q := &evalQuery{}
		if verr := ReadAndValidateRequest(c, q); verr != nil {
			return BadRequestResponse(c, verr)
		}
		return SuccessResponse(c, q)
	})
	e.GET("/missing", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundError("bot not found"))
	})
	return httptest.NewServer(e)
}

func TestClientDecodesEnvelopeData(t *testing.T) {
	srv := testAPI()
	defer srv.Close()
	c := NewClient(srv.URL + "/")

	var got struct {
		Uncertainty string  `json:"Uncertainty"`
		Drawdown    float64 `json:"Drawdown"`
	}
	err := c.Call(context.Background(), &RequestOptions{
		Method:      MethodGet,
		Path:        "/eval",
		QueryParams: map[string][]string{"drawdown": {"2.5"}},
	}, &got)
	require.NoError(t, err)
	assert.Equal(t, "LOW", got.Uncertainty)
	assert.Equal(t, 2.5, got.Drawdown)
}

func TestClientSurfacesValidationErrors(t *testing.T) {
	srv := testAPI()
	defer srv.Close()
	c := NewClient(srv.URL)

	err := c.Call(context.Background(), &RequestOptions{
		Method:      MethodGet,
		Path:        "/eval",
		QueryParams: map[string][]string{"uncertainty": {"EXTREME"}},
	}, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	require.Len(t, se.Errors, 1)
	assert.Equal(t, "ERR_ONEOF", se.Errors[0].Code)
	assert.Equal(t, "uncertainty", se.Errors[0].Field)
	assert.Contains(t, err.Error(), "uncertainty must be one of: LOW, HIGH, CRITICAL")
}

func TestClientNotFound(t *testing.T) {
	srv := testAPI()
	defer srv.Close()

	err := NewClient(srv.URL).Call(context.Background(), &RequestOptions{Method: MethodGet, Path: "/missing"}, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "Not Found", se.Message)
}
