package dedupe

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestStartRun_RejectsInvalidBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader("not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := StartRun(c)
	require := assert.New(t)
	require.Error(err)
}

func TestStartRun_RejectsEmptyRecords(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(`{"records":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := StartRun(c)
	assert.Error(t, err)
}

func TestCancelRun_UnknownIDReturnsNotFound(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/runs/does-not-exist", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("does-not-exist")

	err := CancelRun(c)
	assert.Error(t, err)
}
