package vetiserr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_HTTPStatus(t *testing.T) {
	err := Proxy(http.StatusBadGateway, "upstream failed", errors.New("dial tcp: refused"))
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
	assert.Equal(t, CategoryProxy, err.Category)
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Config("bad config", inner)
	assert.True(t, errors.Is(err, inner))
}

func TestError_Message(t *testing.T) {
	err := Routing(http.StatusNotFound, "no matching path")
	assert.Contains(t, err.Error(), "no matching path")
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
}

func TestAuth_DefaultsToUnauthorized(t *testing.T) {
	err := Auth("missing credentials")
	assert.Equal(t, http.StatusUnauthorized, err.HTTPStatus())
}
