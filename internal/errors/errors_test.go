package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesInnermostCode(t *testing.T) {
	base := NotFound("disease Z99")
	wrapped := Wrapf(base, "single disease %s", "Z99")

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.Equal(t, "single disease Z99: disease Z99 not found", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))

	through := Wrap(fmt.Errorf("handler: %w", base), "view")
	assert.True(t, Is(through, CodeNotFound))
}

func TestWrap_ForeignErrorBecomesInternal(t *testing.T) {
	err := Wrap(fmt.Errorf("boom"), "encode")
	assert.True(t, Is(err, CodeInternalError))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeUnknown, GetCode(nil))
	assert.Equal(t, CodeConfigInvalid, GetCode(fmt.Errorf("load: %w", ConfigInvalid("DATABASE_URL is required"))))
	assert.False(t, Is(nil, CodeInternalError))
	assert.True(t, Is(InternalError("x"), CodeInternalError))
}

func TestDataSource_Unwraps(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := DataSource("query associations", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "query associations: connection refused", err.Error())
	assert.Equal(t, "rr_min must be finite", InvalidParameter("%s must be finite", "rr_min").Error())
}

func TestCode_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, CodeInvalidParameter.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, CodeNotFound.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, CodeDataSource.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, CodeConfigInvalid.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, CodeUnknown.HTTPStatus())
}
