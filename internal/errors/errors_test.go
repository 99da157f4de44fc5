package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"shoplens/domain/core"
)

func TestWrapClassifiesDomainErrors(t *testing.T) {
	err := Wrap(core.NewColumnNotFoundError("Colour"), "frequency view")
	assert.Equal(t, CodeColumnNotFound, GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrColumnNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	err = Wrapf(fmt.Errorf("%w: bad edges", core.ErrInvalidBins), "view %s", "age")
	assert.Equal(t, CodeConfigurationError, GetCode(err))

	err = Wrap(stderrors.New("boom"), "load")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestGetCodeOnBareErrors(t *testing.T) {
	assert.Equal(t, CodeNotFound, GetCode(core.ErrViewNotFound))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(core.ErrViewNotFound))
	assert.Equal(t, CodeEmptySource, GetCode(fmt.Errorf("x: %w", core.ErrEmptySource)))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("plain")))
}

func TestSourceUnavailable(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := SourceUnavailable("sql:shopping", cause)
	assert.Equal(t, CodeSourceUnavailable, GetCode(err))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "dataset source sql:shopping unavailable: connection refused", err.Error())
}

func TestWrapKeepsAppErrorCode(t *testing.T) {
	base := InvalidInput("bad selection")
	err := Wrap(base, "decoding request")
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "decoding request: bad selection", err.Error())

	assert.Nil(t, Wrap(nil, "x"))
	assert.Equal(t, CodeNotFound, GetCode(WithCode(CodeNotFound, stderrors.New("gone"))))
}
