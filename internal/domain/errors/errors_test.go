package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	err := NewAppError(http.StatusBadRequest, CodeBadRequest, "bad", ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeBadRequest, err.Code)
	assert.Equal(t, "bad", err.Message)
	assert.Equal(t, ErrBadRequest.Error(), err.Error())

	internal := InternalError(stderrors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, CodeInternalError, internal.Code)

	custom := NewError("custom", ErrUnsupportedChain)
	assert.Equal(t, ErrUnsupportedChain.Error(), custom.Error())

	badReq := BadRequest("bad request")
	assert.Equal(t, http.StatusBadRequest, badReq.Status)
	assert.Equal(t, CodeInvalidInput, badReq.Code)

	unsupported := UnsupportedChain(999999)
	assert.Equal(t, http.StatusBadRequest, unsupported.Status)
	assert.Equal(t, CodeUnsupportedChain, unsupported.Code)
}
