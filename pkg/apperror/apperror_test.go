package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownKinds(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, MetadataFor(KindNotFound).HTTPStatus)
	for _, kind := range []Kind{KindValidation, KindConflict, KindCycle, KindLimitExceeded} {
		assert.Equal(t, http.StatusBadRequest, MetadataFor(kind).HTTPStatus, kind)
	}
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Kind("bogus")).HTTPStatus)
}

func TestAsFindsWrappedError(t *testing.T) {
	base := Cycle("BOM link creation failed because it would introduce a cycle.")
	wrapped := fmt.Errorf("create link: %w", base)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, KindCycle, typed.Kind())
	assert.Equal(t, "BOM link creation failed because it would introduce a cycle.", typed.Message())
	assert.True(t, Is(wrapped, KindCycle))
	assert.False(t, Is(wrapped, KindConflict))
}

func TestKindOfUntypedIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause, "saving part")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "saving part: disk full", err.Error())
	assert.Equal(t, "saving part", err.Message())
}
