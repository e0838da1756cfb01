package apperrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestProviderKeepsRawMessage(t *testing.T) {
	raw := errors.New(`duplicate key value violates unique constraint "recordings_pkey"`)
	err := errors.Wrap(Provider("insert recording", raw), "upload")

	assert.True(t, IsProvider(err))
	assert.False(t, IsDenied(err))

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, raw.Error(), pe.Error())
	assert.Equal(t, "insert recording", pe.Op)
}

func TestProviderNil(t *testing.T) {
	assert.NoError(t, Provider("noop", nil))
}

func TestKinds(t *testing.T) {
	denied := Denied("Invalid shared password")
	assert.True(t, IsDenied(denied))
	assert.False(t, IsValidation(denied))
	assert.Equal(t, "Invalid shared password", denied.Error())

	invalid := errors.Wrap(Invalid("Please upload an audio file"), "send")
	assert.True(t, IsValidation(invalid))
	assert.False(t, IsProvider(invalid))
}
