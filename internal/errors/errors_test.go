package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())
	assert.Equal(t, origErr, Unwrap(wrappedErr))

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())
	assert.True(t, Is(deepWrapped, origErr))
}

func TestFileError(t *testing.T) {
	fileErr := NewFileError("cannot access", "/path/to/file", FileAccessDenied, nil)
	assert.Equal(t, "cannot access: /path/to/file", fileErr.Error())
	assert.Equal(t, "/path/to/file", fileErr.Path())
	assert.Equal(t, FileAccessDenied, fileErr.Kind())

	origErr := fmt.Errorf("permission denied")
	fileErr = NewFileError("cannot access", "/path/to/file", FileAccessDenied, origErr)
	assert.Equal(t, "cannot access: /path/to/file: permission denied", fileErr.Error())
	assert.Equal(t, origErr, Unwrap(fileErr))
}

func TestSidecarErrors(t *testing.T) {
	cause := fmt.Errorf("exec: \"exiftool\": executable file not found in $PATH")
	err := NewSidecarError("failed to start sidecar", ProcessUnavailable, cause)

	assert.True(t, IsProcessUnavailable(err))
	assert.False(t, IsDriverTerminated(err))
	assert.True(t, errors.Is(err, ErrProcessUnavailable))
	assert.False(t, errors.Is(err, ErrDriverTerminated))
	assert.True(t, errors.Is(err, cause))

	// Kind survives generic wrapping
	wrapped := Wrap(NewSidecarError("pipe closed", DriverTerminated, nil), "submit")
	assert.True(t, IsDriverTerminated(wrapped))
	assert.True(t, errors.Is(wrapped, ErrDriverTerminated))
	assert.Equal(t, DriverTerminated, KindOf(wrapped))
}

func TestFolderAndRecordErrors(t *testing.T) {
	folderErr := NewFolderError("malformed bulk read", "/pics", fmt.Errorf("unexpected end of JSON input"))
	assert.Equal(t, "malformed bulk read: /pics: unexpected end of JSON input", folderErr.Error())
	assert.Equal(t, FolderReadError, folderErr.Kind())
	assert.True(t, IsFolderReadError(folderErr))
	assert.Equal(t, "/pics", folderErr.Path())

	recErr := NewRecordError("missing SourceFile", "/pics", 3, nil)
	assert.Equal(t, "missing SourceFile: /pics[3]", recErr.Error())
	assert.Equal(t, RecordParseError, recErr.Kind())
	assert.Equal(t, 3, recErr.Record())
	assert.Equal(t, "/pics", recErr.Folder())
}

func TestAddressError(t *testing.T) {
	err := NewAddressError(2, 7)
	assert.Equal(t, "stale address: {folder:2 image:7}", err.Error())
	assert.True(t, IsStaleAddress(Wrap(err, "add tag")))
	f, i := err.Address()
	assert.Equal(t, 2, f)
	assert.Equal(t, 7, i)
}

func TestWriteError(t *testing.T) {
	err := NewWriteError("/pics/a.jpg", "ImageDescription", nil)
	assert.Equal(t, "write not confirmed: /pics/a.jpg", err.Error())
	assert.Equal(t, WriteNotConfirmed, err.Kind())
	assert.Equal(t, "ImageDescription", err.Field())
}

func TestConfigError(t *testing.T) {
	configErr := NewConfigError("invalid value", "label_width", InvalidConfig, nil)
	assert.Equal(t, "invalid value: label_width", configErr.Error())
	assert.True(t, IsInvalidConfig(configErr))
	assert.False(t, IsInvalidConfig(New("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "stale_address", StaleAddress.String())
	assert.Equal(t, "kind(99)", ErrorKind(99).String())
	assert.Equal(t, Unknown, KindOf(nil))
	assert.Equal(t, Unknown, KindOf(fmt.Errorf("plain")))
}
