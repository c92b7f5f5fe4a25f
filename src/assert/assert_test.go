package assert_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/coverlift/coverlift/src/assert"
)

// recordingT is a test double for testing.T which records the calls made
// to it by the assert functions.
type recordingT struct {
	errorfCalls []string
	fatalfCalls []string
	helperCalls int
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errorfCalls = append(r.errorfCalls, fmt.Sprintf(format, args...))
}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.fatalfCalls = append(r.fatalfCalls, fmt.Sprintf(format, args...))
}

func (r *recordingT) Helper() {
	r.helperCalls++
}

// TestEqual makes sure that the Equal function works for various types of
// arguments.
func TestEqual(t *testing.T) {
	fakeT := &recordingT{}
	actual := int64(5)
	assert.Equal(fakeT, 5, actual)
	if len(fakeT.errorfCalls) != 0 {
		t.Errorf("expected Errorf not to be called for int64 and const expression")
	}
	if fakeT.helperCalls != 1 {
		t.Errorf("expected Helper() to be called on the testing type")
	}

	assert.Equal(fakeT, 10, actual)
	if len(fakeT.errorfCalls) != 1 {
		t.Errorf("expected Errorf to be called for different int64 values")
	}

	fakeT = &recordingT{}
	assert.Equal(fakeT, "test val", "test val")
	if len(fakeT.errorfCalls) != 0 {
		t.Errorf("expected Errorf not to be called for two equal string values")
	}

	const (
		formatting   = `test formatting: %d`
		formattedVal = 123
	)
	fakeT = &recordingT{}
	assert.Equal(fakeT, 10, 12, formatting, formattedVal)
	if len(fakeT.errorfCalls) != 1 {
		t.Fatalf("expected Errorf to be called for two different integers")
	}

	expectedMessage := fmt.Sprintf(formatting, formattedVal)
	if !strings.Contains(fakeT.errorfCalls[0], expectedMessage) {
		t.Errorf("message `%s` was not part of the error: `%s`",
			expectedMessage, fakeT.errorfCalls[0])
	}
}

// TestTrue makes sure the True assertion fails the test only for false values.
func TestTrue(t *testing.T) {
	fakeT := &recordingT{}
	assert.True(fakeT, true)
	if len(fakeT.errorfCalls) != 0 {
		t.Errorf("unexpected Errorf() call for a true value")
	}

	assert.True(fakeT, false)
	if len(fakeT.errorfCalls) != 1 {
		t.Errorf("expected Errorf() to be called for a false value")
	}
}

// TestNilErr makes sure that NilErr works as expected.
func TestNilErr(t *testing.T) {
	var nilErr error

	fakeT := &recordingT{}
	assert.NilErr(fakeT, nilErr)
	if len(fakeT.fatalfCalls) != 0 {
		t.Fatalf("unexpected Fatalf() call for nil error")
	}
	if fakeT.helperCalls != 1 {
		t.Fatalf("testing.T.Helper() not called")
	}

	assert.NilErr(fakeT, io.EOF)
	if len(fakeT.fatalfCalls) != 1 {
		t.Fatalf("expected Fatalf() to be called but it was not")
	}
}

// TestNotNilErr makes sure that NotNilErr works as expected.
func TestNotNilErr(t *testing.T) {
	fakeT := &recordingT{}
	assert.NotNilErr(fakeT, io.EOF)
	if len(fakeT.fatalfCalls) != 0 {
		t.Fatalf("unexpected Fatalf() call for non-nil error")
	}

	var nilErr error
	assert.NotNilErr(fakeT, nilErr)
	if len(fakeT.fatalfCalls) != 1 {
		t.Fatalf("expected Fatalf() to be called but it was not")
	}
}
