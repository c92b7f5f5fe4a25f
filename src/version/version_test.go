package version_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/coverlift/coverlift/src/version"
)

// TestPrint makes sure the version and the Go runtime are part of the version
// output.
func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	version.Print(&buf)

	out := buf.String()
	if !strings.Contains(out, version.Version) {
		t.Errorf("version `%s` not found in output:\n%s", version.Version, out)
	}
}
