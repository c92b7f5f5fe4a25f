// A web service for resolving and enhancing album cover art.
//
// This file is only here to make installing with go install easier. The
// actual implementation lives in the src directory.
package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ironsmile/wrapfs"

	"github.com/coverlift/coverlift/src"
)

// httpRootFS is the directory which contains the static files served by
// the webserver. If the embedded directory name changes remember to change
// it in main() too.
//
//go:embed http_root
var httpRootFS embed.FS

func main() {
	fsRoot, err := fs.Sub(httpRootFS, "http_root")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading HTTP root subFS: %s\n", err)
		os.Exit(1)
	}

	// Files in the embedded FS have a zero modification time which breaks
	// If-Modified-Since caching. Pin them to the program's start time.
	src.Main(wrapfs.WithModTime(fsRoot, time.Now()))
}
