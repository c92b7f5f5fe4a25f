// The Main function of coverlift. It should set everything up, create the
// Spotify client and the enhancement pipeline, create a webserver and wait
// for it to finish.
//
// It is in package src because it is imported from the project's root
// folder.
package src

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/coverlift/coverlift/src/art"
	"github.com/coverlift/coverlift/src/config"
	"github.com/coverlift/coverlift/src/enhance"
	"github.com/coverlift/coverlift/src/helpers"
	"github.com/coverlift/coverlift/src/spotify"
	"github.com/coverlift/coverlift/src/version"
	"github.com/coverlift/coverlift/src/webserver"
)

// mbDelay is the wait between consecutive MusicBrainz calls. Its API
// guidelines ask for no more than one request per second per client.
const mbDelay = 1 * time.Second

var (
	showVersion = flag.Bool("v", false, "Print version information and exit.")
	cfgFlag     = flag.String("config", "", "Use this config file instead of the default one.")
	pidFlag     = flag.String("pidfile", "", "Write the server's PID in this file.")
)

// Main is the only thing run in the project's root main.go file. For all
// intents and purposes this is the main function.
func Main(httpRootFS fs.FS) {
	flag.Parse()

	if *showVersion {
		version.Print(os.Stdout)
		os.Exit(0)
	}

	appfs := afero.NewOsFs()

	userPath, err := helpers.ProjectUserPath()
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}

	cfgPath := *cfgFlag
	if cfgPath == "" {
		cfgPath = filepath.Join(userPath, config.ConfigName)
	}

	cfg, err := config.FindAndParse(appfs, cfgPath)
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}

	if cfg.LogFile != "" {
		if err := helpers.SetLogsFile(appfs, cfg.LogFile); err != nil {
			log.Println(err)
			os.Exit(1)
		}
	}

	if *pidFlag != "" {
		if err := helpers.SetUpPidFile(appfs, *pidFlag); err != nil {
			log.Println(err)
			os.Exit(1)
		}
		defer helpers.RemovePidFile(appfs, *pidFlag)
	}

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	tokens := spotify.NewCredsTokenSource(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	fetcher := spotify.NewClient(tokens)

	encoder := enhance.NewEncoder(ctx)
	defer encoder.Cancel()

	pipeline := enhance.NewPipeline(cfg.Enhance.APIKey, cfg.Enhance.Endpoint, encoder)
	artFinder := art.NewClient(cfg.UserAgent, mbDelay)

	srv := webserver.NewServer(cfg, fetcher, pipeline, artFinder, httpRootFS)
	srv.Serve()

	stopSignals := make(chan os.Signal, 2)
	signal.Notify(stopSignals, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-stopSignals
		fmt.Printf("Stop signal received (%s). Cleaning up.\n", sig)
		srv.Stop()
	}()

	srv.Wait()
}
