// Package webserver deals with processing requests from the user, serving
// the API and the web interface of the application.
package webserver

import (
	"io/fs"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/coverlift/coverlift/src/art"
	"github.com/coverlift/coverlift/src/config"
)

// Server represents our webserver. It will be controlled from here
type Server struct {

	// Configuration of this server
	cfg config.Config

	// WG used in Server.Wait to sync with server's end
	wg sync.WaitGroup

	// Makes sure Serve does not return before all the starting work has
	// been finished
	startWG sync.WaitGroup

	// The actual http.Server doing the HTTP work
	httpSrv *http.Server

	// The server's net.Listener. Used in the Server.Stop func
	listener net.Listener

	// The Spotify client used for resolving covers
	fetcher CoverFetcher

	// The pipeline used for enhancing images
	pipeline Enhancer

	// The Cover Art Archive fallback finder
	artFinder art.Finder

	// The file system from which the web UI is served
	httpRootFS fs.FS
}

// Serve actually starts the webserver. It attaches all the handlers
// and starts the webserver while consulting the config supplied. Trying to call
// this method more than once for the same server will result in panic.
func (srv *Server) Serve() {
	if srv.listener != nil {
		panic("Second Server.Serve call for the same server")
	}
	srv.wg.Add(1)
	srv.startWG.Add(1)
	go srv.serveGoroutine()
	srv.startWG.Wait()
}

func (srv *Server) serveGoroutine() {
	defer srv.wg.Done()

	handler := srv.routeHandlers()

	if srv.cfg.Gzip {
		log.Println("Adding gzip handler")
		// The enhance endpoint responds with JPEG bytes which gzip would
		// only make bigger.
		handler = NewGzipHandler(handler, []string{
			APIv1EndpointEnhance,
			APIv1EndpointFallbackArtwork,
		})
	}

	srv.httpSrv = &http.Server{
		Addr:           srv.cfg.Listen,
		Handler:        handler,
		ReadTimeout:    time.Duration(srv.cfg.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(srv.cfg.WriteTimeout) * time.Second,
		MaxHeaderBytes: srv.cfg.MaxHeadersSize,
	}

	reason := srv.listenAndServe()

	log.Println("Webserver stopped.")

	if reason != nil {
		log.Printf("Reason: %s\n", reason.Error())
	}
}

// routeHandlers attaches all the handlers to their endpoints.
func (srv *Server) routeHandlers() http.Handler {
	router := mux.NewRouter()
	router.StrictSlash(true)

	router.Handle(
		APIv1EndpointFallbackArtwork,
		NewFallbackArtworkHandler(srv.artFinder),
	).Methods(APIv1Methods[APIv1EndpointFallbackArtwork]...)

	router.Handle(
		APIv1EndpointCover,
		NewCoverHandler(srv.fetcher),
	).Methods(APIv1Methods[APIv1EndpointCover]...)

	router.Handle(
		APIv1EndpointEnhance,
		NewEnhanceHandler(srv.pipeline),
	).Methods(APIv1Methods[APIv1EndpointEnhance]...)

	router.Handle(
		APIv1EndpointHealth,
		NewHealthHandler(),
	).Methods(APIv1Methods[APIv1EndpointHealth]...)

	router.PathPrefix("/").Handler(http.FileServer(http.FS(srv.httpRootFS)))

	return router
}

// listenAndServe uses our own listener to make our server stoppable. Similar to
// net.http.Server.ListenAndServe only this version saves a reference to the
// listener
func (srv *Server) listenAndServe() error {
	addr := srv.httpSrv.Addr
	if addr == "" {
		addr = ":http"
	}
	lsn, err := net.Listen("tcp", addr)
	if err != nil {
		srv.startWG.Done()
		return err
	}
	srv.listener = lsn
	log.Printf("Webserver started on http://%s\n", lsn.Addr())
	srv.startWG.Done()
	return srv.httpSrv.Serve(lsn)
}

// Stop stops the webserver
func (srv *Server) Stop() {
	if srv.listener != nil {
		srv.listener.Close()
		srv.listener = nil
	}
}

// Wait syncs whoever called this with the server's stop
func (srv *Server) Wait() {
	srv.wg.Wait()
}

// NewServer returns a new Server using the supplied configuration cfg. The
// returned server is ready and calling its Serve method will start it.
func NewServer(
	cfg config.Config,
	fetcher CoverFetcher,
	pipeline Enhancer,
	artFinder art.Finder,
	httpRootFS fs.FS,
) *Server {
	return &Server{
		cfg:        cfg,
		fetcher:    fetcher,
		pipeline:   pipeline,
		artFinder:  artFinder,
		httpRootFS: httpRootFS,
	}
}
