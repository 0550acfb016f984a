// This defines an HTTP server that stores uploaded MIDI files and returns
// their analysis.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

func run() int {
	var listen, uploadDir, logLevel string
	var maxUploadBytes int64
	flag.StringVar(&listen, "listen", "127.0.0.1:8080", "The address on "+
		"which to serve HTTP requests.")
	flag.StringVar(&uploadDir, "upload_dir", "midi_uploads", "The directory "+
		"in which to store uploaded .mid files.")
	flag.Int64Var(&maxUploadBytes, "max_upload_bytes", 5*1024*1024, "The "+
		"largest accepted upload, in bytes.")
	flag.StringVar(&logLevel, "log_level", "info", "The minimum level of log "+
		"messages to print.")
	flag.Parse()
	if maxUploadBytes <= 0 {
		fmt.Printf("Invalid arguments: -max_upload_bytes must be positive.\n")
		return 1
	}
	level, e := logrus.ParseLevel(logLevel)
	if e != nil {
		fmt.Printf("Invalid log level %q: %s\n", logLevel, e)
		return 1
	}
	log := logrus.StandardLogger()
	log.SetLevel(level)
	s := &server{
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
		log:            log,
		now:            time.Now,
	}
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.WithFields(logrus.Fields{
		"listen":     listen,
		"upload_dir": uploadDir,
	}).Info("Serving MIDI analysis API")
	e = httpServer.ListenAndServe()
	if e != nil {
		log.WithError(e).Error("Server stopped")
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
