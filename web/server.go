package web

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/utils"
)

func NewRouter(s *State) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/sequences", s.HandlerJsonSequences)
	r.HandleFunc("/json/sequence/{name}", s.HandlerJsonSequence)
	r.HandleFunc("/json/morph/{name}", s.HandlerJsonMorph)
	r.HandleFunc("/dump/sequence/{name}", s.HandlerDumpSequence)
	r.HandleFunc("/export/gltf", s.HandlerExportGltf)
	return r
}

// StartServer serves s until ctx is done.
func StartServer(ctx context.Context, addr string, s *State) error {
	l := utils.LoggerOrDefault(s.log)

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(NewRouter(s))
	h = handlers.LoggingHandler(l.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel}).Writer(), h)

	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}()

	l.Info("Starting server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "web server")
	}
	return nil
}
