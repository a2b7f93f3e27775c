package app

import (
	"context"
	"net/http"
	"time"
)

type HTTPServer struct {
	srv *http.Server
}

// StartHTTP поднимает сервер и гасит его при отмене контекста.
func StartHTTP(ctx context.Context, addr string, handler http.Handler) *HTTPServer {
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		_ = srv.ListenAndServe() // закрываем аккуратно при Shutdown
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}
