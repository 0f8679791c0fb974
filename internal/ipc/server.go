package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one IPC command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve accepts unix-socket clients until context cancellation or listener close.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()

			// One JSON request per line; the connection stays open for
			// follow-up commands until the client hangs up.
			reader := bufio.NewReader(c)
			encoder := json.NewEncoder(c)
			for {
				line, err := reader.ReadBytes('\n')
				if err != nil {
					return
				}

				var req Request
				if err := json.Unmarshal(line, &req); err != nil {
					_ = encoder.Encode(Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
					continue
				}

				resp := handler.Handle(ctx, req)
				if err := encoder.Encode(resp); err != nil {
					return
				}
			}
		}(conn)
	}
}
