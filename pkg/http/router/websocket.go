package router

import (
	"context"
	"fmt"
	"net"

	"github.com/gobwas/ws"
	http_server "github.com/lintang-b-s/raptorx/pkg/http/server"
	"go.uber.org/zap"
)

// runWebsocket listens on config.WebsocketPort and upgrades every
// accepted connection to a websocket, handing it off to its own
// goroutine. Unlike the teacher's epoll-based online map-matcher
// listener, a profile-stream query is long-lived but low-volume (one
// request per connection, occasional follow-ups), so a goroutine per
// connection is the simpler fit and avoids mailru/easygo/netpoll's
// one-shot re-arm bookkeeping entirely.
func (api *API) runWebsocket(ctx context.Context, config http_server.Config, errChan chan error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", config.WebsocketPort))
	if err != nil {
		errChan <- err
		return
	}
	defer ln.Close()

	api.log.Info(fmt.Sprintf("profile-stream websocket listening on port %d", config.WebsocketPort))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			errChan <- err
			return
		}
		go api.handleConn(conn)
	}
}

func (api *API) handleConn(conn net.Conn) {
	_, err := ws.Upgrade(conn)
	if err != nil {
		api.log.Info("websocket upgrade failed", zap.Error(err), zap.String("remote", conn.RemoteAddr().String()))
		conn.Close()
		return
	}

	api.log.Info("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	user := api.hub.Register(conn)
	defer func() {
		api.hub.Remove(user)
		conn.Close()
	}()

	for {
		if err := user.StreamProfile(); err != nil {
			api.log.Info("websocket client disconnected", zap.Error(err), zap.String("remote", conn.RemoteAddr().String()))
			return
		}
	}
}
