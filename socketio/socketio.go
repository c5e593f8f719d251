package socketio

import (
	"context"
	"time"

	"classroom-messenger/config"
	"classroom-messenger/database"
	"classroom-messenger/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/socket.io-go-redis/adapter"
	r_type "github.com/zishang520/socket.io-go-redis/types"
	"github.com/zishang520/socket.io/v2/socket"
)

var server *socket.Server

func Init(app *fiber.App) *socket.Server {
	log.DEBUG = config.Config("SOCKET_DEBUG") == "true"

	options := socket.DefaultServerOptions()
	options.SetServeClient(true)
	options.SetAllowEIO3(true)
	options.SetPingInterval(300 * time.Millisecond)
	options.SetPingTimeout(200 * time.Millisecond)
	options.SetMaxHttpBufferSize(100000000)
	options.SetConnectTimeout(1000 * time.Millisecond)
	options.SetAdapter(&adapter.RedisAdapterBuilder{
		Redis: r_type.NewRedisClient(context.Background(), database.Redis[1]),
		Opts:  &adapter.RedisAdapterOptions{},
	})

	server = socket.NewServer(nil, nil)

	// Authenticate the handshake once; the token claims become the socket's
	// identity for every later event.
	server.Use(func(client *socket.Socket, next func(*socket.ExtendedError)) {
		token, auth := client.Conn().Request().Query().Get("token")

		if auth {
			claims, err := utils.CheckAndExtractTokenMetadata(token, "JWT_ACCESS_KEY")

			if err == nil {
				if !claims.Otp {
					client.Join(socket.Room(claims.Id))
					client.SetData(claims)
				}
			}
		}

		next(nil)
	})

	app.Get("/socket.io/", adaptor.HTTPHandler(server.ServeHandler(options)))
	app.Post("/socket.io/", adaptor.HTTPHandler(server.ServeHandler(options)))

	return server
}

// Broadcast emits an event to every connected session.
func Broadcast(event string, message any) {
	server.FetchSockets()(func(sockets []*socket.RemoteSocket, _ error) {
		for _, socket := range sockets {
			socket.Emit(event, message)
		}
	})
}

// Emit delivers an event to one room, either a user's own room or a
// conversation topic.
func Emit(room string, event string, message any) error {
	return server.To(socket.Room(room)).Emit(event, message)
}

// Fanout adapts the package-level server to the messenger Publisher
// interface.
type Fanout struct{}

func (Fanout) Emit(room string, event string, message any) error {
	return Emit(room, event, message)
}

func (Fanout) Broadcast(event string, message any) error {
	Broadcast(event, message)
	return nil
}
