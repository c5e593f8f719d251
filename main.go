package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"classroom-messenger/config"
	"classroom-messenger/controller"
	"classroom-messenger/database"
	"classroom-messenger/event"
	"classroom-messenger/event/listener"
	"classroom-messenger/messenger"
	"classroom-messenger/router"
	"classroom-messenger/socketio"
	"classroom-messenger/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	log.SetPrefix("classroom-messenger: ")

	rest := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		AppName:               "classroom-messenger",
	})

	rest.Use(cors.New())

	database.RedisConnect()
	database.PostgresConnect()
	database.Seed(database.Postgres)

	event.Connect(event.QueueAPI, event.QueueAudit)

	// Run "api" listener
	go listener.Api()

	event.Subscribe(event.QueueAPI, listener.ApiChannel)
	event.Replay(map[string]chan event.Command{
		event.QueueAPI: listener.ApiChannel,
	})

	socket := socketio.Init(rest)

	// Wire the messaging core: attachment storage backend and the fan-out
	// publisher over socket.io.
	var files storage.Storage
	if config.Config("FILE_STORAGE") == "database" {
		files = storage.NewDatabase(database.Postgres)
	} else {
		local, err := storage.NewLocal("uploads")
		if err != nil {
			log.Fatalf("file storage: %v", err)
		}
		files = local
	}
	controller.Files = files
	controller.Messenger = messenger.NewService(database.Postgres, socketio.Fanout{})

	router.Rest(rest)
	router.Socket(socket)

	go rest.Listen(fmt.Sprintf(":%s", config.Config("SERVER_PORT")))

	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	socket.Close(nil)
	event.Close()
	os.Exit(0)
}
