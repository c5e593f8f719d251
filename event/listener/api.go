package listener

import (
	"log"

	"classroom-messenger/database"
	"classroom-messenger/event"
)

var (
	ApiChannel = make(chan event.Command)
)

// Api consumes inbound commands from the api queue.
func Api() {
	for command := range ApiChannel {
		switch command.Action {
		case "seed":
			database.Seed(database.Postgres)
		default:
			log.Printf("unhandled api command: %s", command.Action)
		}
	}
}
