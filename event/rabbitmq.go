package event

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"classroom-messenger/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue names used by the messenger service. The api queue carries inbound
// control commands, the audit queue carries outbound audit records of
// messaging actions.
const (
	QueueAPI   = "api"
	QueueAudit = "audit"
)

const actionHeader string = "x-action"

const (
	CommandLogFile = "log/commands.log"
	AuditLogFile   = "log/audit.log"
)

// Command is an inbound control message consumed from a queue.
type Command struct {
	Action string
	Data   []byte
	// Replay marks commands re-fed from the command log on startup.
	Replay bool
}

type logEntry struct {
	Time   int64  `json:"time"`
	Queue  string `json:"queue"`
	Action string `json:"action"`
	Data   string `json:"data"`
}

var (
	connection *amqp.Connection
	channel    *amqp.Channel

	commandLog *os.File
	auditLog   *os.File
)

// Connect dials the broker and declares the given queues. It also opens the
// append-only command and audit logs.
func Connect(queues ...string) {
	var err error

	connection, err = amqp.Dial(fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		config.Config("RABBITMQ_USER"),
		config.Config("RABBITMQ_PASSWORD"),
		config.Config("RABBITMQ_HOST"),
		config.Config("RABBITMQ_PORT"),
	))
	if err != nil {
		panic("failed to connect to RabbitMQ")
	}
	log.Printf("connection opened to RabbitMQ server")

	channel, err = connection.Channel()
	if err != nil {
		panic("failed to open a RabbitMQ channel")
	}

	for _, name := range queues {
		_, err := channel.QueueDeclare(
			name,  // name
			false, // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			panic(fmt.Sprintf("failed to declare RabbitMQ queue %s", name))
		}
		log.Printf("declared RabbitMQ queue: %s", name)
	}

	if err := os.MkdirAll("log", 0755); err != nil {
		panic(err)
	}
	commandLog, err = os.OpenFile(CommandLogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
	auditLog, err = os.OpenFile(AuditLogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
}

// Subscribe consumes a queue and forwards each message to ch. Consumed
// commands are appended to the command log so they can be replayed.
func Subscribe(queue string, ch chan Command) {
	msgs, err := channel.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		panic(fmt.Sprintf("failed to subscribe to RabbitMQ queue %s", queue))
	}
	log.Printf("subscribed to RabbitMQ queue: %s", queue)

	go func() {
		for msg := range msgs {
			action, _ := msg.Headers[actionHeader].(string)

			if config.Config("EVENT_MODE") != "DISABLE" {
				appendLog(commandLog, logEntry{
					Time:   time.Now().UnixMicro(),
					Queue:  queue,
					Action: action,
					Data:   string(msg.Body),
				})
			}

			msg.Ack(false)

			ch <- Command{
				Action: action,
				Data:   msg.Body,
			}
		}
	}()
}

// Emit publishes an event to a queue with the action carried in a header.
// Audit-worthy events are also appended to the audit log.
func Emit(queue string, action string, data []byte, record bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := channel.PublishWithContext(
		ctx,
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Headers: amqp.Table{
				actionHeader: action,
			},
			Body: data,
		},
	)
	if err != nil {
		log.Printf("failed to publish %s to %s: %v", action, queue, err)
		return
	}

	if record && config.Config("EVENT_MODE") != "DISABLE" {
		appendLog(auditLog, logEntry{
			Time:   time.Now().UnixMicro(),
			Queue:  queue,
			Action: action,
			Data:   string(data),
		})
	}
}

// Replay re-feeds every logged command into the listener channels. Enabled
// with EVENT_MODE=REPLAY, typically after restoring a database backup.
func Replay(listeners map[string]chan Command) {
	if config.Config("EVENT_MODE") != "REPLAY" {
		return
	}

	in, err := os.Open(CommandLogFile)
	if err != nil {
		log.Fatalf("failed opening command log: %s", err)
	}
	defer in.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		entry := logEntry{}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			log.Printf("skipping malformed command log entry: %v", err)
			continue
		}
		ch, ok := listeners[entry.Queue]
		if !ok {
			continue
		}
		ch <- Command{
			Action: entry.Action,
			Data:   []byte(entry.Data),
			Replay: true,
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
}

// Close tears down the channel, connection and log files.
func Close() {
	if channel != nil {
		channel.Close()
	}
	if connection != nil {
		connection.Close()
	}
	if commandLog != nil {
		commandLog.Close()
	}
	if auditLog != nil {
		auditLog.Close()
	}
}

func appendLog(file *os.File, entry logEntry) {
	line, _ := json.Marshal(entry)
	if _, err := file.WriteString(string(line) + "\n"); err != nil {
		panic(err)
	}
}
