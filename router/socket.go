package router

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"classroom-messenger/controller"
	"classroom-messenger/event"
	"classroom-messenger/messenger"
	"classroom-messenger/model"
	"classroom-messenger/utils"

	"github.com/zishang520/socket.io/v2/socket"
)

type SocketUser struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

type SocketMessage struct {
	Id            uint       `json:"id"`
	Conversation  uint       `json:"conversation"`
	Sender        SocketUser `json:"sender"`
	Content       string     `json:"content"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	Created       time.Time  `json:"created"`
	Displayed     time.Time  `json:"displayed"`
	Edited        bool       `json:"edited"`
}

type SocketConversation struct {
	Id       uint            `json:"id"`
	Messages []SocketMessage `json:"messages"`
}

type SocketInit struct {
	Conversations []messenger.ConversationSummary `json:"conversations"`
	UserStatus    []SocketUserStatus              `json:"userStatus"`
}

type SocketUserStatus struct {
	Id     uint `json:"id"`
	Status bool `json:"status"`
}

func toSocketMessage(message model.Message) SocketMessage {
	return SocketMessage{
		Id:           message.ID,
		Conversation: message.ConversationID,
		Sender: SocketUser{
			Id:   message.SenderID,
			Name: message.Sender.DisplayName,
		},
		Content:       message.Content,
		AttachmentURL: message.AttachmentURL,
		Created:       message.CreatedAt,
		Displayed:     message.DisplayedAt,
		Edited:        message.Edited,
	}
}

// socketUserID resolves the caller from the handshake claims. Sessions that
// failed the handshake carry no data and are ignored.
func socketUserID(client *socket.Socket) (uint, bool) {
	claims, ok := client.Data().(*utils.TokenMetadata)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(claims.Id, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// argString reads a positional string argument from a client event.
// Clients send whatever they like, so missing or mistyped arguments read as
// empty rather than panicking the handler.
func argString(args []interface{}, i int) string {
	if i >= len(args) {
		return ""
	}
	s, _ := args[i].(string)
	return s
}

func argID(args []interface{}, i int) uint {
	id, _ := strconv.ParseUint(argString(args, i), 10, 64)
	return uint(id)
}

func audit(action string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("audit payload for %s not marshaled: %v", action, err)
		return
	}
	event.Emit(event.QueueAudit, action, data, true)
}

func Socket(server *socket.Server) {
	server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Push the caller's conversation list and the online status of each
		// counterpart.
		client.On("init", func(args ...interface{}) {
			userID, ok := socketUserID(client)
			if !ok {
				return
			}

			summaries, err := controller.Messenger.RecentConversations(context.Background(), userID, 0)
			if err != nil {
				log.Printf("init summaries for user %d: %v", userID, err)
				return
			}

			rooms := server.Sockets().Adapter().Rooms().Keys()
			userStatus := []SocketUserStatus{}
			for _, summary := range summaries {
				if summary.OtherParticipant == nil {
					continue
				}

				online := false
				for i := range rooms {
					if rooms[i] == socket.Room(strconv.FormatUint(uint64(summary.OtherParticipant.ID), 10)) {
						online = true
						break
					}
				}

				userStatus = append(userStatus, SocketUserStatus{
					Id:     summary.OtherParticipant.ID,
					Status: online,
				})
			}

			client.Emit(
				"init",
				SocketInit{
					Conversations: summaries,
					UserStatus:    userStatus,
				},
			)
		})

		// First contact or reopen: find or create the pair's conversation,
		// subscribe to its topic and return the history.
		client.On("conversation_open", func(args ...interface{}) {
			userID, ok := socketUserID(client)
			if !ok {
				return
			}

			other := argID(args, 0)
			if other == 0 || other == userID {
				return
			}

			ctx := context.Background()
			conversation, err := controller.Messenger.GetOrCreateConversation(ctx, userID, other)
			if err != nil {
				log.Printf("open conversation for user %d: %v", userID, err)
				return
			}

			client.Join(socket.Room(messenger.ConversationTopic(conversation.ID)))

			messages, err := controller.Messenger.ConversationMessages(ctx, conversation.ID)
			if err != nil {
				log.Printf("load conversation %d: %v", conversation.ID, err)
				return
			}

			if err := controller.Messenger.MarkRead(ctx, conversation.ID, userID, time.Now()); err != nil {
				log.Printf("mark read conversation %d: %v", conversation.ID, err)
			}

			details := SocketConversation{Id: conversation.ID, Messages: []SocketMessage{}}
			for _, message := range messages {
				details.Messages = append(details.Messages, toSocketMessage(message))
			}

			client.Emit("conversation_open", details)
		})

		client.On("conversation_join", func(args ...interface{}) {
			userID, ok := socketUserID(client)
			if !ok {
				return
			}

			conversationID := argID(args, 0)

			member, err := controller.Messenger.IsParticipant(context.Background(), conversationID, userID)
			if err != nil {
				log.Printf("join check for conversation %d: %v", conversationID, err)
				return
			}
			if !member {
				return
			}

			client.Join(socket.Room(messenger.ConversationTopic(conversationID)))
		})

		client.On("conversation_leave", func(args ...interface{}) {
			client.Leave(socket.Room(messenger.ConversationTopic(argID(args, 0))))
		})

		client.On("message_send", func(args ...interface{}) {
			userID, ok := socketUserID(client)
			if !ok {
				return
			}

			conversationID := argID(args, 0)
			content := argString(args, 1)
			attachmentURL := argString(args, 2)

			ctx := context.Background()
			member, err := controller.Messenger.IsParticipant(ctx, conversationID, userID)
			if err != nil || !member {
				return
			}

			message, err := controller.Messenger.AppendMessage(ctx, conversationID, userID, content, attachmentURL)
			if err != nil {
				log.Printf("send message in conversation %d: %v", conversationID, err)
				client.Emit("message_rejected", map[string]any{"reason": err.Error()})
				return
			}

			audit("message_created", toSocketMessage(*message))
		})

		client.On("message_edit", func(args ...interface{}) {
			if _, ok := socketUserID(client); !ok {
				return
			}

			messageID := argID(args, 0)
			newContent := argString(args, 1)

			message, err := controller.Messenger.EditMessage(context.Background(), messageID, newContent)
			if err != nil {
				log.Printf("edit message %d: %v", messageID, err)
				return
			}

			audit("message_edited", toSocketMessage(*message))
		})

		client.On("message_delete", func(args ...interface{}) {
			if _, ok := socketUserID(client); !ok {
				return
			}

			messageID := argID(args, 0)

			if err := controller.Messenger.DeleteMessage(context.Background(), messageID); err != nil {
				log.Printf("delete message %d: %v", messageID, err)
				return
			}

			audit("message_deleted", messenger.MessageDeletedEvent{ID: messageID})
		})

		client.On("conversation_read", func(args ...interface{}) {
			userID, ok := socketUserID(client)
			if !ok {
				return
			}

			conversationID := argID(args, 0)

			if err := controller.Messenger.MarkRead(context.Background(), conversationID, userID, time.Now()); err != nil {
				log.Printf("mark read conversation %d: %v", conversationID, err)
			}
		})

		client.On("conversation_list", func(args ...interface{}) {
			userID, ok := socketUserID(client)
			if !ok {
				return
			}

			summaries, err := controller.Messenger.RecentConversations(context.Background(), userID, argID(args, 0))
			if err != nil {
				log.Printf("conversation list for user %d: %v", userID, err)
				return
			}

			client.Emit("conversation_list", summaries)
		})
	})
}
