//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package a2a

import (
	"time"

	"github.com/google/uuid"
)

// MessageType classifies a mesh message.
type MessageType string

// The message type enum.
const (
	// MessageTypeRequest asks an agent to perform a task.
	MessageTypeRequest MessageType = "request"
	// MessageTypeResponse carries an agent's task result.
	MessageTypeResponse MessageType = "response"
	// MessageTypeError reports a task failure.
	MessageTypeError MessageType = "error"
	// MessageTypeBroadcast addresses every agent in the mesh.
	MessageTypeBroadcast MessageType = "broadcast"
)

// BroadcastRecipient is the recipient of broadcast messages.
const BroadcastRecipient = "*"

// PayloadErrorKey is the payload key error messages store their
// description under.
const PayloadErrorKey = "error"

// Message is the envelope every mesh exchange uses.
type Message struct {
	// MessageID uniquely identifies the message.
	MessageID string `json:"message_id"`

	// MessageType classifies the message.
	MessageType MessageType `json:"message_type"`

	// SenderID names the sending agent.
	SenderID string `json:"sender_id"`

	// RecipientID names the target agent, or BroadcastRecipient.
	RecipientID string `json:"recipient_id"`

	// Payload carries the task data or result.
	Payload map[string]any `json:"payload"`

	// Timestamp is when the message was created.
	Timestamp time.Time `json:"timestamp"`

	// CorrelationID links a response or error back to its request.
	CorrelationID string `json:"correlation_id,omitempty"`
}

func newMessage(messageType MessageType, senderID, recipientID string, payload map[string]any) *Message {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Message{
		MessageID:   uuid.NewString(),
		MessageType: messageType,
		SenderID:    senderID,
		RecipientID: recipientID,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
	}
}

// NewRequest creates a task request message.
func NewRequest(senderID, recipientID string, payload map[string]any) *Message {
	return newMessage(MessageTypeRequest, senderID, recipientID, payload)
}

// NewBroadcast creates a message addressed to every agent.
func NewBroadcast(senderID string, payload map[string]any) *Message {
	return newMessage(MessageTypeBroadcast, senderID, BroadcastRecipient, payload)
}

// Reply creates the response to this message: sender and recipient are
// swapped and the correlation ID points back at the request.
func (m *Message) Reply(payload map[string]any) *Message {
	reply := newMessage(MessageTypeResponse, m.RecipientID, m.SenderID, payload)
	reply.CorrelationID = m.MessageID
	return reply
}

// ReplyError creates the error response to this message.
func (m *Message) ReplyError(errText string) *Message {
	reply := newMessage(MessageTypeError, m.RecipientID, m.SenderID,
		map[string]any{PayloadErrorKey: errText})
	reply.CorrelationID = m.MessageID
	return reply
}

// PayloadString returns the string payload value under the key, or empty.
func (m *Message) PayloadString(key string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	value, _ := m.Payload[key].(string)
	return value
}
