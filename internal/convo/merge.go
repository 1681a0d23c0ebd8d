// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package convo

import (
	"time"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/model"
)

// Pure merge logic for the conversation store. Everything here operates on
// plain values so the dedupe-and-order behavior is testable without a
// store, a server, or a goroutine.

// recordToMessage converts a server history record to a domain message.
func recordToMessage(rec api.ConversationRecord) model.Message {
	msg := model.Message{
		ID:          rec.ID,
		Role:        model.Role(rec.Role),
		Content:     rec.Message,
		Timestamp:   rec.Timestamp,
		Attachments: rec.Files,
		Stderr:      rec.Stderr,
		Status:      model.StatusOK,
	}
	if rec.Status == "error" {
		msg.Status = model.StatusError
	}
	if rec.ExecutionSecs > 0 {
		msg.ExecutionTime = time.Duration(rec.ExecutionSecs * float64(time.Second))
	}
	return msg
}

// pageToMessages converts a newest-first server page to ascending order.
func pageToMessages(page *api.ConversationPage) []model.Message {
	msgs := make([]model.Message, 0, len(page.Messages))
	for i := len(page.Messages) - 1; i >= 0; i-- {
		msgs = append(msgs, recordToMessage(page.Messages[i]))
	}
	return msgs
}

// mergeMessage reconciles a locally held message with a newly arrived copy
// of the same message. The incoming copy wins on every field it carries;
// the existing timestamp is kept so the message does not move in the
// transcript when the server echo lands.
func mergeMessage(existing, incoming model.Message) model.Message {
	merged := existing
	if incoming.Content != "" {
		merged.Content = incoming.Content
	}
	if incoming.Role != "" {
		merged.Role = incoming.Role
	}
	if incoming.Status != "" {
		merged.Status = incoming.Status
	}
	if incoming.Stderr != "" {
		merged.Stderr = incoming.Stderr
	}
	if len(incoming.Attachments) > 0 {
		merged.Attachments = incoming.Attachments
	}
	if incoming.ExecutionTime > 0 {
		merged.ExecutionTime = incoming.ExecutionTime
	}
	return merged
}

// insertMessage adds msg to a chronologically ascending list, keeping the
// list deduplicated by ID. Inserting a message whose ID is already present
// merges fields in place and never moves the message; a second insertion
// of an identical message is a no-op.
func insertMessage(list []model.Message, msg model.Message) []model.Message {
	for i := range list {
		if list[i].ID == msg.ID {
			list[i] = mergeMessage(list[i], msg)
			return list
		}
	}

	// Insert after every message that is not strictly newer, so messages
	// sharing a timestamp keep arrival order.
	pos := len(list)
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].Timestamp.After(msg.Timestamp) {
			break
		}
		pos = i
	}
	list = append(list, model.Message{})
	copy(list[pos+1:], list[pos:])
	list[pos] = msg
	return list
}

// mergeLists combines an older fetched span (ascending) with the already
// loaded span (ascending), deduplicating by ID. Fetched copies win on
// fields; positions follow the fetched span first, then remaining local
// messages in their existing order.
func mergeLists(older, existing []model.Message) []model.Message {
	merged := make([]model.Message, 0, len(older)+len(existing))
	index := make(map[string]int, len(older)+len(existing))

	for _, msg := range older {
		if i, ok := index[msg.ID]; ok {
			merged[i] = mergeMessage(merged[i], msg)
			continue
		}
		index[msg.ID] = len(merged)
		merged = append(merged, msg)
	}
	for _, msg := range existing {
		if i, ok := index[msg.ID]; ok {
			// Local copy is the older state; the fetched copy stays.
			merged[i] = mergeMessage(msg, merged[i])
			continue
		}
		index[msg.ID] = len(merged)
		merged = append(merged, msg)
	}
	return merged
}

// carryLocalTail returns the local-only messages that should survive a
// LoadInitial replace: messages not present in the fetched page and newer
// than its newest entry. These are optimistic sends and poller results the
// server has not yet persisted into history.
func carryLocalTail(existing, fetched []model.Message) []model.Message {
	var newest time.Time
	inFetched := make(map[string]bool, len(fetched))
	for _, msg := range fetched {
		inFetched[msg.ID] = true
		if msg.Timestamp.After(newest) {
			newest = msg.Timestamp
		}
	}

	var tail []model.Message
	for _, msg := range existing {
		if !inFetched[msg.ID] && msg.Timestamp.After(newest) {
			tail = append(tail, msg)
		}
	}
	return tail
}
