package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every devmodel topic.
const TopicPrefix = "devmodel"

// Topics builds the topics of one machine:
//
//	devmodel/{machine}/status              retained online/offline status
//	devmodel/{machine}/event/{type}        lifecycle events (created, unplugged, ...)
//	devmodel/{machine}/tree                retained qtree dump
//	devmodel/{machine}/request/{command}   control requests (device_add, ...)
//	devmodel/{machine}/response/{id}       control responses
//
// Example:
//
//	topics := mqtt.Topics{Machine: "sample"}
//	topics.Event("unplugged")
//	// Returns: "devmodel/sample/event/unplugged"
type Topics struct {
	Machine string
}

func (t Topics) base() string {
	return TopicPrefix + "/" + t.Machine
}

// Status returns the retained status topic.
//
// Example: devmodel/sample/status
func (t Topics) Status() string {
	return t.base() + "/status"
}

// Event returns the topic for one lifecycle event type.
//
// Example: devmodel/sample/event/created
func (t Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", t.base(), eventType)
}

// Tree returns the retained topic carrying the rendered device tree.
//
// Example: devmodel/sample/tree
func (t Topics) Tree() string {
	return t.base() + "/tree"
}

// Request returns the topic a control command is sent to.
//
// Example: devmodel/sample/request/device_add
func (t Topics) Request(command string) string {
	return fmt.Sprintf("%s/request/%s", t.base(), command)
}

// Response returns the topic the answer to requestID is published on.
//
// Example: devmodel/sample/response/req-1a2b3c4d
func (t Topics) Response(requestID string) string {
	return fmt.Sprintf("%s/response/%s", t.base(), requestID)
}

// AllEvents returns a pattern matching every lifecycle event.
//
// Pattern: devmodel/sample/event/+
func (t Topics) AllEvents() string {
	return t.base() + "/event/+"
}

// AllRequests returns a pattern matching every control request.
//
// Pattern: devmodel/sample/request/+
func (t Topics) AllRequests() string {
	return t.base() + "/request/+"
}

// RequestCommand extracts the command from a request topic of this machine.
func (t Topics) RequestCommand(topic string) (string, bool) {
	cmd, ok := strings.CutPrefix(topic, t.base()+"/request/")
	if !ok || cmd == "" || strings.Contains(cmd, "/") {
		return "", false
	}
	return cmd, true
}

// AllTopics returns a pattern matching all devmodel traffic of every machine.
//
// Pattern: devmodel/#
func AllTopics() string {
	return TopicPrefix + "/#"
}
