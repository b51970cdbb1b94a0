package config

import "fmt"

type ChannelKeyStruct struct{}

// ExamMonitorChannel returns the Redis PubSub channel name for an exam monitor.
func (ChannelKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

// SessionMonitorChannel returns the Redis PubSub channel for one session.
func (ChannelKeyStruct) SessionMonitorChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:monitor", sessionID)
}

var ChannelKey = ChannelKeyStruct{}
