package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	dErrors "safereturn/pkg/domain-errors"
)

// MaxMessageLength caps a beneficiary message, in characters.
const MaxMessageLength = 2000

// MessageTopic tags a beneficiary message for the case worker's triage.
type MessageTopic string

const (
	TopicGeneral MessageTopic = "general"
	TopicHousing MessageTopic = "housing"
	TopicJob     MessageTopic = "job"
	TopicHealth  MessageTopic = "health"
	TopicFamily  MessageTopic = "family"
)

var MessageTopics = []MessageTopic{TopicGeneral, TopicHousing, TopicJob, TopicHealth, TopicFamily}

// ParseMessageTopic accepts a known topic; empty means general.
func ParseMessageTopic(s string) (MessageTopic, error) {
	if s == "" {
		return TopicGeneral, nil
	}
	for _, t := range MessageTopics {
		if string(t) == s {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidEnum, fmt.Sprintf("topic: unknown value %q", s))
}

// NormalizeMessageBody trims the body and enforces the length bounds.
func NormalizeMessageBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", dErrors.New(dErrors.CodeValidation, "message body is required")
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("message body exceeds %d characters", MaxMessageLength))
	}
	return body, nil
}
