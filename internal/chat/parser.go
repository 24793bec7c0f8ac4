package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/obsolescence-tutor/internal/gateway"
)

// Reply is a decoded model reply.
type Reply struct {
	MainText    string
	Suggestions []string

	// Action is empty unless the model asked for a recognised action.
	Action string
}

// StartsQuiz reports whether the reply asks to begin the quiz.
func (r Reply) StartsQuiz() bool {
	return r.Action == gateway.ActionStartQuiz
}

// Decode validates raw against the reply document shape. The payload must be
// a JSON object with a string "response"; "suggestions" must be a list of
// strings or null. Any "action" other than the start_quiz string, including
// non-string values, decodes as no action.
func Decode(raw string) (Reply, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &doc); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if doc == nil {
		return Reply{}, fmt.Errorf("%w: not an object", ErrMalformedReply)
	}

	var reply Reply

	field, ok := doc[gateway.FieldResponse]
	if !ok {
		return Reply{}, fmt.Errorf("%w: missing %q", ErrMalformedReply, gateway.FieldResponse)
	}
	if err := decodeString(field, &reply.MainText, false); err != nil {
		return Reply{}, fmt.Errorf("%w: %q: %v", ErrMalformedReply, gateway.FieldResponse, err)
	}

	if field, ok := doc[gateway.FieldSuggestions]; ok && !isNull(field) {
		if err := json.Unmarshal(field, &reply.Suggestions); err != nil {
			return Reply{}, fmt.Errorf("%w: %q: %v", ErrMalformedReply, gateway.FieldSuggestions, err)
		}
	}
	if reply.Suggestions == nil {
		reply.Suggestions = []string{}
	}

	if field, ok := doc[gateway.FieldAction]; ok {
		var action string
		if err := decodeString(field, &action, true); err == nil && action == gateway.ActionStartQuiz {
			reply.Action = action
		}
	}

	return reply, nil
}

// Parse decodes raw and never fails: a malformed payload becomes the fixed
// apology text with no suggestions and no action.
func Parse(raw string) Reply {
	reply, err := Decode(raw)
	if err != nil {
		return Reply{MainText: malformedReplyFallback, Suggestions: []string{}}
	}
	return reply
}

func decodeString(field json.RawMessage, dst *string, nullable bool) error {
	if isNull(field) {
		if nullable {
			return nil
		}
		return errors.New("null value")
	}
	return json.Unmarshal(field, dst)
}

func isNull(field json.RawMessage) bool {
	return strings.TrimSpace(string(field)) == "null"
}

// stripCodeFence removes one surrounding ``` or ```json fence.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
