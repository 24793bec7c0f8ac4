package gemini

import (
	"github.com/phrazzld/obsolescence-tutor/internal/gateway"
	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

// replySchema describes the reply document every session must produce.
func replySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			gateway.FieldResponse: {
				Type:        genai.TypeString,
				Description: gateway.ResponseDescription,
			},
			gateway.FieldSuggestions: {
				Type:        genai.TypeArray,
				Description: gateway.SuggestionsDescription,
				Items:       &genai.Schema{Type: genai.TypeString},
			},
			gateway.FieldAction: {
				Type:        genai.TypeString,
				Description: gateway.ActionDescription,
				Nullable:    genai.Ptr(true),
			},
		},
		Required: []string{gateway.FieldResponse, gateway.FieldSuggestions},
		PropertyOrdering: []string{
			gateway.FieldResponse,
			gateway.FieldSuggestions,
			gateway.FieldAction,
		},
	}
}

// sessionConfig is the generation config shared by every chat.
func sessionConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(gateway.SystemInstruction, genai.RoleUser),
		ResponseMIMEType:  jsonMIMEType,
		ResponseSchema:    replySchema(),
	}
}
