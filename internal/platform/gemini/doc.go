// Package gemini provides an implementation of the gateway.Gateway interface
// backed by Google's Gemini API.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the conversation core to Google's hosted model without exposing
// SDK types to the rest of the application.
//
// Key components:
//
// 1. Gateway:
//   - Implements gateway.Gateway
//   - Owns the genai client and the generation settings shared by every session
//   - Pins each session to the tutor instruction and the JSON reply schema
//
// 2. Sessions:
//   - Wrap a genai chat, which keeps the multi-turn history server-side of the adapter
//   - Return the model's raw text; decoding belongs to the chat package
//
// 3. Error Handling:
//   - Retries transient failures with exponential backoff and jitter
//   - Applies a per-attempt timeout
//   - Translates SDK failures into the gateway package's sentinel errors
package gemini
