// Package gateway defines the boundary between the conversation core and the
// hosted generative-language model (Gemini). It holds the Gateway and Session
// interfaces, the fixed tutor instruction, the reply-shape contract, and the
// errors adapters report, so the chat package never depends on a specific
// LLM SDK.
package gateway
