// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose coupling
// between components in the system. Conversation controllers emit events without knowing
// which handlers will process them, so the audit log and the live WebSocket feed stay
// outside the chat package.
//
// The primary components are:
// - ConversationEvent: Represents a change to one conversation session
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
