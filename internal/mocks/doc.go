// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of interfaces used throughout the application,
// so tests in different packages share one set of fakes instead of defining inline mocks.
//
// Usage:
//
//	import "github.com/phrazzld/obsolescence-tutor/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    gw, session := mocks.NewMockGatewayWithReplies(
//	        mocks.ReplyJSON("Olá!", []string{"O que é?"}, ""),
//	    )
//	    session.Err = gateway.ErrTransientFailure
//
//	    // Use the mock in your test...
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Track calls behind a mutex so parallel tests can inspect them
package mocks
