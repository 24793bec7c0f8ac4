// Package domain defines the core conversation entities (messages and quiz
// questions) and the errors they report.
package domain
