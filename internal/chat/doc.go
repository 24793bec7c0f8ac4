// Package chat implements the tutor's conversation core: the reply parser,
// the quiz engine, the per-session conversation controller and the registry
// that holds one controller per browser session.
//
// A Controller owns exactly one conversation. It arbitrates between open
// conversation, which goes through a gateway.Session, and quiz mode, which
// is handled locally by a QuizEngine. Every failure resolves to an idle,
// usable session carrying a Portuguese message for the user.
//
// Deferred work (the pause between quiz feedback and the next question) runs
// through a Scheduler so tests can drive it with a ManualScheduler instead of
// wall-clock timers.
package chat
