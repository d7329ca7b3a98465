// Package state provides a lightweight FSM/session manager for Telegram bots.
// Sessions live in process memory; a restart drops every conversation.
package state
