// Package state provides per-user conversation sessions for Telegram bots:
// a typed session store with in-memory and Redis backends and a keyed lock
// used to serialize updates from the same user.
package state
