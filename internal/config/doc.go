// Package config loads the JSON configuration file.
//
// The file names the chat to notify, the bounding box and currencies to query,
// the points of interest to measure distances to, and the pause between polls.
// Invalid files are rejected as a whole so the poll loop never starts with a
// partial configuration.
package config
