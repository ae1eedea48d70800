// Package cli implements the command-line interface for atm-watch.
//
// The cli package provides the Cobra-based root command. It loads the config
// file and message template, builds the ATM and Telegram clients, and runs the
// poll loop until the process receives SIGINT or SIGTERM.
package cli
