// Package poller implements the notification loop.
//
// Each cycle fetches ATMs, attaches point-of-interest distances, sorts the
// list, renders it and sends the result unless it is byte-for-byte the
// message sent last. The fingerprint of the last sent message lives in the
// Poller and is lost on restart, so the first cycle after a restart always
// sends. A failed fetch is treated like an empty result: the cycle is logged
// and skipped.
package poller
