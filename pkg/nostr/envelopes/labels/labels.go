// Package labels defines the type tag strings that lead the JSON arrays of
// the wire protocol.
package labels

const (
	EVENT  = "EVENT"
	OK     = "OK"
	REQ    = "REQ"
	CLOSE  = "CLOSE"
	CLOSED = "CLOSED"
	EOSE   = "EOSE"
	NOTICE = "NOTICE"
	AUTH   = "AUTH"
	COUNT  = "COUNT"
)

// List contains all recognised labels, client and relay side.
var List = []string{EVENT, OK, REQ, CLOSE, CLOSED, EOSE, NOTICE, AUTH, COUNT}
