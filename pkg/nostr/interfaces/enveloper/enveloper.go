// Package enveloper defines the interface of wire protocol messages.
package enveloper

// I is an envelope, a JSON array whose first element is a label string.
type I interface {
	// Label returns the type tag string of the envelope.
	Label() string
	// Bytes renders the envelope to its wire form.
	Bytes() []byte
}
