package eventstream

import "errors"

// ErrNilEvent indicates a nil relayed event payload was provided to a publisher.
var ErrNilEvent = errors.New("nil relayed event")

// ErrNoBrokers indicates a broker-backed publisher was configured without any
// broker addresses.
var ErrNoBrokers = errors.New("no eventstream brokers configured")
