package mediator

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/swapi"
)

// LoadSignal is the pagination intent a consumer asks the mediator to serve.
type LoadSignal int

const (
	Refresh LoadSignal = iota
	Append
	Prepend
)

func (s LoadSignal) String() string {
	switch s {
	case Refresh:
		return "refresh"
	case Append:
		return "append"
	case Prepend:
		return "prepend"
	default:
		return fmt.Sprintf("LoadSignal(%d)", int(s))
	}
}

// ParseLoadSignal parses the String form of a LoadSignal.
func ParseLoadSignal(s string) (LoadSignal, error) {
	switch s {
	case "refresh":
		return Refresh, nil
	case "append":
		return Append, nil
	case "prepend":
		return Prepend, nil
	}
	return 0, fmt.Errorf("unknown load signal %q", s)
}

// InitializeAction is the outcome of the staleness check run before the first
// load of a label.
type InitializeAction int

const (
	LaunchInitialRefresh InitializeAction = iota
	SkipInitialRefresh
)

// ErrorKind classifies a failed load.
type ErrorKind string

const (
	KindNone      ErrorKind = ""
	KindNetwork   ErrorKind = "network"
	KindProtocol  ErrorKind = "protocol"
	KindStorage   ErrorKind = "storage"
	KindCancelled ErrorKind = "cancelled"
)

// Result is reported back to the paging consumer for every load.
type Result struct {
	Success   bool
	Exhausted bool
	Kind      ErrorKind
	Err       error

	// Signal is the signal actually served, after any staleness upgrade.
	Signal  LoadSignal
	Fetched int
}

func classify(err error) ErrorKind {
	var (
		storageErr  *entities.StorageError
		networkErr  *swapi.NetworkError
		protocolErr *swapi.ProtocolError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &storageErr):
		return KindStorage
	case errors.As(err, &networkErr):
		return KindNetwork
	case errors.As(err, &protocolErr):
		return KindProtocol
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindProtocol
	}
}
