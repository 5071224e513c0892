//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"chat-relay/domain/chat"
	"chat-relay/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IRegistry tracks this process's live connections and their bound
// identities. It is process-local state; the bus is the only place
// presence crosses process boundaries.
type IRegistry interface {
	Register(connID string)
	Bind(connID string, identity chat.Identity) error
	Identity(connID string) (chat.Identity, bool)
	Unregister(connID string) (chat.Identity, bool)
	Count() int
	Touch(connID string)
	Stale(cutoff time.Time) []string
}

// Bus is the fan-out channel shared by every relay process. It must keep
// per-publisher ordering and deliver at least once to all live
// subscribers; it is the only cross-process coordination point.
type Bus interface {
	Publish(ctx context.Context, env event.Envelope) error
	// Subscribe registers a handler for every envelope published on the
	// bus, including this process's own publications. The returned
	// function removes the subscription.
	Subscribe(handler func(event.Envelope)) (func(), error)
	Close()
}
