package unit

import (
	"fmt"
	"sync"

	"github.com/aoscloud/aos-protocols/errors"
)

// PayloadFactory creates an empty payload instance for one message type,
// ready to be unmarshalled into.
type PayloadFactory func() Payload

// Registration holds the factory and metadata for one message type.
type Registration struct {
	Factory     PayloadFactory `json:"-"`
	MessageType string         `json:"messageType"`
	Description string         `json:"description"`
	Example     map[string]any `json:"example,omitempty"`
}

// Registry maps messageType discriminator values to payload factories.
// It is safe for concurrent use: registration happens during init, lookups
// may run from any number of decoding goroutines.
type Registry struct {
	mu            sync.RWMutex
	registrations map[string]*Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[string]*Registration),
	}
}

// Register adds a message type registration. Duplicate message types and
// nil factories are rejected.
func (r *Registry) Register(registration *Registration) error {
	if registration == nil {
		return errors.Wrap(fmt.Errorf("registration is nil"), "Registry", "Register", "registration validation")
	}
	if registration.Factory == nil {
		return errors.Wrap(fmt.Errorf("factory is nil"), "Registry", "Register", "factory validation")
	}
	if registration.MessageType == "" {
		return errors.Wrap(fmt.Errorf("message type is empty"), "Registry", "Register", "message type validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.registrations[registration.MessageType]; exists {
		return errors.Wrap(
			fmt.Errorf("%w: %q", errors.ErrAlreadyRegistered, registration.MessageType),
			"Registry", "Register", "duplicate check")
	}

	r.registrations[registration.MessageType] = registration
	return nil
}

// Create instantiates an empty payload for the given discriminator value.
// Returns nil when the message type is not registered.
func (r *Registry) Create(messageType string) Payload {
	r.mu.RLock()
	registration, exists := r.registrations[messageType]
	r.mu.RUnlock()

	if !exists {
		return nil
	}
	return registration.Factory()
}

// Get returns the registration for a message type without its factory.
func (r *Registry) Get(messageType string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, exists := r.registrations[messageType]
	if !exists {
		return nil, false
	}
	return registration.withoutFactory(), true
}

// List returns every registration, without factories, keyed by message
// type.
func (r *Registry) List() map[string]*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Registration, len(r.registrations))
	for messageType, registration := range r.registrations {
		result[messageType] = registration.withoutFactory()
	}
	return result
}

// withoutFactory copies the registration metadata, dropping the factory so
// callers cannot instantiate payloads behind the registry's back.
func (reg *Registration) withoutFactory() *Registration {
	return &Registration{
		MessageType: reg.MessageType,
		Description: reg.Description,
		Example:     reg.Example,
	}
}

// defaultRegistry holds the five AosUnit message types, registered by
// messages_init.go.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry pre-populated with every AosUnit
// message type. Decode uses it unless given an explicit registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
