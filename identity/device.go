package identity

import (
	"log"

	"github.com/google/uuid"

	"housefinder/storage"
)

// DeviceKey is the fixed storage key, identical to the original web client's
// localStorage key so an existing profile keeps its identity.
const DeviceKey = "housefinder_device_id"

// Provider hands out a stable pseudo-random device identifier used to
// correlate a user's requests without an account system.
type Provider struct {
	store storage.KV
}

func NewProvider(store storage.KV) *Provider {
	return &Provider{store: store}
}

// DeviceID returns the persisted identifier, generating and storing one on
// first use. When the store is unreadable or unwritable it falls back to a
// fresh, non-persisted identifier; that is a documented degradation, not an
// error, so correlation is simply lost for the session.
func (p *Provider) DeviceID() string {
	id, ok, err := p.store.Get(DeviceKey)
	if err != nil {
		log.Printf("Identity: storage unreadable, using ephemeral device id: %v", err)
		return newDeviceID()
	}
	if ok && id != "" {
		return id
	}

	id = newDeviceID()
	if err := p.store.Set(DeviceKey, id); err != nil {
		log.Printf("Identity: could not persist device id, using ephemeral: %v", err)
	}
	return id
}

// Clear drops the stored identifier. Mainly for test isolation.
func (p *Provider) Clear() error {
	return p.store.Delete(DeviceKey)
}

func newDeviceID() string {
	return uuid.NewString()
}
