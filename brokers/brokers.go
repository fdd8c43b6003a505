// Package brokers holds the static catalog the pre-authentication flow
// chooses from, and persists the transient selection until login succeeds.
package brokers

import (
	"strconv"

	errs "github.com/brokerdeck/go-broker-client/internal/errors"
)

type Broker struct {
	ID    int
	Name  string
	Logo  string
	Color string
}

var catalog = []Broker{
	{ID: 1, Name: "Zerodha", Logo: "🟢", Color: "blue"},
	{ID: 2, Name: "Upstox", Logo: "📈", Color: "orange"},
	{ID: 3, Name: "Angel One", Logo: "👼", Color: "red"},
	{ID: 4, Name: "Groww", Logo: "🌱", Color: "green"},
	{ID: 5, Name: "HDFC Securities", Logo: "🏦", Color: "purple"},
	{ID: 6, Name: "ICICI Direct", Logo: "💼", Color: "indigo"},
}

// All returns the broker catalog.
func All() []Broker {
	out := make([]Broker, len(catalog))
	copy(out, catalog)
	return out
}

// Get returns the broker with the given ID.
func Get(id int) (*Broker, error) {
	for _, b := range catalog {
		if b.ID == id {
			broker := b
			return &broker, nil
		}
	}
	return nil, errs.Wrapf(errs.ErrNotFound, "broker %d", id)
}

// SelectionStore is the slice of the credential store the selection uses.
type SelectionStore interface {
	SelectedBroker() string
	SetSelectedBroker(id string) error
}

// Select validates the broker ID and persists it as the pre-authentication
// selection.
func Select(store SelectionStore, id int) (*Broker, error) {
	broker, err := Get(id)
	if err != nil {
		return nil, err
	}
	if err := store.SetSelectedBroker(strconv.Itoa(id)); err != nil {
		return nil, errs.Wrapf(err, "persisting broker selection")
	}
	return broker, nil
}

// Selected returns the currently selected broker, or nil when none is
// selected or the stored value no longer matches the catalog.
func Selected(store SelectionStore) *Broker {
	raw := store.SelectedBroker()
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	broker, err := Get(id)
	if err != nil {
		return nil
	}
	return broker
}
