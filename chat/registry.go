package chat

import (
	"net"
	"time"

	"github.com/udpchat/udpchat/set"
)

// ClientInfo is what the server tracks for a connected endpoint. The
// endpoint address is the identity; the display name is whatever the last
// join packet said it was.
type ClientInfo struct {
	Addr   *net.UDPAddr
	Name   string
	Joined time.Time
}

// Registry tracks one ClientInfo per endpoint. It is mutated only from the
// router goroutine; the set's own locking makes reads from elsewhere (the
// shutdown summary) safe.
type Registry struct {
	clients *set.Set
}

func NewRegistry() *Registry {
	return &Registry{
		clients: set.New(),
	}
}

// Register inserts or overwrites the ClientInfo for an endpoint. A re-join
// updates the display name but keeps the original join time.
func (r *Registry) Register(addr *net.UDPAddr, name string) *ClientInfo {
	info := &ClientInfo{Addr: addr, Name: name, Joined: time.Now()}
	if prev, ok := r.Lookup(addr); ok {
		info.Joined = prev.Joined
	}
	r.clients.Add(set.Itemize(addr.String(), info))
	logger.Printf("%s joined as %q", addr, name)
	return info
}

// Lookup returns the ClientInfo for an endpoint, if registered.
func (r *Registry) Lookup(addr *net.UDPAddr) (*ClientInfo, bool) {
	item, err := r.clients.Get(addr.String())
	if err != nil {
		return nil, false
	}
	return item.Value().(*ClientInfo), true
}

// ResolveName returns the endpoint of some client with the given display
// name. Names are not unique; ties resolve to an arbitrary match (map
// iteration order).
func (r *Registry) ResolveName(name string) (*ClientInfo, bool) {
	var found *ClientInfo
	r.clients.Each(func(key string, item set.Item) error {
		info := item.Value().(*ClientInfo)
		if info.Name == name {
			found = info
			return errStopIteration
		}
		return nil
	})
	return found, found != nil
}

// Remove deletes the entry for an endpoint and returns it, or nil if the
// endpoint was not registered.
func (r *Registry) Remove(addr *net.UDPAddr) *ClientInfo {
	info, ok := r.Lookup(addr)
	if !ok {
		return nil
	}
	r.clients.Remove(addr.String())
	logger.Printf("%s (%q) removed", addr, info.Name)
	return info
}

// Addrs returns a snapshot of all registered endpoints, safe to iterate
// while registrations change underneath.
func (r *Registry) Addrs() []*net.UDPAddr {
	items := r.clients.List()
	addrs := make([]*net.UDPAddr, 0, len(items))
	for _, item := range items {
		addrs = append(addrs, item.Value().(*ClientInfo).Addr)
	}
	return addrs
}

// All returns a snapshot of all registered clients.
func (r *Registry) All() []*ClientInfo {
	items := r.clients.List()
	infos := make([]*ClientInfo, 0, len(items))
	for _, item := range items {
		infos = append(infos, item.Value().(*ClientInfo))
	}
	return infos
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	return r.clients.Len()
}
