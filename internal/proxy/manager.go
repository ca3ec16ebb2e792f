package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// Manager rotates outbound page fetches across a fixed proxy list.
type Manager struct {
	proxies    []*url.URL
	mu         sync.Mutex
	proxyIndex int
}

// NewManager parses the proxy list. An empty list means direct connections.
func NewManager(rawProxies []string) (*Manager, error) {
	m := &Manager{}
	for _, raw := range rawProxies {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q", raw)
		}
		m.proxies = append(m.proxies, u)
	}
	return m, nil
}

// Len reports how many proxies are configured.
func (m *Manager) Len() int {
	return len(m.proxies)
}

// GetProxy returns the next proxy, rotating sequentially, or nil when none are configured.
func (m *Manager) GetProxy() *url.URL {
	if len(m.proxies) == 0 {
		return nil // No proxy
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return p
}

// ProxyFunc plugs the rotation into http.Transport.Proxy.
func (m *Manager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(*http.Request) (*url.URL, error) {
		return m.GetProxy(), nil
	}
}
