package websocket

import (
	"fmt"
	"net"
	"net/url"
)

// RealtimeURL derives the realtime endpoint from the HTTP base URL of the
// game server: https becomes wss, http becomes ws, and the port is swapped
// for the realtime port when one is given.
func RealtimeURL(baseURL, port, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	var scheme string
	switch u.Scheme {
	case "https", "wss":
		scheme = "wss"
	case "http", "ws":
		scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q in %s", u.Scheme, baseURL)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("no host in %s", baseURL)
	}

	host := u.Host
	if port != "" {
		host = net.JoinHostPort(u.Hostname(), port)
	}
	return (&url.URL{Scheme: scheme, Host: host, Path: path}).String(), nil
}
