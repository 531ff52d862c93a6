package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when the resolver is not initialized.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// CityResolver suggests a city for a client address.
type CityResolver interface {
	City(ip string) (string, error)
}

// cityReader is the part of geoip2.Reader used here.
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// Resolver provides city lookups backed by a MaxMind GeoIP2/GeoLite2 City database.
type Resolver struct {
	reader  cityReader
	locales []string
}

// NewResolver opens the GeoIP database at the given path. When the path is empty, nil is returned.
func NewResolver(path string, locales ...string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return newResolver(reader, locales), nil
}

func newResolver(reader cityReader, locales []string) *Resolver {
	if len(locales) == 0 {
		locales = []string{"pt-BR", "en"}
	}
	return &Resolver{reader: reader, locales: locales}
}

// City returns the localized city name for ip, or "" when the database has none.
func (r *Resolver) City(ip string) (string, error) {
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() {
		return "", nil
	}
	record, err := r.reader.City(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup city: %w", err)
	}
	if record == nil {
		return "", nil
	}
	for _, locale := range r.locales {
		if name := record.City.Names[locale]; name != "" {
			return name, nil
		}
	}
	return "", nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
