package mmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog"

	"geoapi/internal/domain"
	"geoapi/internal/infra"
)

// Locator resolves geolocation data from a local MaxMind GeoLite2/GeoIP2 City
// database. It is an offline alternative to the hosted provider: domains are
// resolved to an address first, then looked up in the database.
type Locator struct {
	reader   *geoip2.Reader
	resolver *net.Resolver
	logger   *infra.Logger
}

// Open opens the database at the given path.
func Open(path string, logger *infra.Logger) (*Locator, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("mmdb: database path is required")
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmdb: open database: %w", err)
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Locator{reader: reader, resolver: net.DefaultResolver, logger: logger}, nil
}

// LookupIP resolves geolocation data for an IP address.
func (l *Locator) LookupIP(ctx context.Context, ip string) (*domain.Geolocation, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("%w: invalid ip %q", domain.ErrLookupService, ip)
	}
	record, err := l.reader.City(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupService, err)
	}
	if record == nil || (record.Country.IsoCode == "" && record.Location.Latitude == 0 && record.Location.Longitude == 0) {
		return nil, domain.ErrGeolocationNotFound
	}

	region := ""
	if len(record.Subdivisions) > 0 {
		region = record.Subdivisions[0].Names["en"]
	}
	g := &domain.Geolocation{
		IP:         parsed.String(),
		Latitude:   record.Location.Latitude,
		Longitude:  record.Location.Longitude,
		City:       record.City.Names["en"],
		Region:     region,
		Country:    record.Country.Names["en"],
		Continent:  record.Continent.Names["en"],
		PostalCode: record.Postal.Code,
		Timezone:   record.Location.TimeZone,
	}
	l.logger.Debug().Str("ip", g.IP).Msg("mmdb: resolved geolocation")
	return g, nil
}

// LookupDomain resolves the domain to an address first, then looks it up.
func (l *Locator) LookupDomain(ctx context.Context, name string) (*domain.Geolocation, error) {
	addrs, err := l.resolver.LookupIPAddr(ctx, name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, domain.ErrGeolocationNotFound
		}
		return nil, fmt.Errorf("%w: resolve %q: %v", domain.ErrLookupService, name, err)
	}
	if len(addrs) == 0 {
		return nil, domain.ErrGeolocationNotFound
	}
	return l.LookupIP(ctx, addrs[0].IP.String())
}

// Available reports whether the database reader is open. There is no remote
// dependency to probe.
func (l *Locator) Available(ctx context.Context) bool {
	return l != nil && l.reader != nil
}

// Close closes the underlying database reader.
func (l *Locator) Close() error {
	if l == nil || l.reader == nil {
		return nil
	}
	return l.reader.Close()
}
