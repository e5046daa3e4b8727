package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dwikikusuma/storefront/internal/address/domain"
)

const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = time.Hour
)

// Service validates postal codes and resolves them through a Provider,
// caching successful lookups. Not-found and network failures are never
// cached.
type Service struct {
	provider Provider
	cache    *expirable.LRU[string, domain.Address]
	log      *slog.Logger
}

func NewService(provider Provider, cacheSize int, ttl time.Duration, log *slog.Logger) *Service {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		provider: provider,
		cache:    expirable.NewLRU[string, domain.Address](cacheSize, nil, ttl),
		log:      log,
	}
}

// Lookup resolves raw (formatted or not). Input that is not exactly eight
// digits fails with domain.ErrInvalidPostalCode without calling the provider.
func (s *Service) Lookup(ctx context.Context, raw string) (domain.Address, error) {
	cep, err := domain.Normalize(raw)
	if err != nil {
		return domain.Address{}, err
	}

	if addr, ok := s.cache.Get(cep); ok {
		return addr, nil
	}

	addr, err := s.provider.Lookup(ctx, cep)
	if err != nil {
		s.log.Debug("address lookup failed", slog.String("postal_code", cep), slog.Any("err", err))
		return domain.Address{}, err
	}

	if addr.PostalCode == "" {
		addr.PostalCode, _ = domain.Format(cep)
	}
	if addr.Country == "" {
		addr.Country = "Brasil"
	}
	s.cache.Add(cep, addr)
	return addr, nil
}
