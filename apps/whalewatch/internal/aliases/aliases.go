// Package aliases maps addresses to human-readable display names.
package aliases

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/model"
)

// MaxAliasLength matches the aliases.alias column width, in characters
const MaxAliasLength = 100

var (
	ErrEmptyAddress = errors.New("address is required")
	ErrAliasTooLong = fmt.Errorf("alias must be at most %d characters", MaxAliasLength)
)

// Store persists aliases
type Store interface {
	SetAlias(address, alias string) error
	DeleteAlias(address string) error
	GetAllAliases() ([]model.Alias, error)
}

// Service is a write-through cache in front of the alias store.
// Keys are always lowercase.
type Service struct {
	store   Store
	logger  *zap.Logger
	mu      sync.RWMutex
	aliases map[string]string
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		aliases: make(map[string]string),
	}
}

// Load replaces the cache with the persisted table
func (s *Service) Load() error {
	stored, err := s.store.GetAllAliases()
	if err != nil {
		return fmt.Errorf("failed to load aliases: %w", err)
	}

	aliases := make(map[string]string, len(stored))
	for _, alias := range stored {
		aliases[normalize(alias.Address)] = alias.Name
	}

	s.mu.Lock()
	s.aliases = aliases
	s.mu.Unlock()

	s.logger.Info("Loaded aliases", zap.Int("count", len(aliases)))
	return nil
}

// Get returns the alias for address, if any
func (s *Service) Get(address string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alias, ok := s.aliases[normalize(address)]
	return alias, ok
}

// Set stores alias for address. A blank alias removes the entry.
func (s *Service) Set(address, alias string) error {
	key := normalize(address)
	if key == "" {
		return ErrEmptyAddress
	}

	alias = strings.TrimSpace(alias)
	if alias == "" {
		return s.Delete(key)
	}
	if utf8.RuneCountInString(alias) > MaxAliasLength {
		return ErrAliasTooLong
	}

	if err := s.store.SetAlias(key, alias); err != nil {
		return err
	}

	s.mu.Lock()
	s.aliases[key] = alias
	s.mu.Unlock()
	return nil
}

// Delete removes the alias for address
func (s *Service) Delete(address string) error {
	key := normalize(address)
	if key == "" {
		return ErrEmptyAddress
	}

	if err := s.store.DeleteAlias(key); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.aliases, key)
	s.mu.Unlock()
	return nil
}

// All returns a copy of the alias table sorted by address
func (s *Service) All() []model.Alias {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]model.Alias, 0, len(s.aliases))
	for address, name := range s.aliases {
		all = append(all, model.Alias{Address: address, Name: name})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Address < all[j].Address })
	return all
}

// Display returns the alias for address or its shortened form
func (s *Service) Display(address string) string {
	if alias, ok := s.Get(address); ok {
		return alias
	}
	return Shorten(address)
}

// Shorten renders 0x1234...abcd
func Shorten(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
