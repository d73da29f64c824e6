package noop

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrKeyNotFound возвращается на любое чтение: noop ничего не хранит
var ErrKeyNotFound = errors.New("key not found")

// Store представляет no-op реализацию key-value хранилища.
// Запись молча отбрасывается, чтение ничего не находит.
type Store struct{}

// NewStore создаёт новый no-op Store
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Get(context.Context, string) (string, error) {
	return "", ErrKeyNotFound
}

func (s *Store) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}

func (s *Store) Delete(context.Context, ...string) error {
	return nil
}

func (s *Store) Expire(context.Context, string, time.Duration) error {
	return nil
}

func (s *Store) HGet(context.Context, string, string) (string, error) {
	return "", ErrKeyNotFound
}

func (s *Store) HSet(context.Context, string, string, interface{}) error {
	return nil
}

func (s *Store) HSetValues(context.Context, string, map[string]interface{}) error {
	return nil
}

// HGetAll всегда возвращает пустую карту
func (s *Store) HGetAll(context.Context, string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (s *Store) HDel(context.Context, string, ...string) error {
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}
