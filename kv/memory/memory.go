package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrKeyNotFound возвращается когда ключ или поле хэша отсутствует
var ErrKeyNotFound = errors.New("key not found")

// ErrClosed возвращается после Close
var ErrClosed = errors.New("store is closed")

// ErrTypeMismatch возвращается при обращении к хэшу как к строке и наоборот
var ErrTypeMismatch = errors.New("type mismatch")

// DefaultCleanupInterval период удаления просроченных ключей
const DefaultCleanupInterval = time.Minute

// entry хранит строку или хэш, но не оба сразу
type entry struct {
	str       *string
	hash      map[string]string
	expiresAt time.Time // нулевое значение: без TTL
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store хранит строки и хэши в памяти процесса.
// Подходит для одного инстанса и для тестов.
type Store struct {
	mu     sync.Mutex
	items  map[string]*entry
	done   chan struct{}
	closed bool
}

// NewStore создаёт Store и запускает фоновую очистку просроченных ключей.
// cleanupInterval <= 0 отключает очистку: ключи удаляются лениво при чтении.
func NewStore(cleanupInterval time.Duration) *Store {
	s := &Store{
		items: make(map[string]*entry),
		done:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.janitor(cleanupInterval)
	}
	return s
}

// lookup возвращает живую запись; вызывается под мьютексом
func (s *Store) lookup(key string) (*entry, bool) {
	e, ok := s.items[key]
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		delete(s.items, key)
		return nil, false
	}
	return e, true
}

// Get получает строковое значение по ключу
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	e, ok := s.lookup(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	if e.str == nil {
		return "", errors.Wrapf(ErrTypeMismatch, "key %q holds a hash", key)
	}
	return *e.str, nil
}

// Set сохраняет значение; expiration <= 0 означает хранение без TTL
func (s *Store) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	str := stringify(value)
	e := &entry{str: &str}
	if expiration > 0 {
		e.expiresAt = time.Now().Add(expiration)
	}
	s.items[key] = e
	return nil
}

// Delete удаляет ключи
func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

// Expire задаёт TTL существующему ключу
func (s *Store) Expire(_ context.Context, key string, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	e, ok := s.lookup(key)
	if !ok {
		return nil
	}
	if expiration <= 0 {
		delete(s.items, key)
		return nil
	}
	e.expiresAt = time.Now().Add(expiration)
	return nil
}

// HGet получает значение поля хэша
func (s *Store) HGet(_ context.Context, key, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	e, ok := s.lookup(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	if e.hash == nil {
		return "", errors.Wrapf(ErrTypeMismatch, "key %q holds a string", key)
	}
	v, ok := e.hash[field]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// HSet устанавливает значение поля хэша
func (s *Store) HSet(ctx context.Context, key, field string, value interface{}) error {
	return s.HSetValues(ctx, key, map[string]interface{}{field: value})
}

// HSetValues устанавливает несколько полей хэша атомарно
func (s *Store) HSetValues(_ context.Context, key string, values map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if len(values) == 0 {
		return nil
	}
	e, ok := s.lookup(key)
	if !ok {
		e = &entry{hash: make(map[string]string, len(values))}
		s.items[key] = e
	}
	if e.hash == nil {
		return errors.Wrapf(ErrTypeMismatch, "key %q holds a string", key)
	}
	for f, v := range values {
		e.hash[f] = stringify(v)
	}
	return nil
}

// HGetAll возвращает копию хэша; отсутствующий ключ даёт пустую карту
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	result := make(map[string]string)
	e, ok := s.lookup(key)
	if !ok {
		return result, nil
	}
	if e.hash == nil {
		return nil, errors.Wrapf(ErrTypeMismatch, "key %q holds a string", key)
	}
	for k, v := range e.hash {
		result[k] = v
	}
	return result, nil
}

// HDel удаляет поля хэша; пустой хэш удаляется целиком
func (s *Store) HDel(_ context.Context, key string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	e, ok := s.lookup(key)
	if !ok || e.hash == nil {
		return nil
	}
	for _, f := range fields {
		delete(e.hash, f)
	}
	if len(e.hash) == 0 {
		delete(s.items, key)
	}
	return nil
}

// Ping проверяет, что Store не закрыт
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close останавливает очистку и освобождает данные. Повторный вызов безопасен.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	s.items = nil
	return nil
}

func (s *Store) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for k, e := range s.items {
				if e.expired(now) {
					delete(s.items, k)
				}
			}
			s.mu.Unlock()
		}
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
