// Package storagetest provides an in-memory object store.
package storagetest

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
)

type Object struct {
	ContentType string
	Data        []byte
}

type MemoryStore struct {
	BaseURL string
	// Err, when set, fails every Put.
	Err error

	mu      sync.Mutex
	objects map[string]Object
	puts    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		BaseURL: "https://objects.test/audio-recordings/",
		objects: make(map[string]Object),
	}
}

func (s *MemoryStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	s.mu.Lock()
	s.puts++
	fail := s.Err
	s.mu.Unlock()
	if fail != nil {
		return "", fail
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "read object")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[key]; exists {
		return "", errors.Errorf("object %s already exists", key)
	}
	s.objects[key] = Object{ContentType: contentType, Data: data}
	return s.BaseURL + key, nil
}

func (s *MemoryStore) Get(key string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Resolve maps a URL handed out by Put back to its object.
func (s *MemoryStore) Resolve(url string) (Object, bool) {
	if len(url) < len(s.BaseURL) || url[:len(s.BaseURL)] != s.BaseURL {
		return Object{}, false
	}
	return s.Get(url[len(s.BaseURL):])
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Puts counts calls, including failed ones.
func (s *MemoryStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}
