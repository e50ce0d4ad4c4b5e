package localstore

import (
	"strings"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore implementa Store em memória. Usado em testes e como fallback
// quando o armazenamento durável não pode ser aberto.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory cria um store vazio.
func NewMemory() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) Get(chave string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[chave]
	return v, ok, nil
}

func (s *MemoryStore) Set(chave, valor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[chave] = valor
	return nil
}

func (s *MemoryStore) Delete(chave string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chave)
	return nil
}

func (s *MemoryStore) Keys(prefixo string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chaves []string
	for k := range s.m {
		if strings.HasPrefix(k, prefixo) {
			chaves = append(chaves, k)
		}
	}
	return chaves, nil
}
