package cache

import (
	"sync"
	"time"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/odds"
)

// Entry é o último snapshot bem-sucedido de um esporte.
// Nunca é alterado depois de gravado; uma atualização substitui o Entry inteiro.
type Entry struct {
	Data      []odds.GameOdds
	FetchedAt time.Time
}

// Age retorna há quanto tempo o snapshot foi obtido
func (e Entry) Age(now time.Time) time.Duration { return now.Sub(e.FetchedAt) }

// Freshness guarda um único snapshot por esporte, em memória do processo
type Freshness struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewFreshness cria um cache vazio
func NewFreshness() *Freshness {
	return &Freshness{entries: make(map[string]Entry)}
}

// Load devolve uma cópia do snapshot atual, se existir
func (f *Freshness) Load(sport string) (Entry, bool) {
	f.mu.RLock()
	e, ok := f.entries[sport]
	f.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	return Entry{Data: odds.CloneAll(e.Data), FetchedAt: e.FetchedAt}, true
}

// Within devolve o snapshot quando sua idade é menor que ttl
func (f *Freshness) Within(sport string, now time.Time, ttl time.Duration) (Entry, bool) {
	e, ok := f.Load(sport)
	if !ok || e.Age(now) >= ttl {
		return Entry{}, false
	}
	return e, true
}

// Store substitui o snapshot do esporte por inteiro.
// O cache guarda sua própria cópia; o chamador pode continuar usando data.
func (f *Freshness) Store(sport string, data []odds.GameOdds, fetchedAt time.Time) {
	e := Entry{Data: odds.CloneAll(data), FetchedAt: fetchedAt}
	if e.Data == nil {
		e.Data = []odds.GameOdds{}
	}
	f.mu.Lock()
	f.entries[sport] = e
	f.mu.Unlock()
}
