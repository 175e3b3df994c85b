package assessment

import "sync"

// Registry keeps the in-progress attempt of each (user, assessment) pair.
// Attempts live in memory only; nothing is stored until SaveResult.
type Registry struct {
	mu       sync.Mutex
	attempts map[registryKey]*Attempt
}

type registryKey struct {
	userID       string
	assessmentID string
}

func NewRegistry() *Registry {
	return &Registry{attempts: make(map[registryKey]*Attempt)}
}

// Start begins a fresh attempt, discarding any earlier one for the same pair.
func (r *Registry) Start(userID string, def *Definition) *Attempt {
	a := NewAttempt(def)
	r.mu.Lock()
	r.attempts[registryKey{userID, def.ID}] = a
	r.mu.Unlock()
	return a
}

func (r *Registry) Get(userID, assessmentID string) (*Attempt, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[registryKey{userID, assessmentID}]
	return a, ok
}

// DropUser forgets every attempt of a user, e.g. on logout.
func (r *Registry) DropUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.attempts {
		if k.userID == userID {
			delete(r.attempts, k)
		}
	}
}
