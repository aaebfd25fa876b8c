package auth

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var _ ProfileRepository = (*MemoryProfiles)(nil)

type MemoryProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]Profile
}

func NewMemoryProfiles(seed ...Profile) *MemoryProfiles {
	m := &MemoryProfiles{profiles: make(map[uuid.UUID]Profile, len(seed))}
	for _, p := range seed {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *MemoryProfiles) GetByID(_ context.Context, id uuid.UUID) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (m *MemoryProfiles) InsertIfAbsent(_ context.Context, p *Profile) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[p.ID]; ok {
		return false, nil
	}
	m.profiles[p.ID] = *p
	return true, nil
}

func (m *MemoryProfiles) Upsert(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.profiles[p.ID]
	if ok {
		existing.FullName = p.FullName
		existing.Role = p.Role
		m.profiles[p.ID] = existing
		return nil
	}
	m.profiles[p.ID] = *p
	return nil
}

func (m *MemoryProfiles) List(_ context.Context) ([]*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *MemoryProfiles) UpdateRole(_ context.Context, id uuid.UUID, role Role) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p.Role = role
	m.profiles[id] = p
	return &p, nil
}
