package repo

import (
	"context"
	"sync"
)

// InMemoryDirectory is a Directory backed by process memory. It serves
// dev deployments without a repository connection and the test suites.
type InMemoryDirectory struct {
	mu      sync.RWMutex
	sites   map[string]Site
	members map[string][]Membership
	owners  map[string]string
}

var _ Directory = (*InMemoryDirectory)(nil)

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		sites:   make(map[string]Site),
		members: make(map[string][]Membership),
		owners:  make(map[string]string),
	}
}

func (d *InMemoryDirectory) AddSite(id string, visibility SiteVisibility) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sites[id] = Site{ID: id, Visibility: visibility}
}

func (d *InMemoryDirectory) AddMember(siteID, principalID, role string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, m := range d.members[siteID] {
		if m.PrincipalID == principalID {
			d.members[siteID][i].Role = role
			return
		}
	}
	d.members[siteID] = append(d.members[siteID], Membership{PrincipalID: principalID, Role: role})
}

func (d *InMemoryDirectory) RemoveMember(siteID, principalID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	members := d.members[siteID]
	for i, m := range members {
		if m.PrincipalID == principalID {
			d.members[siteID] = append(members[:i], members[i+1:]...)
			return
		}
	}
}

func (d *InMemoryDirectory) SetOwner(itemID, principalID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.owners[itemID] = principalID
}

func (d *InMemoryDirectory) GetSiteMembership(_ context.Context, siteID string) ([]Membership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, found := d.sites[siteID]; !found {
		return nil, ErrSiteNotFound
	}
	members := make([]Membership, len(d.members[siteID]))
	copy(members, d.members[siteID])
	return members, nil
}

func (d *InMemoryDirectory) GetOwner(_ context.Context, itemID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	owner, found := d.owners[itemID]
	if !found {
		return "", ErrItemNotFound
	}
	return owner, nil
}
