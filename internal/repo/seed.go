package repo

import (
	"encoding/json"
	"fmt"
	"os"
)

type seedMembership struct {
	PrincipalID string `json:"principalId"`
	Role        string `json:"role"`
}

type seedSite struct {
	ID         string           `json:"id"`
	Visibility SiteVisibility   `json:"visibility"`
	Members    []seedMembership `json:"members"`
}

type seedFile struct {
	Sites  []seedSite        `json:"sites"`
	Owners map[string]string `json:"owners"`
}

// LoadDirectory builds an InMemoryDirectory from a JSON seed file.
// Deployments without a repository connection describe their sites,
// memberships and item owners there; an unseeded directory resolves no
// site at all.
func LoadDirectory(path string) (*InMemoryDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory seed: %w", err)
	}

	seed := seedFile{}
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parsing directory seed %s: %w", path, err)
	}

	directory := NewInMemoryDirectory()
	for _, site := range seed.Sites {
		visibility := site.Visibility
		if visibility == "" {
			visibility = SiteVisibilityPrivate
		}
		directory.AddSite(site.ID, visibility)
		for _, member := range site.Members {
			directory.AddMember(site.ID, member.PrincipalID, member.Role)
		}
	}
	for itemID, owner := range seed.Owners {
		directory.SetOwner(itemID, owner)
	}

	return directory, nil
}
