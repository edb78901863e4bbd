package acl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/contentgrid/content-search/internal/repo"
)

const defaultLookupTimeout = 2 * time.Second

// Resolver computes the effective ACL of a content item from the current
// repository state: the owner plus every principal holding any role in
// the item's site. It never caches; the index writer calls it again on
// every event so membership changes take effect within one ingestion
// cycle.
type Resolver struct {
	directory     repo.Directory
	lookupTimeout time.Duration
}

func NewResolver(directory repo.Directory, lookupTimeout time.Duration) *Resolver {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	return &Resolver{directory: directory, lookupTimeout: lookupTimeout}
}

// Resolve returns the sorted set of principals permitted to read itemID,
// owned by ownerID and contained in siteID (nil for items outside any
// site). An empty ownerID falls back to the directory's recorded owner.
// Directory lookups run under the resolver's timeout; a failed lookup is
// returned as is so the caller can defer and retry the event.
func (r *Resolver) Resolve(ctx context.Context, itemID, ownerID string, siteID *string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	if ownerID == "" {
		owner, err := r.directory.GetOwner(ctx, itemID)
		switch {
		case err == nil:
			ownerID = owner
		case errors.Is(err, repo.ErrItemNotFound):
			// no recorded owner, the site membership alone carries the acl
		default:
			return nil, fmt.Errorf("resolving owner of item %q: %w", itemID, err)
		}
	}

	principals := map[string]struct{}{}
	if ownerID != "" {
		principals[ownerID] = struct{}{}
	}

	if siteID != nil && *siteID != "" {
		members, err := r.directory.GetSiteMembership(ctx, *siteID)
		if err != nil {
			return nil, fmt.Errorf("resolving membership of site %q: %w", *siteID, err)
		}
		for _, m := range members {
			principals[m.PrincipalID] = struct{}{}
		}
	}

	resolved := make([]string, 0, len(principals))
	for p := range principals {
		resolved = append(resolved, p)
	}
	sort.Strings(resolved)

	return resolved, nil
}
