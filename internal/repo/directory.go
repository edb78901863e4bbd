package repo

import (
	"context"
	"errors"
)

var (
	ErrSiteNotFound = errors.New("site not found")
	ErrItemNotFound = errors.New("item not found")
)

type SiteVisibility string

const (
	SiteVisibilityPrivate SiteVisibility = "private"
	SiteVisibilityPublic  SiteVisibility = "public"
)

type Site struct {
	ID         string
	Visibility SiteVisibility
}

// Membership is one (principal, role) pair of a site. Any role grants
// read access; roles are carried for completeness but never restrict
// queries.
type Membership struct {
	PrincipalID string
	Role        string
}

// Directory is the lookup boundary to the content repository. The
// repository itself (document storage, site/user management) is an
// external system; the indexer only ever reads membership and ownership
// through this interface. Calls may block on remote lookups and must be
// given a bounded context by the caller.
type Directory interface {
	GetSiteMembership(ctx context.Context, siteID string) ([]Membership, error)
	GetOwner(ctx context.Context, itemID string) (string, error)
}
