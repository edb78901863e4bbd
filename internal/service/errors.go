package service

import (
	"fmt"
)

type ErrInvalidSearchQuery struct {
	error
}

func NewErrInvalidSearchQuery(message string) *ErrInvalidSearchQuery {
	return &ErrInvalidSearchQuery{fmt.Errorf("invalid search query: %s", message)}
}

type ErrInvalidPrincipal struct {
	error
}

func NewErrInvalidPrincipal() *ErrInvalidPrincipal {
	return &ErrInvalidPrincipal{fmt.Errorf("search requests must name a requesting principal")}
}

type ErrInvalidConsistency struct {
	error
}

func NewErrInvalidConsistency(message string) *ErrInvalidConsistency {
	return &ErrInvalidConsistency{fmt.Errorf("invalid consistency requirement: %s", message)}
}
