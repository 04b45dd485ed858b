package rbac

import (
	"github.com/casbin/casbin/v2"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
}

// NewService seeds the static policy table. Roles come from the JWT role
// claim; there is no per-tenant policy storage.
func NewService(enforcer *casbin.Enforcer) (Service, error) {
	s := &service{enforcer: enforcer}
	if err := s.loadPolicies(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) loadPolicies() error {
	// Admin inherits everything a user can do.
	if _, err := s.enforcer.AddGroupingPolicy(RoleAdmin, RoleUser); err != nil {
		return err
	}

	policies := [][]string{
		{RoleAdmin, "tax_rates", "read"},
		{RoleAdmin, "tax_rates", "manage"},
		{RoleUser, "taxes", "read"},
		{RoleUser, "taxes", "calculate"},
		{RoleUser, "payroll", "read"},
		{RoleUser, "payroll", "calculate"},
	}

	for _, p := range policies {
		if _, err := s.enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}

	return nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
