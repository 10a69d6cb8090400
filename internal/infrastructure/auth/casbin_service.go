package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/Mulandii/Clinic-cms/internal/config"
)

// routeModel matches a role subject against route patterns
const routeModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj)
`

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService compiles the route table into casbin policies. When db is
// non-nil the policies are mirrored into the casbin_rule table.
func NewCasbinService(db *gorm.DB, rules []config.RouteRule) (*CasbinService, error) {
	m, err := model.NewModelFromString(routeModel)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}

	var E *casbin.Enforcer
	if db != nil {
		adp, err := gormadapter.NewAdapterByDB(db)
		if err != nil {
			return nil, fmt.Errorf("casbin adapter: %w", err)
		}
		E, err = casbin.NewEnforcer(m, adp)
		if err != nil {
			return nil, err
		}
	} else {
		E, err = casbin.NewEnforcer(m)
		if err != nil {
			return nil, err
		}
	}

	// The route table in code is the source of truth; the stored copy is replaced.
	E.EnableAutoSave(false)
	E.ClearPolicy()
	for _, rule := range rules {
		for _, role := range rule.Roles.Roles() {
			if _, err := E.AddPolicy(role.Subject(), rule.Path); err != nil {
				return nil, fmt.Errorf("casbin policy %s %s: %w", role, rule.Path, err)
			}
		}
	}
	if db != nil {
		if err := E.SavePolicy(); err != nil {
			return nil, fmt.Errorf("casbin save: %w", err)
		}
	}

	return &CasbinService{E}, nil
}
