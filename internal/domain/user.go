package domain

import "time"

// Role is the platform-wide role assigned to a user within an organization.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleOrgAdmin       Role = "org_admin"
	RoleProjectManager Role = "project_manager"
	RoleDeveloper      Role = "developer"
	RoleViewer         Role = "viewer"
)

// Permission is a fine-grained capability carried in access tokens.
type Permission string

const (
	PermOrgManage  Permission = "org:manage"
	PermOrgView    Permission = "org:view"
	PermOrgBilling Permission = "org:billing"

	PermUserManage Permission = "user:manage"
	PermUserView   Permission = "user:view"
	PermUserInvite Permission = "user:invite"

	PermProjectCreate Permission = "project:create"
	PermProjectManage Permission = "project:manage"
	PermProjectView   Permission = "project:view"
	PermProjectDelete Permission = "project:delete"

	PermAgentManage  Permission = "agent:manage"
	PermAgentView    Permission = "agent:view"
	PermAgentExecute Permission = "agent:execute"

	PermWorkflowManage  Permission = "workflow:manage"
	PermWorkflowView    Permission = "workflow:view"
	PermWorkflowApprove Permission = "workflow:approve"

	PermSystemAdmin Permission = "system:admin"
	PermAuditView   Permission = "audit:view"
)

// DefaultPermissions maps each role to the permission set granted at token
// issuance. Tokens snapshot this set; changing the map does not affect tokens
// already in flight.
var DefaultPermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermSystemAdmin, PermOrgManage, PermOrgView, PermOrgBilling,
		PermUserManage, PermUserView, PermUserInvite,
		PermProjectCreate, PermProjectManage, PermProjectView, PermProjectDelete,
		PermAgentManage, PermAgentView, PermAgentExecute,
		PermWorkflowManage, PermWorkflowView, PermWorkflowApprove,
		PermAuditView,
	},
	RoleOrgAdmin: {
		PermOrgManage, PermOrgView, PermOrgBilling,
		PermUserManage, PermUserView, PermUserInvite,
		PermProjectCreate, PermProjectManage, PermProjectView, PermProjectDelete,
		PermAgentManage, PermAgentView, PermAgentExecute,
		PermWorkflowManage, PermWorkflowView, PermWorkflowApprove,
		PermAuditView,
	},
	RoleProjectManager: {
		PermOrgView, PermUserView,
		PermProjectCreate, PermProjectManage, PermProjectView,
		PermAgentManage, PermAgentView, PermAgentExecute,
		PermWorkflowManage, PermWorkflowView, PermWorkflowApprove,
	},
	RoleDeveloper: {
		PermOrgView, PermUserView, PermProjectView,
		PermAgentView, PermAgentExecute, PermWorkflowView,
	},
	RoleViewer: {
		PermOrgView, PermProjectView, PermWorkflowView,
	},
}

// User is a directory record for an end user.
type User struct {
	ID             string
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	Role           Role
	OrganizationID string
	EmailVerified  bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Plan is the subscription tier of an organization.
type Plan string

const (
	PlanFree         Plan = "free"
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// OrganizationSettings holds per-organization limits and policy switches.
type OrganizationSettings struct {
	MaxProjects              int      `json:"maxProjects"`
	MaxUsers                 int      `json:"maxUsers"`
	AgentQuota               int      `json:"agentQuota"`
	AllowedDomains           []string `json:"allowedDomains"`
	RequireEmailVerification bool     `json:"requireEmailVerification"`
	EnableSSO                bool     `json:"enableSSO"`
	AuditRetentionDays       int      `json:"auditRetentionDays"`
}

// DefaultOrganizationSettings returns the settings applied to organizations
// created during self-service registration.
func DefaultOrganizationSettings() OrganizationSettings {
	return OrganizationSettings{
		MaxProjects:        10,
		MaxUsers:           5,
		AgentQuota:         100,
		AllowedDomains:     []string{},
		AuditRetentionDays: 90,
	}
}

// Organization is a directory record for a tenant organization.
type Organization struct {
	ID        string
	Name      string
	Slug      string
	Plan      Plan
	Settings  OrganizationSettings
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserProfile is the identity attached to requests and embedded in access
// tokens. It never carries the password hash.
type UserProfile struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	FirstName      string       `json:"firstName"`
	LastName       string       `json:"lastName"`
	Role           Role         `json:"role"`
	OrganizationID string       `json:"organizationId"`
	EmailVerified  bool         `json:"emailVerified"`
	Permissions    []Permission `json:"permissions"`
}

// OrganizationProfile is the organization payload returned by auth endpoints.
type OrganizationProfile struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Slug     string               `json:"slug"`
	Plan     Plan                 `json:"plan"`
	Settings OrganizationSettings `json:"settings"`
}

// NewUserProfile builds the request identity for a user, snapshotting the
// role's default permission set.
func NewUserProfile(u User) UserProfile {
	return UserProfile{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		EmailVerified:  u.EmailVerified,
		Permissions:    DefaultPermissions[u.Role],
	}
}

// NewOrganizationProfile builds the public organization payload.
func NewOrganizationProfile(o Organization) OrganizationProfile {
	return OrganizationProfile{
		ID:       o.ID,
		Name:     o.Name,
		Slug:     o.Slug,
		Plan:     o.Plan,
		Settings: o.Settings,
	}
}

// HasPermissions reports whether the profile's permission set is a superset
// of all required permissions.
func (p UserProfile) HasPermissions(required ...Permission) bool {
	for _, want := range required {
		found := false
		for _, have := range p.Permissions {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
