package model

// RoleCode is the closed set of roles the service understands
type RoleCode string

const (
	RoleAdmin      RoleCode = "ADMIN"
	RoleDepartment RoleCode = "DEPARTMENT"
	RoleAuthorizer RoleCode = "AUTHORIZER"
	RoleWarehouse  RoleCode = "WAREHOUSE"
)

func (c RoleCode) Valid() bool {
	_, ok := roleCapabilities[c]
	return ok
}

// Capability is a permission checked at the service boundary
type Capability string

const (
	CapRequestCreate    Capability = "request:create"
	CapRequestSubmit    Capability = "request:submit"
	CapRequestAuthorize Capability = "request:authorize"
	CapRequestManage    Capability = "request:manage"
	CapRequestDispatch  Capability = "request:dispatch"
	CapRequestViewAll   Capability = "request:view_all"
	CapReceiptManage    Capability = "receipt:manage"
	CapArticleManage    Capability = "article:manage"
	CapCatalogManage    Capability = "catalog:manage"
	CapUserManage       Capability = "user:manage"
	CapDashboardView    Capability = "dashboard:view"
)

var AllCapabilities = []Capability{
	CapRequestCreate, CapRequestSubmit, CapRequestAuthorize, CapRequestManage,
	CapRequestDispatch, CapRequestViewAll, CapReceiptManage, CapArticleManage,
	CapCatalogManage, CapUserManage, CapDashboardView,
}

var roleCapabilities = map[RoleCode][]Capability{
	RoleAdmin:      AllCapabilities,
	RoleDepartment: {CapRequestCreate, CapRequestSubmit},
	RoleAuthorizer: {CapRequestAuthorize, CapRequestViewAll, CapDashboardView},
	RoleWarehouse: {
		CapRequestManage, CapRequestDispatch, CapRequestViewAll,
		CapReceiptManage, CapArticleManage, CapDashboardView,
	},
}

// RoleCan reports whether role grants capability
func RoleCan(role RoleCode, capability Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// CapabilitiesOf returns a copy of the capabilities granted to role
func CapabilitiesOf(role RoleCode) []Capability {
	caps := roleCapabilities[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Role represents user roles in the system
type Role struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Code        RoleCode `gorm:"type:varchar(20);index;not null" json:"code"`
	Name        string   `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Active      bool     `gorm:"not null" json:"active"`
}

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{Code: RoleAdmin, Name: "Administrador", Description: "Acceso total al sistema", Active: true},
	{Code: RoleDepartment, Name: "Departamento", Description: "Crea y envia solicitudes de su departamento", Active: true},
	{Code: RoleAuthorizer, Name: "Autorizador", Description: "Aprueba o rechaza solicitudes enviadas", Active: true},
	{Code: RoleWarehouse, Name: "Almacen", Description: "Gestiona, despacha y recibe mercancia", Active: true},
}
