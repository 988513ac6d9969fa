package entity

// Role represents a staff capability role
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants, seeded by the initial migration
const (
	RoleIDAdmin     = 1
	RoleIDDoctor    = 2
	RoleIDRegistrar = 3
)

// RoleNames constants
const (
	RoleAdmin     = "admin"
	RoleDoctor    = "doctor"
	RoleRegistrar = "registrar"
)

// RoleNameByID maps seeded role IDs to their names.
func RoleNameByID(id int) string {
	switch id {
	case RoleIDAdmin:
		return RoleAdmin
	case RoleIDDoctor:
		return RoleDoctor
	case RoleIDRegistrar:
		return RoleRegistrar
	default:
		return ""
	}
}
