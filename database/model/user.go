package model

// AppRole is the name of a role as stored in the roles table.
type AppRole string

const (
	RoleUser  AppRole = "ROLE_USER"
	RoleAdmin AppRole = "ROLE_ADMIN"
)

// AppRoles lists every role seeded at startup.
var AppRoles = []AppRole{RoleUser, RoleAdmin}

type User struct {
	Id       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"size:20;uniqueIndex;not null"`
	Email    string `json:"email" gorm:"size:50;uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"` // bcrypt hash
}

type Role struct {
	Id       int     `json:"id" gorm:"primaryKey;autoIncrement"`
	RoleName AppRole `json:"roleName" gorm:"column:role_name;size:20;uniqueIndex;not null"`
}

// UserRole links users and roles (composite primary key).
type UserRole struct {
	UserId int64 `gorm:"primaryKey;autoIncrement:false"`
	RoleId int   `gorm:"primaryKey;autoIncrement:false;index"`

	User *User `gorm:"foreignKey:UserId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Role *Role `gorm:"foreignKey:RoleId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
