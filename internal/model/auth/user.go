package auth

import (
	"time"
)

// User 用户实体
// KindBite 以邮箱作为登录凭证，无独立用户名
// ID使用UUID格式（string），避免ObjectID转换的麻烦
type User struct {
	ID           string     `bson:"_id,omitempty" json:"id"`                            // UUID格式的ID
	Email        string     `bson:"email" json:"email"`                                 // 邮箱（唯一）
	Password     string     `bson:"password" json:"-"`                                  // 密码（加密存储，不返回）
	FirstName    string     `bson:"first_name" json:"first_name"`                       // 名
	LastName     string     `bson:"last_name" json:"last_name"`                         // 姓
	Phone        string     `bson:"phone,omitempty" json:"phone,omitempty"`             // 电话
	Location     string     `bson:"location,omitempty" json:"location,omitempty"`       // 所在地
	BusinessName string     `bson:"business_name,omitempty" json:"business_name,omitempty"` // 商家名称（供餐方）
	Role         UserRole   `bson:"role" json:"role"`                                   // 角色
	KindCoins    uint64     `bson:"kind_coins" json:"kind_coins"`                       // KindCoins 余额
	IsVerified   bool       `bson:"is_verified" json:"is_verified"`                     // 是否已认证
	IsActive     bool       `bson:"is_active" json:"is_active"`                         // 是否激活
	LastLoginAt  *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// FullName 返回用户全名
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// UserRole 用户角色
// KindBite 生态中的角色分类
type UserRole string

const (
	RoleAdmin       UserRole = "admin"       // 管理员
	RoleSeeker      UserRole = "seeker"      // 觅食者（终端用户）
	RoleRestaurant  UserRole = "restaurant"  // 餐厅
	RoleHomeKitchen UserRole = "home"        // 家庭厨房
	RoleFactory     UserRole = "factory"     // 食品工厂
	RoleSupermarket UserRole = "supermarket" // 超市
	RoleRetail      UserRole = "retail"      // 零售商店
	RoleVerifier    UserRole = "verifier"    // 食品安全审核员
	RoleAmbassador  UserRole = "ambassador"  // 社区大使
	RoleDonor       UserRole = "donor"       // 捐助者
)

// providerRoles 可以发布食物的角色
var providerRoles = map[UserRole]bool{
	RoleRestaurant:  true,
	RoleHomeKitchen: true,
	RoleFactory:     true,
	RoleSupermarket: true,
	RoleRetail:      true,
}

// IsValid 检查角色是否有效
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSeeker, RoleRestaurant, RoleHomeKitchen, RoleFactory,
		RoleSupermarket, RoleRetail, RoleVerifier, RoleAmbassador, RoleDonor:
		return true
	}
	return false
}

// IsProvider 检查是否为供餐方角色
func (r UserRole) IsProvider() bool {
	return providerRoles[r]
}

// String 返回角色字符串
func (r UserRole) String() string {
	return string(r)
}
