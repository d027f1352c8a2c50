// Package model 定义数据库实体模型
package model

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInfo 用户信息模型，对应 user_info 表
type UserInfo struct {
	gorm.Model

	// Uuid 用户唯一标识，格式 U + 雪花 ID
	Uuid      string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:用户唯一id"`
	Nickname  string `gorm:"column:nickname;type:varchar(20);not null;comment:昵称"`
	Telephone string `gorm:"column:telephone;uniqueIndex;not null;type:char(11);comment:电话"`
	Email     string `gorm:"column:email;type:varchar(50);comment:邮箱"`
	Avatar    string `gorm:"column:avatar;type:varchar(255);comment:头像"`
	Signature string `gorm:"column:signature;type:varchar(100);comment:个性签名"`

	// Password 已哈希的密码
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// RawPassword 明文密码，不入库，在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

func (UserInfo) TableName() string {
	return "user_info"
}

// BeforeSave 创建和更新前把 RawPassword 加密写入 Password
func (u *UserInfo) BeforeSave(tx *gorm.DB) error {
	return u.HashPassword()
}

// HashPassword 对 RawPassword 做 bcrypt 并清空明文
func (u *UserInfo) HashPassword() error {
	if u.RawPassword == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	u.RawPassword = ""
	return nil
}

// CheckPassword 校验明文密码
func (u *UserInfo) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}
