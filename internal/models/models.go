package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsActive     bool   `gorm:"default:true"             json:"is_active"`
	IsVerified   bool   `gorm:"default:false"            json:"is_verified"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

type Contact struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName      string `gorm:"not null;index"           json:"first_name"`
	LastName       string `gorm:"not null;index"           json:"last_name"`
	Email          string `gorm:"unique;not null"          json:"email"`
	Phone          string `gorm:"not null"                 json:"phone"`
	Birthday       Date   `gorm:"type:date"                json:"birthday"`
	AdditionalInfo string `json:"additional_info,omitempty"`
	UserID         uint   `gorm:"index;not null"           json:"user_id"`
}
