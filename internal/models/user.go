package models

// User is an account identified by its email address. The password column
// holds a bcrypt hash, never the plaintext, and is excluded from JSON.
type User struct {
	ID       int    `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`

	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (User) TableName() string {
	return "users"
}
