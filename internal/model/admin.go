package model

// Admin represents a property administrator account
type Admin struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"type:varchar(255);not null"`
}

// SetPassword hashes and stores the password
func (a *Admin) SetPassword(plaintext string) error {
	hashed, err := hashPassword(plaintext)
	if err != nil {
		return err
	}
	a.PasswordHash = hashed
	return nil
}

// CheckPassword reports whether plaintext matches the stored hash
func (a *Admin) CheckPassword(plaintext string) bool {
	return checkPassword(a.PasswordHash, plaintext)
}
