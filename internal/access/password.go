package access

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword возвращает SHA-256 пароля в шестнадцатеричном виде.
// Соль не используется: та же функция применяется к начальным данным,
// поэтому смена схемы требует миграции сохранённых хэшей.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
