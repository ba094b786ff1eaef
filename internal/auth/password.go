package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword は平文パスワードからbcryptダイジェストを生成します。
// ソルトは呼び出しごとに生成されるため、同じ平文でもダイジェストは毎回異なります。
func HashPassword(password string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword はダイジェストがその平文から生成されたものかを検証します。
// ダイジェストが不正な形式であってもエラーにはせず false を返します。
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
