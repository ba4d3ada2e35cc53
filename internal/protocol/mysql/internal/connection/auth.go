package connection

import (
	"crypto/sha1"
	"crypto/subtle"
)

// Authenticator 鉴权策略
// 拿到用户名、本连接的挑战值和客户端算出来的应答，返回是否放行
// 默认策略是 NativePasswordAuthenticator(SameAsUsername)
type Authenticator func(username string, scramble, authResponse []byte) bool

// PasswordFunc 根据用户名给出明文密码
type PasswordFunc func(username string) string

// SameAsUsername 参考密码就是用户名本身
func SameAsUsername(username string) string {
	return username
}

// NativePasswordAuthenticator mysql_native_password 式的校验
// 服务端用已知的明文密码重算一遍挑战应答，再和客户端给的比对
func NativePasswordAuthenticator(password PasswordFunc) Authenticator {
	return func(username string, scramble, authResponse []byte) bool {
		expected := scramblePassword(scramble, password(username))
		if len(expected) != len(authResponse) {
			return false
		}
		// 比对必须是常数时间的
		return subtle.ConstantTimeCompare(expected, authResponse) == 1
	}
}

// scramblePassword Hash password using 4.1+ method (SHA1)
// token = SHA1(scramble + SHA1(SHA1(password))) XOR SHA1(password)
func scramblePassword(scramble []byte, password string) []byte {
	if len(password) == 0 {
		return nil
	}

	// stage1Hash = SHA1(password)
	crypt := sha1.New()
	crypt.Write([]byte(password))
	stage1 := crypt.Sum(nil)

	// scrambleHash = SHA1(scramble + SHA1(stage1Hash))
	// inner Hash
	crypt.Reset()
	crypt.Write(stage1)
	hash := crypt.Sum(nil)

	// outer Hash
	crypt.Reset()
	crypt.Write(scramble)
	crypt.Write(hash)
	token := crypt.Sum(nil)

	// token = scrambleHash XOR stage1Hash
	for i := range token {
		token[i] ^= stage1[i]
	}
	return token
}
