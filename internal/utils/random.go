package utils

import "crypto/rand"

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*-_"

// GenerateRandomPassword produces an initial credential for newly activated
// accounts. The user is prompted to change it on first sign-in.
func GenerateRandomPassword(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic("utils: crypto/rand unavailable: " + err.Error())
	}

	for i, b := range buf {
		buf[i] = passwordCharset[int(b)%len(passwordCharset)]
	}
	return string(buf)
}
