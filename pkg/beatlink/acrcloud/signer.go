package acrcloud

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"strings"
)

// StringToSign builds the canonical string the identify endpoint expects,
// one field per line.
func StringToSign(method, uri, accessKey, dataType, signatureVersion, timestamp string) string {
	return strings.Join([]string{method, uri, accessKey, dataType, signatureVersion, timestamp}, "\n")
}

// Sign returns base64(HMAC-SHA1(secretKey, stringToSign)).
func Sign(secretKey, stringToSign string) string {
	mac := hmac.New(sha1.New, []byte(secretKey))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
