package http

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/json"
	"io/ioutil"
	"log"

	ethereum "github.com/ethereum/go-ethereum/common"
)

type Permission string

const (
	ReadOnlyPermission Permission = "readonly"
	TransferPermission Permission = "transfer"
)

// Authentication is the authentication layer of HTTP APIs.
type Authentication interface {
	Sign(message string) string
	GetPermission(signed string, message string) []Permission
}

// KeeperAuthentication holds one HMAC secret per permission.
type KeeperAuthentication struct {
	Secret   string `json:"secret"`
	ReadOnly string `json:"readonly"`
}

func NewKeeperAuthenticationFromFile(path string) KeeperAuthentication {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		panic(err)
	}
	result := KeeperAuthentication{}
	if err = json.Unmarshal(raw, &result); err != nil {
		panic(err)
	}
	return result
}

func hmacSign(secret string, msg string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	if _, err := mac.Write([]byte(msg)); err != nil {
		log.Printf("Encode message error: %s", err.Error())
	}
	return ethereum.Bytes2Hex(mac.Sum(nil))
}

func (self KeeperAuthentication) Sign(msg string) string {
	return hmacSign(self.Secret, msg)
}

func (self KeeperAuthentication) readonlySign(msg string) string {
	return hmacSign(self.ReadOnly, msg)
}

func (self KeeperAuthentication) GetPermission(signed string, message string) []Permission {
	result := []Permission{}
	if self.Secret != "" && hmac.Equal([]byte(signed), []byte(self.Sign(message))) {
		result = append(result, TransferPermission)
	}
	if self.ReadOnly != "" && hmac.Equal([]byte(signed), []byte(self.readonlySign(message))) {
		result = append(result, ReadOnlyPermission)
	}
	return result
}
