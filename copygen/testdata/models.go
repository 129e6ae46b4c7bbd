package models

import "time"

// Config 服务配置
// @CopyWith
type Config struct {
	Name    string
	Port    int
	Debug   bool
	Ratio   float64
	Timeout time.Duration
	Extra   any
	// @copy
	TLS TLSConfig
	Endpoint
}

// @CopyWith
type TLSConfig struct {
	Cert string
	Key  string
}

type Endpoint struct {
	Host string
}

// @CopyWith
type Box[T any] struct {
	Value T
	Label string
	Seal  [4]byte
}
