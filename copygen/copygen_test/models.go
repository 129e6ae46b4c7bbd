package copygen_test

import "time"

//go:generate go run github.com/donutnomad/derivegen gen .

// Config 服务配置，零值字段表示未设置
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
	Port int
}

// Box 泛型容器
// @CopyWith
type Box[T any] struct {
	Value T
	Label string
	Seal  [4]byte
}
