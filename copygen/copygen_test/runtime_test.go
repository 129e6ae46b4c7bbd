package copygen_test_test

import (
	"testing"
	"time"

	"github.com/donutnomad/derivegen/copygen/copygen_test"
	"github.com/stretchr/testify/assert"
)

func baseConfig() copygen_test.Config {
	return copygen_test.Config{
		Name:     "api",
		Port:     8080,
		Debug:    true,
		Ratio:    0.5,
		Timeout:  time.Second,
		Extra:    "x",
		TLS:      copygen_test.TLSConfig{Cert: "cert.pem", Key: "key.pem"},
		Endpoint: copygen_test.Endpoint{Host: "localhost", Port: 80},
	}
}

// TestMergeZeroIsNoop 合并零值或 nil 不改变接收者
func TestMergeZeroIsNoop(t *testing.T) {
	c := baseConfig()
	c.Merge(&copygen_test.Config{})
	assert.Equal(t, baseConfig(), c)

	c.Merge(nil)
	assert.Equal(t, baseConfig(), c)
}

func TestMergePartial(t *testing.T) {
	c := baseConfig()
	c.Merge(&copygen_test.Config{
		Port:    9090,
		Timeout: 3 * time.Second,
		Extra:   42,
	})

	want := baseConfig()
	want.Port = 9090
	want.Timeout = 3 * time.Second
	want.Extra = 42
	assert.Equal(t, want, c)
}

// TestMergeBoolCannotReset false 是零值，不会覆盖 true
func TestMergeBoolCannotReset(t *testing.T) {
	c := baseConfig()
	c.Merge(&copygen_test.Config{Debug: false, Name: "web"})
	assert.True(t, c.Debug)
	assert.Equal(t, "web", c.Name)
}

// TestMergeNested @copy 字段逐层合并，未设置的 Cert 保留
func TestMergeNested(t *testing.T) {
	c := baseConfig()
	c.Merge(&copygen_test.Config{TLS: copygen_test.TLSConfig{Key: "new.pem"}})
	assert.Equal(t, copygen_test.TLSConfig{Cert: "cert.pem", Key: "new.pem"}, c.TLS)
}

// TestMergeEmbeddedReplaced 未标记 @copy 的结构体字段整体替换
func TestMergeEmbeddedReplaced(t *testing.T) {
	c := baseConfig()
	c.Merge(&copygen_test.Config{Endpoint: copygen_test.Endpoint{Host: "example.com"}})
	assert.Equal(t, copygen_test.Endpoint{Host: "example.com"}, c.Endpoint)
}

func TestMergeGeneric(t *testing.T) {
	b := copygen_test.Box[[]int]{Value: []int{1}, Label: "a", Seal: [4]byte{1}}
	b.Merge(&copygen_test.Box[[]int]{Label: "b"})
	assert.Equal(t, copygen_test.Box[[]int]{Value: []int{1}, Label: "b", Seal: [4]byte{1}}, b)

	b.Merge(&copygen_test.Box[[]int]{Value: []int{2, 3}, Seal: [4]byte{0, 0, 0, 9}})
	assert.Equal(t, []int{2, 3}, b.Value)
	assert.Equal(t, [4]byte{0, 0, 0, 9}, b.Seal)

	n := copygen_test.Box[int]{Value: 5}
	n.Merge(&copygen_test.Box[int]{})
	assert.Equal(t, 5, n.Value)
}
