package models

import "time"

// User 用户
// @AutoDebug
type User struct {
	// @name="my_id"
	ID    int64
	Name  string
	Token string // @ignore
	// @value="***"
	Password string
	Created  time.Time // @display
}

// @AutoDebug(style="tuple")
type Point struct {
	X, Y int
}

// @AutoDebug(format=display)
type Pair[K comparable, V any] struct {
	Key   K
	Value V // @debug
}

// Shape 图形
// @AutoDebug
// @Enum
type Shape struct {
	Empty  *struct{}
	Circle *Circle
	Moved  *struct {
		Point
		time.Duration
	}
	Line *struct {
		// @name="from"
		Start Point
		End   Point
	}
	Hidden *Circle // @ignore
	Masked *Circle // @value="<circle>"
}

type Circle struct {
	R float64
}

// @AutoDebug
type Color int

const (
	Red Color = iota
	// @name="GREEN"
	Green
	Blue
)
