package models

// @AutoDebug(style="grid", format="pretty")
type BadStyle struct {
	A int // @name
}

// @AutoDebug
type Handler func()

// @AutoDebug
type Named interface {
	Name() string
}

// @AutoDebug(style="tuple")
type Renamed struct {
	A int // @name="a"
}
