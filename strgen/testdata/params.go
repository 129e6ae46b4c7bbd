package models

// @AutoStr(foo="x", output="params_gen.go")
type Mode int

const (
	ModeA Mode = iota
	ModeB
)

// @AutoStr(autorule="shouting")
type Bad int

const BadA Bad = 0
