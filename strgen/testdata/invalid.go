package models

// @AutoStr
type Plain struct {
	A int
}

// @AutoStr(autorule="kebab-case")
// @Enum
type BadRule struct {
	A *struct{}
}

// @AutoStr
// @Enum
type Mixed struct {
	Unit  *struct{}
	Named *struct {
		code int
	}
	Pair *struct {
		Left
		Right
	}
}

// @AutoStr
// @Enum
type Dup struct {
	A *struct{} // @str("x")
	B *struct{} // @str("x", "b")
}
