package models

// @AutoStr
// @Enum
type MyEnum struct {
	E1 *struct{} // @str("e1", "E1")
	E2 *struct{} // @str("e2")
	E3 *struct{} // @str("e3", "ee")
}

// @AutoStr
// @Enum
type MyEnum2 struct {
	E21 *struct{}
	// @str("e1", "e2")
	E22 *MyEnum
}

// @AutoStr(autorule="lowercase")
// @Enum
type MyEnum3 struct {
	E31     *struct{} // @str("E31")
	E32TesT *struct{}
	E33Test *MyEnum2
}

// @AutoStr
// @Enum
type MyEnum4 struct {
	E41 *MyEnum
	E42 *MyEnum2
}

// Level 日志级别
// @AutoStr(autorule="snake_case")
type Level int

const (
	LevelDebug Level = iota
	LevelInfo        // @str("info", "INFO")
	LevelWarnOnly
)

// @AutoStr
// @Enum
type Option[T any] struct {
	None *struct{} // @str("none")
	Some *T
}
