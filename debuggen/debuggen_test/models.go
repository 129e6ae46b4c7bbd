package debuggen_test

//go:generate go run github.com/donutnomad/derivegen gen .

// Color 同时派生调试输出和字符串转换
// @AutoDebug
// @AutoStr
type Color int

const (
	Red Color = iota
	Green
	Blue
)

// Palette 调色板
// @AutoDebug
type Palette struct {
	Primary Color
	// @display
	Accent Color
	Name   string
	Secret string // @value="***"
	Cache  []int  // @ignore
}

// @AutoDebug(style="tuple")
type Circle struct {
	R float64
	C Color
}

// @AutoDebug
type Point struct {
	X, Y int
}

// Shape 图形
// @AutoDebug
// @Enum
type Shape struct {
	Empty *struct{}
	Round *Circle
	Line  *struct {
		// @name="from"
		Start Point
		End   Point
	}
}

// Scene 场景
// @AutoDebug
type Scene struct {
	Title string
	Shape Shape
}
