package models

// @CopyWith
type Refs struct {
	Next  *Refs
	Tags  []string
	Index map[string]int
	Done  chan struct{}
	Hook  func()
	Count int // @copy
}

// @CopyWith
type Holder[T any] struct {
	Value T // @copy
}

// @CopyWith
// @Enum
type Choice struct {
	A *struct{}
}
