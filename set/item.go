package set

// Interface for an item storeable in the set
type Item interface {
	Key() string
	Value() interface{}
}

type StringItem string

func (item StringItem) Key() string {
	return string(item)
}

func (item StringItem) Value() interface{} {
	return string(item)
}

type item struct {
	key   string
	value interface{}
}

// Itemize converts a key and value into an Item
func Itemize(key string, value interface{}) Item {
	return &item{key, value}
}

func (item *item) Key() string {
	return item.key
}

func (item *item) Value() interface{} {
	return item.value
}
