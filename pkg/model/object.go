package model

// Object represents the content of a package file, addressed by its hash
type Object struct {
	Size int64  `json:"Size" yaml:"size"`
	Hash string `json:"Hash" yaml:"hash"`
	_    struct{}
}

// Equal tells if two objects refer to the same content.
//
// Objects with the same hash are assumed to hold the same bytes, hence the same size.
func (o Object) Equal(other Object) bool {
	return o.Hash == other.Hash
}
