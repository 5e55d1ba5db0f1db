// Package object implements a self-describing binary object codec for
// moving graphs of values across a ScheduledFile: a variable-width
// header, sign-magnitude integers, and an id-interning graph walk that
// supports cyclic structures.
package object

// Kind is the wire-level object type.
type Kind int

const (
	KindTuple Kind = iota
	KindBytes
	KindInteger
)

// CompositeTag distinguishes the semantic composite a KindTuple record
// represents. Every non-atomic Go value — tuple, list, dict, set, text —
// is carried on the wire as a KindTuple record whose first id resolves
// to a tag atom ("tuple"/"list"/"dict"/"set"/"unicode"); Tag is the
// decoded form of that leading atom.
type CompositeTag int

const (
	TagNone CompositeTag = iota
	TagTuple
	TagList
	TagDict
	TagSet
	TagText
)

func (t CompositeTag) wireString() string {
	switch t {
	case TagTuple:
		return "tuple"
	case TagList:
		return "list"
	case TagDict:
		return "dict"
	case TagSet:
		return "set"
	case TagText:
		return "unicode"
	}
	return ""
}

// DictEntry is one key/value pair of a Dict-tagged Value.
type DictEntry struct {
	Key *Value
	Val *Value
}

// Value is the in-memory form of a codec object. Kind selects which
// fields are meaningful: Int for KindInteger, Bytes for KindBytes, and
// for KindTuple the Tag plus Items/Dict/Text.
//
// Composite Values are shared by pointer: passing the same *Value to
// more than one parent (directly, or transitively through Dump's root)
// dedups to a single wire id and round-trips through Load as a shared
// pointer again, which is also how cyclic graphs are expressed.
type Value struct {
	Kind Kind
	Tag  CompositeTag

	Int   int64
	Bytes []byte
	Text  string
	Items []*Value
	Dict  []DictEntry
}

// Int wraps an integer as a leaf Value.
func Int(n int64) *Value { return &Value{Kind: KindInteger, Int: n} }

// Raw wraps a byte string as a leaf Value.
func Raw(b []byte) *Value { return &Value{Kind: KindBytes, Bytes: b} }

// Text wraps a UTF-8 string as a Value, carried on the wire as a
// ("unicode", bytes) composite.
func Text(s string) *Value { return &Value{Kind: KindTuple, Tag: TagText, Text: s} }

// Tuple builds an ordered, fixed-arity composite Value.
func Tuple(items ...*Value) *Value {
	return &Value{Kind: KindTuple, Tag: TagTuple, Items: items}
}

// List builds an ordered composite Value.
func List(items ...*Value) *Value {
	return &Value{Kind: KindTuple, Tag: TagList, Items: items}
}

// Set builds an unordered composite Value. Member order is preserved on
// the wire even though set membership, not order, is the contract.
func Set(items ...*Value) *Value {
	return &Value{Kind: KindTuple, Tag: TagSet, Items: items}
}

// Dict builds a key/value composite Value.
func Dict(entries ...DictEntry) *Value {
	return &Value{Kind: KindTuple, Tag: TagDict, Dict: entries}
}

// PreHeader is the decoded first header byte: the bit widths of the id
// and length fields that follow, plus the record's Kind.
type PreHeader struct {
	IDSize     int
	LengthSize int
	Kind       Kind
}

// Header is a fully decoded record header.
type Header struct {
	ID     uint64
	Kind   Kind
	Length uint64
}

// Record is one (id, kind, payload) entry of a Dump/unmarshal walk.
// Exactly one of Int/Bytes/IDs is meaningful, selected by Kind.
type Record struct {
	ID    uint64
	Kind  Kind
	Int   int64
	Bytes []byte
	IDs   []uint64
}
