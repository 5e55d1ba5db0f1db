package object

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// tagAtom builds the leading bytes atom that identifies a composite's
// kind on the wire ("tuple"/"list"/"dict"/"set"/"unicode").
func tagAtom(tag CompositeTag) *Value { return Raw([]byte(tag.wireString())) }

// compositeMembers returns the ordered list of child Values Dump walks
// for v, tag atom first.
func compositeMembers(v *Value) []*Value {
	switch v.Tag {
	case TagDict:
		members := make([]*Value, 0, 1+2*len(v.Dict))
		members = append(members, tagAtom(TagDict))
		for _, e := range v.Dict {
			members = append(members, e.Key, e.Val)
		}
		return members
	case TagList:
		return append([]*Value{tagAtom(TagList)}, v.Items...)
	case TagSet:
		return append([]*Value{tagAtom(TagSet)}, v.Items...)
	case TagText:
		return []*Value{tagAtom(TagText), Raw([]byte(v.Text))}
	default:
		return append([]*Value{tagAtom(TagTuple)}, v.Items...)
	}
}

// identityKey returns the map key Dump uses to dedup v. Integers, byte
// strings, and text dedup by content. Every other composite dedups by
// pointer identity, since sharing the same pointer twice is the case
// that actually matters (aliasing and cycles), not incidental
// structural equality.
func identityKey(v *Value) interface{} {
	switch {
	case v.Kind == KindInteger:
		return "i:" + strconv.FormatInt(v.Int, 10)
	case v.Kind == KindBytes:
		return "b:" + string(v.Bytes)
	case v.Tag == TagText:
		return "u:" + v.Text
	default:
		return v
	}
}

func getIdentity(ids map[interface{}]uint64, next *uint64, v *Value) uint64 {
	k := identityKey(v)
	if id, ok := ids[k]; ok {
		return id
	}
	id := *next
	*next++
	ids[k] = id
	return id
}

// Dump walks root and produces a flat Record list: every distinct (by
// identityKey) value visited exactly once, composites recorded as
// their member ids rather than nested structure.
func Dump(root *Value) []Record {
	ids := make(map[interface{}]uint64)
	var next uint64
	done := make(map[uint64]bool)
	var records []Record

	queue := []*Value{root}
	for len(queue) > 0 {
		v := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		id := getIdentity(ids, &next, v)
		if done[id] {
			continue
		}
		done[id] = true

		switch v.Kind {
		case KindInteger:
			records = append(records, Record{ID: id, Kind: KindInteger, Int: v.Int})
		case KindBytes:
			records = append(records, Record{ID: id, Kind: KindBytes, Bytes: v.Bytes})
		default:
			members := compositeMembers(v)
			queue = append(queue, members...)
			memberIDs := make([]uint64, len(members))
			for i, m := range members {
				memberIDs[i] = getIdentity(ids, &next, m)
			}
			records = append(records, Record{ID: id, Kind: KindTuple, IDs: memberIDs})
		}
	}
	return records
}

// Load reconstructs the Value graph a Record list describes, rooted at
// id 0. Each composite gets an empty placeholder the first time its id
// is reached, before its children are resolved, and is filled once they
// are (state tracks in-progress vs. done per id), so a self- or
// mutually-referential id resolves to the same in-progress pointer
// instead of recursing forever.
func Load(records []Record) (*Value, error) {
	atoms := make(map[uint64]*Value)
	deferred := make(map[uint64][]uint64)

	for _, r := range records {
		switch r.Kind {
		case KindInteger:
			atoms[r.ID] = Int(r.Int)
		case KindBytes:
			atoms[r.ID] = Raw(r.Bytes)
		case KindTuple:
			deferred[r.ID] = r.IDs
		default:
			return nil, ErrUnsupportedValue
		}
	}

	placeholders := make(map[uint64]*Value)
	const (
		stateUnseen = iota
		stateInProgress
		stateDone
	)
	state := make(map[uint64]int)

	var get func(id uint64) (*Value, error)
	get = func(id uint64) (*Value, error) {
		if v, ok := atoms[id]; ok {
			return v, nil
		}
		if state[id] == stateInProgress || state[id] == stateDone {
			return placeholders[id], nil
		}

		refs, ok := deferred[id]
		if !ok {
			return nil, fmt.Errorf("%w: unresolved id %d", ErrMalformedInput, id)
		}
		placeholder := &Value{Kind: KindTuple}
		placeholders[id] = placeholder
		state[id] = stateInProgress

		if len(refs) == 0 {
			return nil, fmt.Errorf("%w: empty composite at id %d", ErrMalformedInput, id)
		}
		tagValue, err := get(refs[0])
		if err != nil {
			return nil, err
		}
		rest := refs[1:]

		switch string(tagValue.Bytes) {
		case "tuple", "list", "set":
			items := make([]*Value, len(rest))
			for i, rid := range rest {
				child, err := get(rid)
				if err != nil {
					return nil, err
				}
				items[i] = child
			}
			placeholder.Items = items
			switch string(tagValue.Bytes) {
			case "tuple":
				placeholder.Tag = TagTuple
			case "list":
				placeholder.Tag = TagList
			case "set":
				placeholder.Tag = TagSet
			}
		case "dict":
			if len(rest)&1 != 0 {
				return nil, fmt.Errorf("%w: odd dict arity at id %d", ErrMalformedInput, id)
			}
			entries := make([]DictEntry, len(rest)/2)
			for i := 0; i < len(rest); i += 2 {
				key, err := get(rest[i])
				if err != nil {
					return nil, err
				}
				val, err := get(rest[i+1])
				if err != nil {
					return nil, err
				}
				entries[i/2] = DictEntry{Key: key, Val: val}
			}
			placeholder.Tag = TagDict
			placeholder.Dict = entries
		case "unicode":
			if len(rest) != 1 {
				return nil, fmt.Errorf("%w: malformed text at id %d", ErrMalformedInput, id)
			}
			b, err := get(rest[0])
			if err != nil {
				return nil, err
			}
			if !utf8.Valid(b.Bytes) {
				return nil, fmt.Errorf("%w: invalid UTF-8 in text at id %d", ErrMalformedInput, id)
			}
			placeholder.Tag = TagText
			placeholder.Text = string(b.Bytes)
		default:
			return nil, ErrUnsupportedValue
		}

		state[id] = stateDone
		return placeholder, nil
	}

	return get(0)
}
