package object

import (
	"io"

	"github.com/naglfar-go/naglfar"
)

// ObjectFile layers the codec on top of a ScheduledFile, composing
// rather than embedding so the framing logic stays independent of the
// underlying stream's buffering.
type ObjectFile struct {
	f *naglfar.ScheduledFile
}

// NewObjectFile wraps an already-open ScheduledFile.
func NewObjectFile(f *naglfar.ScheduledFile) *ObjectFile {
	return &ObjectFile{f: f}
}

// ReadObject reads one object written by WriteObject. It returns io.EOF
// (unwrapped, via errors.Is) only when the stream ends cleanly before
// any bytes of the next object are read; a stream that ends mid-object
// is ErrMalformedInput, not EOF.
func (o *ObjectFile) ReadObject() (*Value, error) {
	preHeader, err := o.f.Read(1)
	if err != nil {
		return nil, err
	}
	if len(preHeader) == 0 {
		return nil, io.EOF
	}

	idSize, lengthSize, kind := unpackHeader1(preHeader[0])
	headerSize := (idSize + lengthSize) >> 3

	headerData, err := o.f.Read(headerSize)
	if err != nil {
		return nil, err
	}
	if len(headerData) != headerSize {
		return nil, ErrMalformedInput
	}

	id, length := unpackHeader2(headerData, idSize, lengthSize, 0)
	if id != 0 || kind != KindBytes {
		return nil, ErrMalformedInput
	}

	data, err := o.f.Read(int(length))
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) != length {
		return nil, ErrMalformedInput
	}

	records, err := unmarshal(data)
	if err != nil {
		return nil, err
	}
	return Load(records)
}

// WriteObject serializes v with Dumps and writes it to the underlying
// ScheduledFile.
func (o *ObjectFile) WriteObject(v *Value) error {
	data, err := Dumps(v)
	if err != nil {
		return err
	}
	return o.f.Write(data)
}

// ReadObjectStream calls yield with each object in turn until the
// stream ends cleanly or yield returns false. A hard read or decode
// error is returned rather than swallowed.
func (o *ObjectFile) ReadObjectStream(yield func(*Value) bool) error {
	for {
		v, err := o.ReadObject()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !yield(v) {
			return nil
		}
	}
}
