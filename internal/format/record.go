package format

import (
	"fmt"

	"github.com/bigjosh/gotham-pi-maker/internal/buf"
)

// Record is one decoded GDSII record.
//
//	Offset  Size  Description
//	0x00    2     Length, header included
//	0x02    1     Type (RecXxx)
//	0x03    1     Data type (DataXxx)
//	0x04    ...   Payload (alias of the underlying buffer)
type Record struct {
	Type     byte
	DataType byte
	Data     []byte
}

// Name returns the record type mnemonic.
func (r Record) Name() string {
	return RecordName(r.Type)
}

// ParseRecordHeader decodes the four header bytes and returns the payload
// length they announce.
func ParseRecordHeader(b []byte) (recType, dataType byte, payload int, err error) {
	if len(b) < RecordHeaderSize {
		return 0, 0, 0, fmt.Errorf("record header: %w", ErrTruncated)
	}
	total := int(buf.U16BE(b))
	if total < RecordHeaderSize || total%2 != 0 {
		return 0, 0, 0, fmt.Errorf("record header length %d: %w", total, ErrOddLength)
	}
	return b[2], b[3], total - RecordHeaderSize, nil
}

// ParseRecord decodes the record at the start of b and returns it together
// with the number of bytes consumed.
func ParseRecord(b []byte) (Record, int, error) {
	rt, dt, n, err := ParseRecordHeader(b)
	if err != nil {
		return Record{}, 0, err
	}
	payload, ok := buf.Slice(b, RecordHeaderSize, n)
	if !ok {
		return Record{}, 0, fmt.Errorf("%s: %w", RecordName(rt), ErrTruncated)
	}
	return Record{Type: rt, DataType: dt, Data: payload}, RecordHeaderSize + n, nil
}

// Int16s decodes an int16 payload.
func (r Record) Int16s() ([]int16, error) {
	n, err := buf.Elements(r.Data, 2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}
	out := make([]int16, n)
	for i := range out {
		out[i] = buf.I16BE(r.Data[2*i:])
	}
	return out, nil
}

// Int32s decodes an int32 payload.
func (r Record) Int32s() ([]int32, error) {
	n, err := buf.Elements(r.Data, 4)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = buf.I32BE(r.Data[4*i:])
	}
	return out, nil
}

// Real8s decodes a REAL8 payload.
func (r Record) Real8s() ([]float64, error) {
	n, err := buf.Elements(r.Data, 8)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = DecodeReal8(buf.U64BE(r.Data[8*i:]))
	}
	return out, nil
}

// String decodes an ASCII payload without its padding.
func (r Record) String() string {
	return TrimString(r.Data)
}
