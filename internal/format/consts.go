// Package format houses the low-level encoders and decoders for the GDSII
// stream format. The goal is to keep record packing focused and
// allocation-light, and independent from the cell graph so higher-level
// packages can orchestrate structures in a more ergonomic form.
//
// Every GDSII record starts with a four byte big-endian header:
//
//	Offset  Size  Description
//	0x00    2     Total record length in bytes, header included (even)
//	0x02    1     Record type
//	0x03    1     Data type of the payload
//	0x04    ...   Payload
package format

// ============================================================================
// Record types
// ============================================================================.
const (
	RecHeader   = 0x00
	RecBgnLib   = 0x01
	RecLibName  = 0x02
	RecUnits    = 0x03
	RecEndLib   = 0x04
	RecBgnStr   = 0x05
	RecStrName  = 0x06
	RecEndStr   = 0x07
	RecBoundary = 0x08
	RecPath     = 0x09
	RecSRef     = 0x0A
	RecARef     = 0x0B
	RecText     = 0x0C
	RecLayer    = 0x0D
	RecDatatype = 0x0E
	RecWidth    = 0x0F
	RecXY       = 0x10
	RecEndEl    = 0x11
	RecSName    = 0x12
	RecColRow   = 0x13
	RecStrans   = 0x1A
	RecMag      = 0x1B
	RecAngle    = 0x1C
)

// ============================================================================
// Data types
// ============================================================================.
const (
	DataNone   = 0x00
	DataBitArr = 0x01
	DataInt16  = 0x02
	DataInt32  = 0x03
	DataReal4  = 0x04
	DataReal8  = 0x05
	DataASCII  = 0x06
)

const (
	// RecordHeaderSize is the number of bytes preceding every payload.
	RecordHeaderSize = 4

	// MaxRecordSize is the largest record the 16-bit length field allows,
	// rounded down to an even value.
	MaxRecordSize = 0xFFFE

	// MaxPayloadSize is the largest payload a single record can carry.
	MaxPayloadSize = MaxRecordSize - RecordHeaderSize

	// MaxBoundaryVertices is the largest closed vertex list (closing vertex
	// included) a single XY record can hold: 65530 / 8 bytes per point.
	MaxBoundaryVertices = 8191

	// MaxColRow is the largest column or row count of an array reference.
	MaxColRow = 32767

	// MaxNameLength is the longest structure name accepted by common
	// readers.
	MaxNameLength = 32

	// StreamVersion is the version written into the HEADER record.
	StreamVersion = 600

	// TimestampFields is the number of int16 values in one timestamp
	// (year, month, day, hour, minute, second).
	TimestampFields = 6

	// BlockSize is the tape-era block size files are padded to after
	// ENDLIB.
	BlockSize = 2048
)

// RecordName returns the mnemonic for a record type, or "UNKNOWN".
func RecordName(rt byte) string {
	switch rt {
	case RecHeader:
		return "HEADER"
	case RecBgnLib:
		return "BGNLIB"
	case RecLibName:
		return "LIBNAME"
	case RecUnits:
		return "UNITS"
	case RecEndLib:
		return "ENDLIB"
	case RecBgnStr:
		return "BGNSTR"
	case RecStrName:
		return "STRNAME"
	case RecEndStr:
		return "ENDSTR"
	case RecBoundary:
		return "BOUNDARY"
	case RecPath:
		return "PATH"
	case RecSRef:
		return "SREF"
	case RecARef:
		return "AREF"
	case RecText:
		return "TEXT"
	case RecLayer:
		return "LAYER"
	case RecDatatype:
		return "DATATYPE"
	case RecWidth:
		return "WIDTH"
	case RecXY:
		return "XY"
	case RecEndEl:
		return "ENDEL"
	case RecSName:
		return "SNAME"
	case RecColRow:
		return "COLROW"
	case RecStrans:
		return "STRANS"
	case RecMag:
		return "MAG"
	case RecAngle:
		return "ANGLE"
	default:
		return "UNKNOWN"
	}
}
