package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pulselab/pulse/codec"
	"github.com/pulselab/pulse/model"
)

// Block format (self-describing, little-endian):
//
//	magic [4]byte | version uint8 | compression uint8
//	codecNameLen uint8 | codecName
//	headerLen uint32 | header (codec-encoded)
//	payload (compressed block, see block.go)
//
// Series payloads pack records back to back: nkeys uint64 coordinates
// followed by ncols float64 values per record. Matrix and vector payloads
// pack raw float64s in row-major order.
var (
	magicSeries = [4]byte{'P', 'L', 'S', 'E'}
	magicMatrix = [4]byte{'P', 'L', 'S', 'M'}
	magicVector = [4]byte{'P', 'L', 'S', 'V'}
)

const formatVersion = 1

// ErrBadFormat indicates a blob that is not a valid pulse block.
type ErrBadFormat struct {
	Reason string
}

func (e *ErrBadFormat) Error() string {
	return fmt.Sprintf("bad block format: %s", e.Reason)
}

// seriesHeader describes a packed series payload.
type seriesHeader struct {
	NRows  int          `json:"nrows"`
	NKeys  int          `json:"nkeys"`
	NCols  int          `json:"ncols"`
	Labels []labelValue `json:"labels"`
}

// labelValue is the wire form of a model.Label: exactly one of the fields is
// set. Numeric labels are canonicalized to float64 (see model.Canonical), so
// labels survive the round trip with their equality semantics intact.
type labelValue struct {
	S *string  `json:"s,omitempty"`
	F *float64 `json:"f,omitempty"`
}

func toLabelValue(l model.Label) (labelValue, error) {
	switch v := model.Canonical(l).(type) {
	case float64:
		return labelValue{F: &v}, nil
	case string:
		return labelValue{S: &v}, nil
	default:
		return labelValue{}, &ErrBadFormat{Reason: fmt.Sprintf("label type %T is not serializable", l)}
	}
}

func (lv labelValue) label() model.Label {
	if lv.S != nil {
		return *lv.S
	}
	if lv.F != nil {
		return *lv.F
	}
	return nil
}

// EncodeSeries packs records and their index into a self-describing block.
// All records must share the index length and key rank.
func EncodeSeries(records []model.Record, index model.Index, c codec.Codec, comp Compression) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	ncols := len(index)
	nkeys := 0
	if len(records) > 0 {
		nkeys = len(records[0].Key)
	}

	payload := make([]byte, 0, len(records)*(nkeys*8+ncols*8))
	var scratch [8]byte
	for _, rec := range records {
		if len(rec.Key) != nkeys {
			return nil, &ErrBadFormat{Reason: fmt.Sprintf("key rank %d differs from %d", len(rec.Key), nkeys)}
		}
		if err := model.CheckShape(rec, ncols); err != nil {
			return nil, err
		}
		for _, k := range rec.Key {
			binary.LittleEndian.PutUint64(scratch[:], k)
			payload = append(payload, scratch[:]...)
		}
		for _, x := range rec.Vector {
			binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(x))
			payload = append(payload, scratch[:]...)
		}
	}

	labels := make([]labelValue, ncols)
	for i, l := range index {
		lv, err := toLabelValue(l)
		if err != nil {
			return nil, err
		}
		labels[i] = lv
	}
	header, err := c.Marshal(seriesHeader{
		NRows:  len(records),
		NKeys:  nkeys,
		NCols:  ncols,
		Labels: labels,
	})
	if err != nil {
		return nil, err
	}

	return assembleBlock(magicSeries, comp, c.Name(), header, payload)
}

// DecodeSeries unpacks a series block into records and index.
func DecodeSeries(data []byte) ([]model.Record, model.Index, error) {
	header, payload, err := splitBlock(data, magicSeries)
	if err != nil {
		return nil, nil, err
	}
	var h seriesHeader
	if err := header.codec.Unmarshal(header.data, &h); err != nil {
		return nil, nil, err
	}
	if len(h.Labels) != h.NCols {
		return nil, nil, &ErrBadFormat{Reason: "label count disagrees with ncols"}
	}

	recSize := (h.NKeys + h.NCols) * 8
	if len(payload) < h.NRows*recSize {
		return nil, nil, &ErrBadFormat{Reason: "payload shorter than declared record count"}
	}

	index := make(model.Index, h.NCols)
	for i, lv := range h.Labels {
		index[i] = lv.label()
	}

	records := make([]model.Record, h.NRows)
	off := 0
	for r := 0; r < h.NRows; r++ {
		key := make(model.Key, h.NKeys)
		for i := range key {
			key[i] = binary.LittleEndian.Uint64(payload[off:])
			off += 8
		}
		vec := make([]float64, h.NCols)
		for i := range vec {
			vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[off:]))
			off += 8
		}
		records[r] = model.Record{Key: key, Vector: vec}
	}
	return records, index, nil
}

// matrixHeader describes a packed row-major float64 matrix.
type matrixHeader struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// EncodeMatrix packs a dense matrix into a self-describing block.
func EncodeMatrix(m mat.Matrix, c codec.Codec, comp Compression) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	rows, cols := m.Dims()
	payload := make([]byte, 0, rows*cols*8)
	var scratch [8]byte
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(m.At(i, j)))
			payload = append(payload, scratch[:]...)
		}
	}
	header, err := c.Marshal(matrixHeader{Rows: rows, Cols: cols})
	if err != nil {
		return nil, err
	}
	return assembleBlock(magicMatrix, comp, c.Name(), header, payload)
}

// DecodeMatrix unpacks a matrix block.
func DecodeMatrix(data []byte) (*mat.Dense, error) {
	header, payload, err := splitBlock(data, magicMatrix)
	if err != nil {
		return nil, err
	}
	var h matrixHeader
	if err := header.codec.Unmarshal(header.data, &h); err != nil {
		return nil, err
	}
	if len(payload) < h.Rows*h.Cols*8 {
		return nil, &ErrBadFormat{Reason: "payload shorter than declared matrix size"}
	}
	vals := make([]float64, h.Rows*h.Cols)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	return mat.NewDense(h.Rows, h.Cols, vals), nil
}

// EncodeVector packs a float64 slice into a self-describing block.
func EncodeVector(v []float64, c codec.Codec, comp Compression) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	payload := make([]byte, 0, len(v)*8)
	var scratch [8]byte
	for _, x := range v {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(x))
		payload = append(payload, scratch[:]...)
	}
	header, err := c.Marshal(matrixHeader{Rows: 1, Cols: len(v)})
	if err != nil {
		return nil, err
	}
	return assembleBlock(magicVector, comp, c.Name(), header, payload)
}

// DecodeVector unpacks a vector block.
func DecodeVector(data []byte) ([]float64, error) {
	header, payload, err := splitBlock(data, magicVector)
	if err != nil {
		return nil, err
	}
	var h matrixHeader
	if err := header.codec.Unmarshal(header.data, &h); err != nil {
		return nil, err
	}
	n := h.Rows * h.Cols
	if len(payload) < n*8 {
		return nil, &ErrBadFormat{Reason: "payload shorter than declared vector length"}
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	return vals, nil
}

func assembleBlock(magic [4]byte, comp Compression, codecName string, header, payload []byte) ([]byte, error) {
	compressed, err := compressBlock(payload, comp)
	if err != nil {
		return nil, err
	}
	if len(codecName) > math.MaxUint8 {
		return nil, &ErrBadFormat{Reason: "codec name too long"}
	}

	out := make([]byte, 0, 4+2+1+len(codecName)+4+len(header)+len(compressed))
	out = append(out, magic[:]...)
	out = append(out, formatVersion, byte(comp))
	out = append(out, byte(len(codecName)))
	out = append(out, codecName...)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(header)))
	out = append(out, lenBuf[:]...)
	out = append(out, header...)
	out = append(out, compressed...)
	return out, nil
}

type blockMeta struct {
	codec codec.Codec
	data  []byte
}

func splitBlock(data []byte, magic [4]byte) (blockMeta, []byte, error) {
	if len(data) < 7 {
		return blockMeta{}, nil, &ErrBadFormat{Reason: "blob too short"}
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return blockMeta{}, nil, &ErrBadFormat{Reason: "magic mismatch"}
	}
	if data[4] != formatVersion {
		return blockMeta{}, nil, &ErrBadFormat{Reason: fmt.Sprintf("unsupported version %d", data[4])}
	}
	comp := Compression(data[5])
	nameLen := int(data[6])
	off := 7
	if len(data) < off+nameLen+4 {
		return blockMeta{}, nil, &ErrBadFormat{Reason: "truncated codec name"}
	}
	codecName := string(data[off : off+nameLen])
	off += nameLen
	c, ok := codec.ByName(codecName)
	if !ok {
		return blockMeta{}, nil, &ErrBadFormat{Reason: fmt.Sprintf("unknown codec %q", codecName)}
	}
	headerLen := int(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if len(data) < off+headerLen {
		return blockMeta{}, nil, &ErrBadFormat{Reason: "truncated header"}
	}
	header := data[off : off+headerLen]
	off += headerLen

	payload, err := decompressBlock(data[off:], comp)
	if err != nil {
		return blockMeta{}, nil, err
	}
	return blockMeta{codec: c, data: header}, payload, nil
}
